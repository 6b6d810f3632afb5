package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/listing"
	"rp-pay-dashboard/internal/navigation"
	"rp-pay-dashboard/internal/views"
)

const maxPageSize = 100

// viewSession is the per-browser view state that outlives a single request.
type viewSession struct {
	seq    *views.Sequencer
	search *views.CustomerSearch
}

// PaymentHandler serves the merchant screens.
type PaymentHandler struct {
	service  *app.PaymentService
	sessions *navigation.Registry[*viewSession]
	pageSize int
	logger   *slog.Logger
	now      func() time.Time
}

// NewPaymentHandler keeps view sessions for sessionTTL of inactivity.
func NewPaymentHandler(service *app.PaymentService, pageSize int, sessionTTL time.Duration, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		sessions: navigation.NewRegistry(sessionTTL, func() *viewSession {
			seq := views.NewSequencer()
			return &viewSession{seq: seq, search: views.NewCustomerSearch(service, seq)}
		}),
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *PaymentHandler) session(r *http.Request) *viewSession {
	return h.sessions.Get(sessionID(r.Context()))
}

// SweepSessions drops idle view sessions.
func (h *PaymentHandler) SweepSessions() int {
	return h.sessions.Sweep()
}

func (h *PaymentHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := views.NewDashboardScreen(h.service, h.session(r).seq).Load(r.Context())
	if !ok {
		writeSuperseded(w, h.logger)
		return
	}
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

func (h *PaymentHandler) HandleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	search := h.session(r).search
	if !search.Search(r.Context(), r.URL.Query().Get("q")) {
		writeSuperseded(w, h.logger)
		return
	}
	snap := search.Snapshot()
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

var errBadQuery = errors.New("bad query")

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates must look like 2006-01-02", errBadQuery)
	}
	return t, nil
}

func parsePositive(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q is not a positive integer", errBadQuery, raw)
	}
	return n, nil
}

// parseCriteria reads the history filter from q, status, method, from and to.
func parseCriteria(r *http.Request) (listing.Criteria, error) {
	q := r.URL.Query()
	c := listing.Criteria{
		Query:  strings.TrimSpace(q.Get("q")),
		Status: q.Get("status"),
		Method: q.Get("method"),
	}
	if c.Status != "" && c.Status != listing.All && !domain.PaymentStatus(c.Status).Valid() {
		return c, fmt.Errorf("%w: unknown status %q", errBadQuery, c.Status)
	}
	if c.Method != "" && c.Method != listing.All && !domain.PaymentMethod(c.Method).Valid() {
		return c, fmt.Errorf("%w: unknown method %q", errBadQuery, c.Method)
	}
	var err error
	if c.From, err = parseDate(q.Get("from")); err != nil {
		return c, err
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		return c, err
	}
	if !to.IsZero() {
		c.To = listing.EndOfDay(to)
	}
	return c, nil
}

func (h *PaymentHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest, h.logger)
		return
	}
	page, err := parsePositive(r.URL.Query().Get("page"), 1)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest, h.logger)
		return
	}
	size, err := parsePositive(r.URL.Query().Get("page_size"), h.pageSize)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest, h.logger)
		return
	}

	screen := views.NewHistoryScreen(h.service, h.session(r).seq, min(size, maxPageSize))
	screen.SetCriteria(criteria)
	screen.GoToPage(page)
	snap, ok := screen.Load(r.Context())
	if !ok {
		writeSuperseded(w, h.logger)
		return
	}
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

func (h *PaymentHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseCriteria(r)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest, h.logger)
		return
	}
	payments, err := h.service.FilteredPayments(r.Context(), criteria)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", listing.ExportFilename(h.now())))
	if err := listing.WriteCSV(w, payments); err != nil {
		h.logger.Error("failed to write CSV export", "error", err)
	}
}

type createPaymentRequest struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Concept       string `json:"concept"`
}

// validationError names the first rule req breaks.
func (req createPaymentRequest) validationError() error {
	amount, err := views.ParseAmount(req.Amount)
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return domain.ErrCustomerRequired
	}
	if err != nil {
		return err
	}
	return app.ValidateNewPayment(domain.NewPaymentRequest{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Amount:        amount,
		Description:   req.Concept,
	}, decimal.Zero)
}

func (h *PaymentHandler) HandleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}

	form := views.NewGenerateLinkForm("")
	form.SetCurrency(req.Currency)
	if req.CustomerName != "" || req.CustomerEmail != "" {
		form.SelectCustomer(domain.CustomerRecord{
			ID:       req.CustomerID,
			Name:     strings.TrimSpace(req.CustomerName),
			Email:    strings.TrimSpace(req.CustomerEmail),
			Initials: domain.Initials(req.CustomerName),
		})
	}
	form.SetAmount(req.Amount)
	form.SetConcept(req.Concept)

	if !form.CanSubmit() {
		err := req.validationError()
		if err == nil {
			err = domain.ErrCustomerRequired
		}
		writeError(w, err, h.logger)
		return
	}

	p, err := form.Submit(r.Context(), h.service)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, p, http.StatusCreated, h.logger)
}

func (h *PaymentHandler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	snap, ok := views.NewDetailScreen(h.service, h.session(r).seq).Load(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		writeSuperseded(w, h.logger)
		return
	}
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

func (h *PaymentHandler) HandleReceipt(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Detail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	receipt, err := views.Receipt(*d)
	if err != nil {
		h.logger.Error("failed to render receipt", "payment_id", d.ID, "error", err)
		writeJSONError(w, "internal server error", http.StatusInternalServerError, h.logger)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", views.ReceiptFilename(*d)))
	_, _ = w.Write([]byte(receipt))
}

func (h *PaymentHandler) HandleResend(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.ResendLink(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, map[string]string{
		"status":       "resend_requested",
		"payment_id":   d.ID,
		"payment_link": d.PaymentLink,
	}, http.StatusAccepted, h.logger)
}

func (h *PaymentHandler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap, ok := views.NewSettingsScreen(h.service, h.session(r).seq).Load(r.Context())
	if !ok {
		writeSuperseded(w, h.logger)
		return
	}
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

func (h *PaymentHandler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var s domain.Settings
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest, h.logger)
		return
	}
	snap, err := views.NewSettingsScreen(h.service, h.session(r).seq).Save(r.Context(), s)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeSnapshot(w, snap, snap.Failure, h.logger)
}

// publicPayment is what a customer opening a payment link may see.
type publicPayment struct {
	ID           string               `json:"id"`
	CustomerName string               `json:"customer_name"`
	Description  string               `json:"description"`
	Amount       string               `json:"amount"`
	Currency     string               `json:"currency"`
	Status       domain.PaymentStatus `json:"status"`
}

func (h *PaymentHandler) HandleResolveLink(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.ResolveLink(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, publicPayment{
		ID:           d.ID,
		CustomerName: d.CustomerName,
		Description:  d.Description,
		Amount:       d.Amount.StringFixed(2),
		Currency:     d.Currency,
		Status:       d.Status,
	}, http.StatusOK, h.logger)
}
