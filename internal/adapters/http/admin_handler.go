package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/listing"
)

// AdminHandler serves the operator screens.
type AdminHandler struct {
	service *app.PaymentService
	logger  *slog.Logger
}

func NewAdminHandler(service *app.PaymentService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

func (h *AdminHandler) HandleOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.AdminOverview(r.Context())
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, o, http.StatusOK, h.logger)
}

func (h *AdminHandler) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	switch status {
	case "", listing.All, listing.AccountActive, listing.AccountError, listing.AccountDisconnected:
	default:
		writeJSONError(w, "unknown status filter", http.StatusBadRequest, h.logger)
		return
	}
	accounts, err := h.service.Accounts(r.Context(), listing.AccountCriteria{Query: strings.TrimSpace(q.Get("q")), Status: status})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, map[string]any{"results": accounts, "count": len(accounts)}, http.StatusOK, h.logger)
}

func (h *AdminHandler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	a, err := h.service.Account(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, a, http.StatusOK, h.logger)
}

func (h *AdminHandler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	logs, err := h.service.Logs(r.Context(), listing.LogCriteria{
		Query:     strings.TrimSpace(q.Get("q")),
		EventType: q.Get("event_type"),
		Status:    q.Get("status"),
	})
	if err != nil {
		writeError(w, err, h.logger)
		return
	}
	writeJSON(w, map[string]any{"results": logs, "count": len(logs)}, http.StatusOK, h.logger)
}
