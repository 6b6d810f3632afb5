package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
	"rp-pay-dashboard/internal/listing"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/tenant"
)

const (
	defaultFetchSize = 100
	recentCount      = 5
	fallbackCurrency = "USD"
)

// LinkVerifier checks a payment link token.
type LinkVerifier interface {
	Verify(token string) (*linktoken.Claims, error)
}

// Deps are the ports a PaymentService works against.
type Deps struct {
	Directory ports.Directory
	Accounts  ports.AccountDirectory
	Logs      ports.LogStore
	Events    ports.EventPublisher
	Links     LinkVerifier
	// Timeline is optional; without it resends are only published.
	Timeline ports.PaymentTimeline
}

// PaymentService is the use-case layer behind the dashboard screens.
type PaymentService struct {
	dir       ports.Directory
	accounts  ports.AccountDirectory
	logs      ports.LogStore
	events    ports.EventPublisher
	timeline  ports.PaymentTimeline
	links     LinkVerifier
	fetchSize int
	logger    *slog.Logger
	now       func() time.Time
}

// NewPaymentService builds the service. fetchSize bounds how many payments a
// history or dashboard view pulls from the directory.
func NewPaymentService(deps Deps, fetchSize int, logger *slog.Logger) *PaymentService {
	if fetchSize <= 0 {
		fetchSize = defaultFetchSize
	}
	return &PaymentService{
		dir:       deps.Directory,
		accounts:  deps.Accounts,
		logs:      deps.Logs,
		events:    deps.Events,
		timeline:  deps.Timeline,
		links:     deps.Links,
		fetchSize: fetchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateNewPayment checks a payment link request without touching the network.
// A positive minimum is enforced as well.
func ValidateNewPayment(req domain.NewPaymentRequest, minimum decimal.Decimal) error {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerEmail) == "" {
		return domain.ErrCustomerRequired
	}
	if !req.Amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if strings.TrimSpace(req.Description) == "" {
		return domain.ErrDescriptionRequired
	}
	if minimum.IsPositive() && req.Amount.LessThan(minimum) {
		return fmt.Errorf("%w: minimum is %s", domain.ErrAmountBelowMinimum, minimum.StringFixed(2))
	}
	return nil
}

// CreatePaymentLink validates req, creates the payment and announces it.
// A failed announcement is logged; the link already exists by then.
func (s *PaymentService) CreatePaymentLink(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error) {
	if err := ValidateNewPayment(req, decimal.Zero); err != nil {
		return nil, err
	}

	settings, err := s.dir.GetSettings(ctx)
	if err != nil {
		s.logger.Warn("settings unavailable, skipping minimum amount check", "error", err)
		settings = domain.Settings{}
	}
	minimum, err := settings.MinimumAmount()
	if err != nil {
		s.logger.Warn("stored minimum amount is invalid, ignoring it", "error", err)
		minimum = decimal.Zero
	}
	if err := ValidateNewPayment(req, minimum); err != nil {
		return nil, err
	}

	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.Description = strings.TrimSpace(req.Description)
	if req.Currency == "" {
		req.Currency = settings.DefaultCurrency
	}
	if req.Currency == "" {
		req.Currency = fallbackCurrency
	}

	p, err := s.dir.CreatePaymentRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}

	observability.RecordLinkCreated(p.Currency)
	s.publish(ctx, *p, s.newEvent(p.ID, domain.EventLinkCreated, map[string]string{"message": "Payment link created"}))
	s.logger.Info("payment link created", "payment_id", p.ID, "amount", p.Amount.String(), "currency", p.Currency)
	return p, nil
}

func (s *PaymentService) newEvent(paymentID string, typ domain.EventType, payload any) domain.PaymentEvent {
	raw, _ := json.Marshal(payload)
	return domain.PaymentEvent{
		ID:        uuid.NewString(),
		PaymentID: paymentID,
		Type:      typ,
		Payload:   raw,
		CreatedAt: s.now().UTC(),
	}
}

// publish announces ev. A failed announcement is logged, not returned.
func (s *PaymentService) publish(ctx context.Context, p domain.PaymentRequest, ev domain.PaymentEvent) {
	if err := s.events.PublishPaymentEvent(ctx, p, ev); err != nil {
		s.logger.Error("failed to publish payment event", "payment_id", p.ID, "event_type", ev.Type, "error", err)
	}
}

// recentPayments pulls one directory page of the newest payments.
func (s *PaymentService) recentPayments(ctx context.Context) ([]domain.PaymentRequest, error) {
	page, err := s.dir.ListPayments(ctx, 1, s.fetchSize, "")
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return page.Items, nil
}

// FilteredPayments returns every fetched payment matching c, in directory order.
func (s *PaymentService) FilteredPayments(ctx context.Context, c listing.Criteria) ([]domain.PaymentRequest, error) {
	items, err := s.recentPayments(ctx)
	if err != nil {
		return nil, err
	}
	return listing.Apply(items, c), nil
}

// History is the paginated, filtered payment list.
func (s *PaymentService) History(ctx context.Context, c listing.Criteria, page, pageSize int) (listing.Page[domain.PaymentRequest], error) {
	filtered, err := s.FilteredPayments(ctx, c)
	if err != nil {
		return listing.Page[domain.PaymentRequest]{}, err
	}
	return listing.Paginate(filtered, page, pageSize), nil
}

// Dashboard summarises the fetched payments.
type Dashboard struct {
	Total         int                     `json:"total"`
	Pending       int                     `json:"pending"`
	Approved      int                     `json:"approved"`
	Rejected      int                     `json:"rejected"`
	ApprovedTotal decimal.Decimal         `json:"approved_total"`
	Recent        []domain.PaymentRequest `json:"recent"`
}

func (s *PaymentService) Dashboard(ctx context.Context) (Dashboard, error) {
	items, err := s.recentPayments(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{Total: len(items), ApprovedTotal: decimal.Zero}
	for _, p := range items {
		switch p.Status {
		case domain.StatusPending:
			d.Pending++
		case domain.StatusApproved:
			d.Approved++
			d.ApprovedTotal = d.ApprovedTotal.Add(p.Amount)
		case domain.StatusRejected:
			d.Rejected++
		}
	}
	d.Recent = items[:min(recentCount, len(items))]
	return d, nil
}

// Detail loads one payment. A blank id is a miss.
func (s *PaymentService) Detail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrNotFound
	}
	return s.dir.GetPaymentDetail(ctx, id)
}

// ResendLink asks for the link of an existing payment to be sent again. The
// request joins the payment's timeline before it is announced.
func (s *PaymentService) ResendLink(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	d, err := s.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	ev := s.newEvent(d.ID, domain.EventLinkResendRequested, map[string]string{"email": d.CustomerEmail})
	if s.timeline != nil {
		if err := s.timeline.AppendEvent(ctx, ev); err != nil {
			return nil, fmt.Errorf("record resend of %s: %w", d.ID, err)
		}
		d.Events = append(d.Events, ev)
	}
	s.publish(ctx, d.PaymentRequest, ev)
	return d, nil
}

// ResolveLink maps a payment link token back to its payment.
func (s *PaymentService) ResolveLink(ctx context.Context, token string) (*domain.PaymentDetail, error) {
	claims, err := s.links.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.TenantID != "" {
		ctx = tenant.WithID(ctx, claims.TenantID)
	}
	return s.Detail(ctx, claims.Subject)
}

func (s *PaymentService) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	return s.dir.SearchCustomers(ctx, query)
}

func (s *PaymentService) Settings(ctx context.Context) (domain.Settings, error) {
	return s.dir.GetSettings(ctx)
}

func (s *PaymentService) UpdateSettings(ctx context.Context, settings domain.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	return s.dir.UpdateSettings(ctx, settings)
}

func (s *PaymentService) Accounts(ctx context.Context, c listing.AccountCriteria) ([]domain.TenantAccount, error) {
	accounts, err := s.accounts.ListAccounts(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return listing.FilterAccounts(accounts, c), nil
}

func (s *PaymentService) Account(ctx context.Context, id string) (*domain.TenantAccount, error) {
	return s.accounts.GetAccount(ctx, id)
}

func (s *PaymentService) Logs(ctx context.Context, c listing.LogCriteria) ([]domain.SystemLog, error) {
	f := ports.LogFilter{}
	if c.Status != "" && c.Status != listing.All {
		f.Status = domain.LogStatus(c.Status)
	}
	logs, err := s.logs.ListLogs(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return listing.FilterLogs(logs, c), nil
}

// RecordLog appends an operator-facing log entry, filling in a missing id
// and timestamp.
func (s *PaymentService) RecordLog(ctx context.Context, entry domain.SystemLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if err := s.logs.AppendLog(ctx, entry); err != nil {
		return fmt.Errorf("record %s log %s: %w", entry.EventType, entry.ID, err)
	}
	return nil
}

// AdminOverview counts tenants per health class plus recent error logs.
func (s *PaymentService) AdminOverview(ctx context.Context) (domain.AdminOverview, error) {
	accounts, err := s.accounts.ListAccounts(ctx, "")
	if err != nil {
		return domain.AdminOverview{}, fmt.Errorf("list accounts: %w", err)
	}
	o := domain.AdminOverview{TotalAccounts: len(accounts)}
	o.HealthyAccounts = len(listing.FilterAccounts(accounts, listing.AccountCriteria{Status: listing.AccountActive}))
	o.AccountsWithErrors = len(listing.FilterAccounts(accounts, listing.AccountCriteria{Status: listing.AccountError}))
	o.DisconnectedAccounts = len(listing.FilterAccounts(accounts, listing.AccountCriteria{Status: listing.AccountDisconnected}))

	errs, err := s.logs.ListLogs(ctx, ports.LogFilter{Status: domain.LogError, Limit: 100})
	if err != nil {
		return domain.AdminOverview{}, fmt.Errorf("list logs: %w", err)
	}
	o.RecentErrors = len(errs)
	return o, nil
}
