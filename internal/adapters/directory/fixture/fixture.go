// Package fixture is an in-memory directory seeded with deterministic records.
// It backs local development and tests and needs no network.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
	"rp-pay-dashboard/internal/listing"
	"rp-pay-dashboard/internal/tenant"
)

const defaultTenant = "fixture"

// Directory implements ports.Directory, ports.AccountDirectory and ports.LogStore.
type Directory struct {
	mu        sync.RWMutex
	customers []domain.CustomerRecord
	payments  []domain.PaymentRequest
	events    map[string][]domain.PaymentEvent
	settings  domain.Settings
	accounts  []domain.TenantAccount
	logs      []domain.SystemLog

	links *linktoken.Issuer
	now   func() time.Time
}

var (
	_ ports.Directory        = (*Directory)(nil)
	_ ports.AccountDirectory = (*Directory)(nil)
	_ ports.LogStore         = (*Directory)(nil)
	_ ports.PaymentTimeline  = (*Directory)(nil)
)

// New returns a directory holding the seed data. Seeded payments get links from links.
func New(links *linktoken.Issuer) (*Directory, error) {
	d := &Directory{
		customers: seedCustomers(),
		payments:  seedPayments(),
		events:    make(map[string][]domain.PaymentEvent),
		settings:  domain.DefaultSettings(),
		accounts:  seedAccounts(),
		logs:      seedLogs(),
		links:     links,
		now:       time.Now,
	}
	for i := range d.payments {
		p := &d.payments[i]
		link, err := links.Link(p.ID, defaultTenant)
		if err != nil {
			return nil, fmt.Errorf("seed payment %s: %w", p.ID, err)
		}
		p.PaymentLink = link
		p.Normalize()
		d.events[p.ID] = seedEvents(*p)
	}
	return d, nil
}

func (d *Directory) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.CustomerRecord{}, nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.CustomerRecord, 0)
	for _, c := range d.customers {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (d *Directory) ListPayments(ctx context.Context, page, pageSize int, status domain.PaymentStatus) (domain.PaymentPage, error) {
	d.mu.RLock()
	matched := make([]domain.PaymentRequest, 0, len(d.payments))
	for _, p := range d.payments {
		if status == "" || p.Status == status {
			matched = append(matched, p)
		}
	}
	d.mu.RUnlock()

	paged := listing.Paginate(matched, page, pageSize)
	return domain.PaymentPage{Items: paged.Items, TotalCount: len(matched)}, nil
}

// CreatePaymentRequest stores a new pending payment at the head of the list.
// Validation is the caller's job.
func (d *Directory) CreatePaymentRequest(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error) {
	id := "pay_" + uuid.NewString()
	link, err := d.links.Link(id, tenant.FromContext(ctx, defaultTenant))
	if err != nil {
		return nil, err
	}
	now := d.now().UTC()
	p := domain.PaymentRequest{
		ID:                 id,
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		Status:             domain.StatusPending,
		Method:             domain.DefaultMethod,
		CreatedAt:          now,
		UpdatedAt:          now,
		PaymentLink:        link,
		ExternalContactRef: req.ExternalContactRef,
	}
	ev := domain.PaymentEvent{
		ID:        uuid.NewString(),
		PaymentID: id,
		Type:      domain.EventLinkCreated,
		Payload:   json.RawMessage(`{"message": "Payment link created"}`),
		CreatedAt: now,
	}

	d.mu.Lock()
	d.payments = append([]domain.PaymentRequest{p}, d.payments...)
	d.events[id] = []domain.PaymentEvent{ev}
	d.mu.Unlock()
	return &p, nil
}

func (d *Directory) GetPaymentDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, p := range d.payments {
		if p.ID == id {
			return &domain.PaymentDetail{PaymentRequest: p, Events: slices.Clone(d.events[id])}, nil
		}
	}
	return nil, fmt.Errorf("payment %q: %w", id, domain.ErrNotFound)
}

// AppendEvent adds ev to the end of its payment's timeline.
func (d *Directory) AppendEvent(ctx context.Context, ev domain.PaymentEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = d.now().UTC()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.events[ev.PaymentID]; !ok {
		return fmt.Errorf("payment %q: %w", ev.PaymentID, domain.ErrNotFound)
	}
	d.events[ev.PaymentID] = append(d.events[ev.PaymentID], ev)
	return nil
}

func (d *Directory) GetSettings(ctx context.Context) (domain.Settings, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings, nil
}

func (d *Directory) UpdateSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	d.settings = s
	d.mu.Unlock()
	return nil
}

func (d *Directory) ListAccounts(ctx context.Context, status string) ([]domain.TenantAccount, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return listing.FilterAccounts(d.accounts, listing.AccountCriteria{Status: status}), nil
}

func (d *Directory) GetAccount(ctx context.Context, id string) (*domain.TenantAccount, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, a := range d.accounts {
		if a.ID == id {
			acc := a
			return &acc, nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", id, domain.ErrAccountNotFound)
}

func (d *Directory) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.SystemLog, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.SystemLog, 0, len(d.logs))
	for _, l := range d.logs {
		if f.Source != "" && l.Client != f.Source {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, l)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// AppendLog records entry as the newest log.
func (d *Directory) AppendLog(ctx context.Context, entry domain.SystemLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = d.now().UTC()
	}
	d.mu.Lock()
	d.logs = append([]domain.SystemLog{entry}, d.logs...)
	d.mu.Unlock()
	return nil
}
