package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
	"rp-pay-dashboard/internal/listing"
	"rp-pay-dashboard/internal/tenant"
)

//go:embed schema.sql
var schema string

// DefaultTenant scopes rows when a request carries no tenant.
const DefaultTenant = "default"

// Repository is the PostgreSQL implementation of the directory ports.
type Repository struct {
	pool  *pgxpool.Pool
	links *linktoken.Issuer
	now   func() time.Time
}

var (
	_ ports.Directory        = (*Repository)(nil)
	_ ports.AccountDirectory = (*Repository)(nil)
	_ ports.LogStore         = (*Repository)(nil)
	_ ports.PaymentTimeline  = (*Repository)(nil)
)

// NewRepository connects to dsn and checks the connection.
func NewRepository(ctx context.Context, dsn string, links *linktoken.Issuer) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, dbError("ping database", err)
	}

	return &Repository{pool: pool, links: links, now: time.Now}, nil
}

// EnsureSchema creates the tables the repository needs if they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return dbError("apply schema", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return dbError("ping database", err)
	}
	return nil
}

// Close closes the connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

func (r *Repository) tenant(ctx context.Context) string {
	return tenant.FromContext(ctx, DefaultTenant)
}

func (r *Repository) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	pattern := likePattern(query)
	if pattern == "" {
		return []domain.CustomerRecord{}, nil
	}
	const sql = `
		SELECT id, name, email FROM customers
		WHERE tenant_id = $1 AND (name ILIKE $2 OR email ILIKE $2)
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, sql, r.tenant(ctx), pattern)
	if err != nil {
		return nil, dbError("search customers", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CustomerRecord, error) {
		var c domain.CustomerRecord
		err := row.Scan(&c.ID, &c.Name, &c.Email)
		c.Initials = domain.Initials(c.Name)
		return c, err
	})
	if err != nil {
		return nil, dbError("read customers", err)
	}
	return out, nil
}

const paymentColumns = `id, customer_name, customer_email, amount::text, currency, description, status,
	COALESCE(payment_method, ''), payment_link, external_contact_ref, created_at, updated_at`

func scanPayment(row pgx.CollectableRow) (domain.PaymentRequest, error) {
	var (
		p      domain.PaymentRequest
		amount string
	)
	err := row.Scan(&p.ID, &p.CustomerName, &p.CustomerEmail, &amount, &p.Currency, &p.Description,
		&p.Status, &p.Method, &p.PaymentLink, &p.ExternalContactRef, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return p, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return p, fmt.Errorf("payment %s has a malformed amount: %w", p.ID, err)
	}
	p.Normalize()
	return p, nil
}

func (r *Repository) ListPayments(ctx context.Context, page, pageSize int, status domain.PaymentStatus) (domain.PaymentPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	tid := r.tenant(ctx)

	var total int
	const countSQL = `SELECT count(*) FROM payments WHERE tenant_id = $1 AND ($2 = '' OR status = $2)`
	if err := r.pool.QueryRow(ctx, countSQL, tid, string(status)).Scan(&total); err != nil {
		return domain.PaymentPage{}, dbError("count payments", err)
	}

	sql := `SELECT ` + paymentColumns + ` FROM payments
		WHERE tenant_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, sql, tid, string(status), pageSize, (page-1)*pageSize)
	if err != nil {
		return domain.PaymentPage{}, dbError("list payments", err)
	}
	items, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return domain.PaymentPage{}, dbError("read payments", err)
	}
	return domain.PaymentPage{Items: items, TotalCount: total}, nil
}

// CreatePaymentRequest inserts the payment and its link_created event in one transaction.
func (r *Repository) CreatePaymentRequest(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error) {
	tid := r.tenant(ctx)
	id := "pay_" + uuid.NewString()
	link, err := r.links.Link(id, tid)
	if err != nil {
		return nil, err
	}
	now := r.now().UTC()
	p := &domain.PaymentRequest{
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

	err = pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		const insertPayment = `
			INSERT INTO payments
			    (tenant_id, id, customer_name, customer_email, amount, currency, description,
			     status, payment_method, payment_link, external_contact_ref, created_at, updated_at)
			VALUES
			    ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $12)
		`
		if _, err := tx.Exec(ctx, insertPayment, tid, p.ID, p.CustomerName, p.CustomerEmail, p.Amount.String(),
			p.Currency, p.Description, p.Status, p.Method, p.PaymentLink, p.ExternalContactRef, p.CreatedAt); err != nil {
			return err
		}
		const insertEvent = `
			INSERT INTO payment_events (tenant_id, id, payment_id, event_type, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, insertEvent, tid, uuid.NewString(), p.ID, domain.EventLinkCreated,
			[]byte(`{"message": "Payment link created"}`), now)
		return err
	})
	if err != nil {
		return nil, dbError("save payment", err)
	}
	return p, nil
}

func (r *Repository) GetPaymentDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	tid := r.tenant(ctx)
	rows, err := r.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE tenant_id = $1 AND id = $2`, tid, id)
	if err != nil {
		return nil, dbError("load payment", err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, scanPayment)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("payment %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, dbError("read payment", err)
	}

	const eventsSQL = `
		SELECT id, payment_id, event_type, payload, created_at FROM payment_events
		WHERE tenant_id = $1 AND payment_id = $2
		ORDER BY created_at, id
	`
	rows, err = r.pool.Query(ctx, eventsSQL, tid, id)
	if err != nil {
		return nil, dbError("load payment events", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PaymentEvent, error) {
		var (
			ev      domain.PaymentEvent
			payload []byte
		)
		err := row.Scan(&ev.ID, &ev.PaymentID, &ev.Type, &payload, &ev.CreatedAt)
		ev.Payload = json.RawMessage(payload)
		return ev, err
	})
	if err != nil {
		return nil, dbError("read payment events", err)
	}
	return &domain.PaymentDetail{PaymentRequest: p, Events: events}, nil
}

// AppendEvent adds an event to a payment's timeline.
func (r *Repository) AppendEvent(ctx context.Context, ev domain.PaymentEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = r.now().UTC()
	}
	const sql = `
		INSERT INTO payment_events (tenant_id, id, payment_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	var payload []byte
	if len(ev.Payload) > 0 {
		payload = ev.Payload
	}
	if _, err := r.pool.Exec(ctx, sql, r.tenant(ctx), ev.ID, ev.PaymentID, ev.Type, payload, ev.CreatedAt); err != nil {
		return dbError("save payment event", err)
	}
	return nil
}

// GetSettings returns the stored settings, or the defaults for a tenant that never saved any.
func (r *Repository) GetSettings(ctx context.Context) (domain.Settings, error) {
	var body []byte
	err := r.pool.QueryRow(ctx, `SELECT body FROM settings WHERE tenant_id = $1`, r.tenant(ctx)).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return domain.Settings{}, dbError("load settings", err)
	}
	var s domain.Settings
	if err := json.Unmarshal(body, &s); err != nil {
		return domain.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}

func (r *Repository) UpdateSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	const sql = `
		INSERT INTO settings (tenant_id, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (tenant_id) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at
	`
	if _, err := r.pool.Exec(ctx, sql, r.tenant(ctx), body); err != nil {
		return dbError("save settings", err)
	}
	return nil
}

const accountColumns = `id, company, contact_email, location_id, crm_status, processor_status,
	installed_at, COALESCE(last_payment_at, installed_at), last_payment_amount`

func scanAccount(row pgx.CollectableRow) (domain.TenantAccount, error) {
	var a domain.TenantAccount
	err := row.Scan(&a.ID, &a.Company, &a.ContactEmail, &a.LocationID, &a.CRMStatus, &a.ProcessorStatus,
		&a.InstalledAt, &a.LastPaymentAt, &a.LastPaymentAmount)
	return a, err
}

func (r *Repository) ListAccounts(ctx context.Context, status string) ([]domain.TenantAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM tenant_accounts ORDER BY company`)
	if err != nil {
		return nil, dbError("list accounts", err)
	}
	accounts, err := pgx.CollectRows(rows, scanAccount)
	if err != nil {
		return nil, dbError("read accounts", err)
	}
	return listing.FilterAccounts(accounts, listing.AccountCriteria{Status: status}), nil
}

func (r *Repository) GetAccount(ctx context.Context, id string) (*domain.TenantAccount, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountColumns+` FROM tenant_accounts WHERE id = $1`, id)
	if err != nil {
		return nil, dbError("load account", err)
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAccount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", id, domain.ErrAccountNotFound)
	}
	if err != nil {
		return nil, dbError("read account", err)
	}
	return &a, nil
}

func (r *Repository) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.SystemLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 500
	}
	const sql = `
		SELECT id, ts, client, event_type, message, payment_id, status, details_json FROM system_logs
		WHERE ($1 = '' OR client = $1) AND ($2 = '' OR status = $2)
		ORDER BY ts DESC
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, sql, f.Source, string(f.Status), limit)
	if err != nil {
		return nil, dbError("list logs", err)
	}
	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SystemLog, error) {
		var l domain.SystemLog
		err := row.Scan(&l.ID, &l.Timestamp, &l.Client, &l.EventType, &l.Message, &l.PaymentID, &l.Status, &l.DetailsJSON)
		return l, err
	})
	if err != nil {
		return nil, dbError("read logs", err)
	}
	return logs, nil
}

func (r *Repository) AppendLog(ctx context.Context, entry domain.SystemLog) error {
	if entry.ID == "" {
		entry.ID = "log_" + uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}
	const sql = `
		INSERT INTO system_logs (id, ts, client, event_type, message, payment_id, status, details_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := r.pool.Exec(ctx, sql, entry.ID, entry.Timestamp, entry.Client, entry.EventType,
		entry.Message, entry.PaymentID, entry.Status, entry.DetailsJSON); err != nil {
		return dbError("save log", err)
	}
	return nil
}
