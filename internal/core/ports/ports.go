package ports

import (
	"context"
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

// Directory is the "outgoing port" over payment, customer and settings data.
// Implementations may be remote, SQL-backed or an in-memory fixture; callers never know which.
type Directory interface {
	SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error)
	ListPayments(ctx context.Context, page, pageSize int, status domain.PaymentStatus) (domain.PaymentPage, error)
	CreatePaymentRequest(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error)
	GetPaymentDetail(ctx context.Context, id string) (*domain.PaymentDetail, error)
	GetSettings(ctx context.Context) (domain.Settings, error)
	UpdateSettings(ctx context.Context, s domain.Settings) error
}

// AccountDirectory lists the tenants operators supervise.
type AccountDirectory interface {
	ListAccounts(ctx context.Context, status string) ([]domain.TenantAccount, error)
	GetAccount(ctx context.Context, id string) (*domain.TenantAccount, error)
}

// LogFilter narrows a system log query at the store.
type LogFilter struct {
	Source string
	Status domain.LogStatus
	Limit  int
}

// LogStore reads and appends operator-facing system logs.
type LogStore interface {
	ListLogs(ctx context.Context, f LogFilter) ([]domain.SystemLog, error)
	AppendLog(ctx context.Context, entry domain.SystemLog) error
}

// PaymentTimeline appends events to a payment's own history, the one
// GetPaymentDetail returns. Directories whose timeline lives elsewhere omit it.
type PaymentTimeline interface {
	AppendEvent(ctx context.Context, ev domain.PaymentEvent) error
}

// EventPublisher is another outgoing port for announcing payment events.
type EventPublisher interface {
	PublishPaymentEvent(ctx context.Context, p domain.PaymentRequest, ev domain.PaymentEvent) error
}

// RateLimiterRepository decides whether a key may proceed within a window.
type RateLimiterRepository interface {
	IsAllowed(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
