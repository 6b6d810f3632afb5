package mock

import (
	"context"
	"log/slog"
	"sync"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
)

// Broker stands in for Kafka: it logs every event and keeps the last ones in memory.
type Broker struct {
	logger *slog.Logger
	mu     sync.Mutex
	events []domain.PaymentEvent
}

var _ ports.EventPublisher = (*Broker)(nil)

func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{logger: logger}
}

func (b *Broker) Close() {}

func (b *Broker) PublishPaymentEvent(ctx context.Context, p domain.PaymentRequest, ev domain.PaymentEvent) error {
	b.logger.Info("payment event (not sent, no broker configured)",
		"event_type", ev.Type, "payment_id", p.ID, "amount", p.Amount.String(), "currency", p.Currency)
	b.mu.Lock()
	b.events = append(b.events, ev)
	b.mu.Unlock()
	return nil
}

// Events returns the events published so far.
func (b *Broker) Events() []domain.PaymentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.PaymentEvent(nil), b.events...)
}
