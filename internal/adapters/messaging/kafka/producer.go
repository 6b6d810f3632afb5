package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/tenant"
)

// Broker is the Kafka implementation of the EventPublisher port.
type Broker struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
	wg     sync.WaitGroup
}

var _ ports.EventPublisher = (*Broker)(nil)

// SplitServers turns a comma-separated bootstrap list into seed brokers.
func SplitServers(bootstrapServers string) []string {
	var out []string
	for _, s := range strings.Split(bootstrapServers, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Record header keys set on every published payment event.
const (
	HeaderEventType = "event_type"
	HeaderTenant    = "tenant_id"
)

// NewBroker connects a producer for topic. It fails fast when no seed broker
// answers within ctx.
func NewBroker(ctx context.Context, seeds []string, topic string, logger *slog.Logger) (*Broker, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(seeds...),
		kgo.DefaultProduceTopic(topic),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.RecordDeliveryTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client for %s: %w", topic, err)
	}
	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("kafka unreachable at %v: %w", seeds, err)
	}
	return &Broker{client: client, topic: topic, logger: logger.With("topic", topic)}, nil
}

// eventRecord builds the record for ev. The key is the payment id so every
// event of one payment lands on the same partition in order.
func eventRecord(tenantID string, p domain.PaymentRequest, ev domain.PaymentEvent) (*kgo.Record, error) {
	value, err := json.Marshal(NewEventMessage(tenantID, p, ev))
	if err != nil {
		return nil, fmt.Errorf("encode %s event for %s: %w", ev.Type, p.ID, err)
	}
	return &kgo.Record{
		Key:   []byte(p.ID),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: HeaderEventType, Value: []byte(ev.Type)},
			{Key: HeaderTenant, Value: []byte(tenantID)},
		},
	}, nil
}

// PublishPaymentEvent hands the event to the producer and returns without
// waiting for the broker; delivery failures are logged.
func (b *Broker) PublishPaymentEvent(ctx context.Context, p domain.PaymentRequest, ev domain.PaymentEvent) error {
	record, err := eventRecord(tenant.FromContext(ctx, ""), p, ev)
	if err != nil {
		return err
	}

	b.wg.Add(1)
	b.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		defer b.wg.Done()
		if err != nil {
			b.logger.Error("Payment event not delivered", "payment_id", p.ID, "event_type", ev.Type, "error", err)
			return
		}
		b.logger.Debug("Payment event delivered", "payment_id", p.ID, "partition", r.Partition, "offset", r.Offset)
	})
	return nil
}

func (b *Broker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx)
}

// Close flushes pending deliveries, then disconnects.
func (b *Broker) Close() {
	b.wg.Wait()
	b.client.Close()
	b.logger.Info("Kafka producer closed")
}
