package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"rp-pay-dashboard/internal/adapters/messaging/kafka"
	"rp-pay-dashboard/internal/core/domain"
)

// logRecorder stores system log entries.
type logRecorder interface {
	RecordLog(ctx context.Context, entry domain.SystemLog) error
}

// deadLetterer takes records that can never be processed.
type deadLetterer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
}

// Recorder turns payment events into system log entries.
type Recorder struct {
	logs   logRecorder
	dlq    deadLetterer
	logger *slog.Logger
}

func NewRecorder(logs logRecorder, dlq deadLetterer, logger *slog.Logger) *Recorder {
	return &Recorder{logs: logs, dlq: dlq, logger: logger}
}

// Handle records one event. Malformed records go to the dead-letter topic and
// are not retried; a failing log store is returned so the batch is redelivered.
func (r *Recorder) Handle(ctx context.Context, record *kgo.Record) error {
	msg, err := kafka.DecodeEventMessage(record.Value)
	if err != nil {
		r.logger.Error("Failed to parse message, sending to DLQ", "offset", record.Offset, "error", err)
		r.sendToDLQ(ctx, record, "unmarshal_error", err.Error())
		return nil
	}

	entry := msg.SystemLog()
	if err := r.logs.RecordLog(ctx, entry); err != nil {
		return fmt.Errorf("append log for payment %s: %w", msg.PaymentID, err)
	}

	r.logger.Info("payment event recorded", "payment_id", msg.PaymentID, "event_type", msg.EventType, "amount", msg.Amount.StringFixed(2))
	return nil
}

func (r *Recorder) sendToDLQ(ctx context.Context, record *kgo.Record, errorType, errorString string) {
	r.dlq.Produce(context.WithoutCancel(ctx), kafka.DeadLetter(record, errorType, errorString), func(dl *kgo.Record, err error) {
		if err != nil {
			r.logger.Error("Failed to send message to DLQ", "topic", dl.Topic, "error", err)
		}
	})
}
