package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/core/domain"
)

// EventMessage is the record value published for every payment event.
type EventMessage struct {
	EventID       string           `json:"event_id"`
	EventType     domain.EventType `json:"event_type"`
	PaymentID     string           `json:"payment_id"`
	TenantID      string           `json:"tenant_id,omitempty"`
	CustomerName  string           `json:"customer_name"`
	CustomerEmail string           `json:"customer_email"`
	Amount        decimal.Decimal  `json:"amount"`
	Currency      string           `json:"currency"`
	Status        string           `json:"status"`
	PaymentLink   string           `json:"payment_link"`
	Payload       json.RawMessage  `json:"payload,omitempty"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// NewEventMessage flattens a payment and one of its events into a message.
func NewEventMessage(tenantID string, p domain.PaymentRequest, ev domain.PaymentEvent) EventMessage {
	return EventMessage{
		EventID:       ev.ID,
		EventType:     ev.Type,
		PaymentID:     p.ID,
		TenantID:      tenantID,
		CustomerName:  p.CustomerName,
		CustomerEmail: p.CustomerEmail,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        string(p.Status),
		PaymentLink:   p.PaymentLink,
		Payload:       ev.Payload,
		OccurredAt:    ev.CreatedAt,
	}
}

// DecodeEventMessage parses a record value written by the Broker.
func DecodeEventMessage(value []byte) (EventMessage, error) {
	var m EventMessage
	if err := json.Unmarshal(value, &m); err != nil {
		return EventMessage{}, fmt.Errorf("failed to decode payment event: %w", err)
	}
	if m.PaymentID == "" || m.EventType == "" {
		return EventMessage{}, fmt.Errorf("payment event is missing payment_id or event_type")
	}
	return m, nil
}

// SystemLog renders the message as an operator-facing log entry.
func (m EventMessage) SystemLog() domain.SystemLog {
	client := m.TenantID
	if client == "" {
		client = m.CustomerName
	}
	entry := domain.SystemLog{
		ID:        "log_" + m.EventID,
		Timestamp: m.OccurredAt,
		Client:    client,
		PaymentID: m.PaymentID,
		Status:    domain.LogSuccess,
	}
	switch m.EventType {
	case domain.EventPaymentApproved:
		entry.EventType = domain.LogPaymentApproved
		entry.Message = "Payment approved."
	case domain.EventPaymentRejected:
		entry.EventType = domain.LogErrorEvent
		entry.Status = domain.LogError
		entry.Message = "Payment rejected."
	case domain.EventLinkResendRequested:
		entry.EventType = domain.LogSyncContact
		entry.Message = "Payment link resent to " + m.CustomerEmail + "."
	default:
		entry.EventType = domain.LogSyncContact
		entry.Message = "Payment link created for " + m.CustomerEmail + "."
	}
	details, _ := json.Marshal(map[string]any{
		"amount":   m.Amount.StringFixed(2),
		"currency": m.Currency,
		"link":     m.PaymentLink,
	})
	entry.DetailsJSON = string(details)
	return entry
}
