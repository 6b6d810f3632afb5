package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a payment request.
type PaymentStatus string

const (
	StatusPending  PaymentStatus = "pending"
	StatusApproved PaymentStatus = "approved"
	StatusRejected PaymentStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// PaymentMethod is how the customer paid (or will pay).
type PaymentMethod string

const (
	MethodCard     PaymentMethod = "card"
	MethodPix      PaymentMethod = "pix"
	MethodTransfer PaymentMethod = "transfer"
	MethodLink     PaymentMethod = "link"
)

// DefaultMethod is used when the backing store does not report a method.
const DefaultMethod = MethodLink

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPix, MethodTransfer, MethodLink:
		return true
	}
	return false
}

// PaymentRequest is one payment-collection attempt.
// Customer fields are a snapshot taken at creation, not a live reference.
type PaymentRequest struct {
	ID                 string          `json:"id"`
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description"`
	Status             PaymentStatus   `json:"status"`
	Method             PaymentMethod   `json:"payment_method"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	PaymentLink        string          `json:"payment_link"`
	ExternalContactRef string          `json:"external_contact_ref,omitempty"`
}

// NewPaymentRequest carries the caller-supplied fields of a payment link.
type NewPaymentRequest struct {
	CustomerName       string          `json:"customer_name"`
	CustomerEmail      string          `json:"customer_email"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description"`
	ExternalContactRef string          `json:"external_contact_ref,omitempty"`
}

// EventType names a lifecycle event in a payment timeline.
type EventType string

const (
	EventLinkCreated         EventType = "link_created"
	EventPaymentApproved     EventType = "payment_approved"
	EventPaymentRejected     EventType = "payment_rejected"
	EventLinkResendRequested EventType = "link_resend_requested"
)

// PaymentEvent is one entry of a payment's timeline.
type PaymentEvent struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Type      EventType       `json:"event_type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// PaymentDetail is a payment plus its timeline, oldest event first.
type PaymentDetail struct {
	PaymentRequest
	Events []PaymentEvent `json:"events"`
}

// PaymentPage is one page of payments as returned by a directory.
type PaymentPage struct {
	Items      []PaymentRequest `json:"results"`
	TotalCount int              `json:"count"`
}

// Normalize fills fields a backing store may leave empty.
func (p *PaymentRequest) Normalize() {
	if p.Method == "" {
		p.Method = DefaultMethod
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
}
