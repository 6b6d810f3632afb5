// Package views holds the view models behind the dashboard screens: load
// states, failure messages, form rules and stale response handling.
package views

import (
	"errors"

	"rp-pay-dashboard/internal/core/domain"
)

// State is where a screen is in its load cycle.
type State string

const (
	StateIdle     State = "idle"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateEmpty    State = "empty"
	StateNotFound State = "not_found"
	StateFailed   State = "failed"
)

// FailureKind tells the user which recovery applies.
type FailureKind string

const (
	FailureTransport   FailureKind = "transport"
	FailureApplication FailureKind = "application"
	FailureNotFound    FailureKind = "not_found"
	FailureValidation  FailureKind = "validation"
)

const (
	MessageTryAgain    = "Could not reach the payment service. Please try again."
	MessageRejected    = "The payment service could not complete the request."
	MessageNotFound    = "Record not found. Return to the list."
	MessageInvalidForm = "Please review the highlighted fields."
)

// Failure is a renderable error.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`
	Field   string      `json:"field,omitempty"`
}

var validationFields = []struct {
	err     error
	field   string
	message string
}{
	{domain.ErrCustomerRequired, "customer", "Select a customer."},
	{domain.ErrInvalidAmount, "amount", "Enter an amount greater than zero."},
	{domain.ErrAmountBelowMinimum, "amount", "The amount is below the account minimum."},
	{domain.ErrDescriptionRequired, "concept", "Enter a concept for the payment."},
	{domain.ErrInvalidSettings, "settings", ""},
}

// Classify maps err to the failure the user sees. A nil err yields nil.
func Classify(err error) *Failure {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrInvalidLinkToken):
		return &Failure{Kind: FailureNotFound, Message: MessageNotFound}
	case errors.Is(err, domain.ErrServiceUnreachable):
		return &Failure{Kind: FailureTransport, Message: MessageTryAgain}
	case domain.IsValidation(err):
		for _, v := range validationFields {
			if errors.Is(err, v.err) {
				msg := v.message
				if msg == "" {
					msg = err.Error()
				}
				return &Failure{Kind: FailureValidation, Field: v.field, Message: msg}
			}
		}
		return &Failure{Kind: FailureValidation, Message: MessageInvalidForm}
	}

	msg := MessageRejected
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Message != "" {
		msg = re.Message
	}
	return &Failure{Kind: FailureApplication, Message: msg}
}

// StateFor is the terminal state a load ends in for err.
func StateFor(err error) State {
	if f := Classify(err); f != nil && f.Kind == FailureNotFound {
		return StateNotFound
	}
	return StateFailed
}
