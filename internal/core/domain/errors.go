package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("payment not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrServiceUnreachable = errors.New("payment directory is unreachable")
	ErrServiceRejected    = errors.New("payment directory rejected the request")
	ErrInvalidSettings    = errors.New("invalid settings")

	ErrCustomerRequired    = errors.New("a customer must be selected")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountBelowMinimum  = errors.New("amount is below the account minimum")
	ErrDescriptionRequired = errors.New("description is required")
	ErrInvalidLinkToken    = errors.New("invalid payment link token")
)

// RemoteError is the failure returned by a network-backed directory.
// Kind is ErrServiceUnreachable, ErrServiceRejected or ErrNotFound.
type RemoteError struct {
	Kind       error
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCustomerRequired) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAmountBelowMinimum) ||
		errors.Is(err, ErrDescriptionRequired) ||
		errors.Is(err, ErrInvalidSettings)
}
