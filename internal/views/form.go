package views

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/core/domain"
)

// ErrFormIncomplete is returned by Submit while the form cannot be sent.
var ErrFormIncomplete = errors.New("payment link form is incomplete")

// LinkCreator creates a payment link from a validated request.
type LinkCreator interface {
	CreatePaymentLink(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error)
}

// GenerateLinkFormSnapshot is what the generate-link screen renders.
type GenerateLinkFormSnapshot struct {
	Customer  *domain.CustomerRecord `json:"customer,omitempty"`
	Amount    string                 `json:"amount"`
	Concept   string                 `json:"concept"`
	Currency  string                 `json:"currency"`
	CanSubmit bool                   `json:"can_submit"`
	State     State                  `json:"state"`
	Created   *domain.PaymentRequest `json:"created,omitempty"`
	Failure   *Failure               `json:"failure,omitempty"`
}

// GenerateLinkForm holds the generate-link inputs. Submission is allowed only
// once a customer is selected, the amount is a positive number and the concept
// is not blank.
type GenerateLinkForm struct {
	mu         sync.Mutex
	customer   *domain.CustomerRecord
	amount     string
	concept    string
	currency   string
	submitting bool
	state      State
	created    *domain.PaymentRequest
	failure    *Failure
}

func NewGenerateLinkForm(currency string) *GenerateLinkForm {
	return &GenerateLinkForm{currency: currency, state: StateIdle}
}

func (f *GenerateLinkForm) SelectCustomer(c domain.CustomerRecord) {
	f.mu.Lock()
	f.customer = &c
	f.mu.Unlock()
}

func (f *GenerateLinkForm) ClearCustomer() {
	f.mu.Lock()
	f.customer = nil
	f.mu.Unlock()
}

func (f *GenerateLinkForm) SetAmount(amount string) {
	f.mu.Lock()
	f.amount = amount
	f.mu.Unlock()
}

func (f *GenerateLinkForm) SetConcept(concept string) {
	f.mu.Lock()
	f.concept = concept
	f.mu.Unlock()
}

// SetCurrency picks the link currency as an upper-case code. A blank code
// keeps the current one.
func (f *GenerateLinkForm) SetCurrency(currency string) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return
	}
	f.mu.Lock()
	f.currency = currency
	f.mu.Unlock()
}

// ParseAmount reads a user-typed amount. Anything but a positive number fails.
func ParseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || !d.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	return d, nil
}

func (f *GenerateLinkForm) canSubmitLocked() bool {
	if f.customer == nil || f.submitting {
		return false
	}
	if _, err := ParseAmount(f.amount); err != nil {
		return false
	}
	return strings.TrimSpace(f.concept) != ""
}

// CanSubmit reports whether the submit control is enabled.
func (f *GenerateLinkForm) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSubmitLocked()
}

// Submit sends the form through creator. It refuses with ErrFormIncomplete
// while CanSubmit is false, including while a previous submit is in flight.
func (f *GenerateLinkForm) Submit(ctx context.Context, creator LinkCreator) (*domain.PaymentRequest, error) {
	f.mu.Lock()
	if !f.canSubmitLocked() {
		f.mu.Unlock()
		return nil, ErrFormIncomplete
	}
	amount, _ := ParseAmount(f.amount)
	req := domain.NewPaymentRequest{
		CustomerName:       f.customer.Name,
		CustomerEmail:      f.customer.Email,
		Amount:             amount,
		Currency:           f.currency,
		Description:        strings.TrimSpace(f.concept),
		ExternalContactRef: f.customer.ID,
	}
	f.submitting = true
	f.state = StateLoading
	f.failure = nil
	f.mu.Unlock()

	p, err := creator.CreatePaymentLink(ctx, req)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.state = StateFailed
		f.failure = Classify(err)
		return nil, err
	}
	f.state = StateReady
	f.created = p
	return p, nil
}

func (f *GenerateLinkForm) Snapshot() GenerateLinkFormSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return GenerateLinkFormSnapshot{
		Customer:  f.customer,
		Amount:    f.amount,
		Concept:   f.concept,
		Currency:  f.currency,
		CanSubmit: f.canSubmitLocked(),
		State:     f.state,
		Created:   f.created,
		Failure:   f.failure,
	}
}
