// Package listing turns a full payment collection plus user criteria into the visible subset.
// Every function here is pure; input slices are never modified.
package listing

import (
	"strings"
	"time"

	"rp-pay-dashboard/internal/core/domain"
)

// All disables a status or method filter.
const All = "all"

// Criteria is the filter state of a list screen.
type Criteria struct {
	Query  string
	Status string
	Method string
	From   time.Time
	To     time.Time
}

func (c Criteria) statusActive() bool { return c.Status != "" && c.Status != All }
func (c Criteria) methodActive() bool { return c.Method != "" && c.Method != All }

// Matches reports whether p passes every active filter.
func (c Criteria) Matches(p domain.PaymentRequest) bool {
	if !containsFold(c.Query, p.CustomerName, p.CustomerEmail) {
		return false
	}
	if c.statusActive() && string(p.Status) != c.Status {
		return false
	}
	if c.methodActive() && string(p.Method) != c.Method {
		return false
	}
	if !c.From.IsZero() && p.CreatedAt.Before(c.From) {
		return false
	}
	if !c.To.IsZero() && p.CreatedAt.After(c.To) {
		return false
	}
	return true
}

// Apply keeps the payments matching c, preserving their order.
func Apply(payments []domain.PaymentRequest, c Criteria) []domain.PaymentRequest {
	out := make([]domain.PaymentRequest, 0, len(payments))
	for _, p := range payments {
		if c.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// containsFold is true when query is blank or any field contains it, ignoring case.
func containsFold(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// EndOfDay widens a date-only upper bound so the whole day is included.
func EndOfDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
