package listing

import "rp-pay-dashboard/internal/core/domain"

// Account status classes used by the operator client list.
const (
	AccountActive       = "active"
	AccountError        = "error"
	AccountDisconnected = "disconnected"
)

// LogCriteria is the filter state of the system logs screen.
type LogCriteria struct {
	Query     string
	EventType string
	Status    string
}

// FilterLogs keeps the logs matching c, preserving order.
func FilterLogs(logs []domain.SystemLog, c LogCriteria) []domain.SystemLog {
	out := make([]domain.SystemLog, 0, len(logs))
	for _, l := range logs {
		if !containsFold(c.Query, l.Client, l.Message, l.PaymentID) {
			continue
		}
		if c.EventType != "" && c.EventType != All && string(l.EventType) != c.EventType {
			continue
		}
		if c.Status != "" && c.Status != All && string(l.Status) != c.Status {
			continue
		}
		out = append(out, l)
	}
	return out
}

// AccountCriteria is the filter state of the operator client list.
type AccountCriteria struct {
	Query  string
	Status string
}

// FilterAccounts keeps the accounts matching c, preserving order.
func FilterAccounts(accounts []domain.TenantAccount, c AccountCriteria) []domain.TenantAccount {
	out := make([]domain.TenantAccount, 0, len(accounts))
	for _, a := range accounts {
		if !containsFold(c.Query, a.Company, a.ContactEmail, a.LocationID) {
			continue
		}
		if !accountInClass(a, c.Status) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func accountInClass(a domain.TenantAccount, class string) bool {
	switch class {
	case AccountActive:
		return a.Healthy()
	case AccountError:
		return a.CRMStatus == domain.ConnError || a.ProcessorStatus == domain.ConnError
	case AccountDisconnected:
		return a.CRMStatus == domain.ConnDisconnected || a.ProcessorStatus == domain.ConnDisconnected
	default:
		return true
	}
}
