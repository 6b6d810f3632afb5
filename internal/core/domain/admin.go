package domain

import "time"

// ConnectionStatus is the state of a tenant's CRM or processor integration.
type ConnectionStatus string

const (
	ConnConnected    ConnectionStatus = "connected"
	ConnDisconnected ConnectionStatus = "disconnected"
	ConnError        ConnectionStatus = "error"
)

// TenantAccount is one connected sub-account, as seen by operators.
type TenantAccount struct {
	ID                string           `json:"id"`
	Company           string           `json:"company"`
	ContactEmail      string           `json:"contact_email"`
	LocationID        string           `json:"location_id"`
	CRMStatus         ConnectionStatus `json:"ghl_status"`
	ProcessorStatus   ConnectionStatus `json:"mp_status"`
	InstalledAt       time.Time        `json:"install_date"`
	LastPaymentAt     time.Time        `json:"last_payment"`
	LastPaymentAmount string           `json:"last_payment_amount"`
}

// Healthy reports whether both integrations are connected.
func (a TenantAccount) Healthy() bool {
	return a.CRMStatus == ConnConnected && a.ProcessorStatus == ConnConnected
}

// LogStatus is the outcome recorded on a system log entry.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogError   LogStatus = "error"
	LogWarning LogStatus = "warning"
)

// LogEventType classifies system log entries.
type LogEventType string

const (
	LogPaymentApproved LogEventType = "payment_approved"
	LogWebhookReceived LogEventType = "webhook_received"
	LogErrorEvent      LogEventType = "error"
	LogReconnection    LogEventType = "reconnection"
	LogSyncContact     LogEventType = "sync_contact"
)

// SystemLog is an operator-facing record of integration activity.
type SystemLog struct {
	ID          string       `json:"id"`
	Timestamp   time.Time    `json:"timestamp"`
	Client      string       `json:"client"`
	EventType   LogEventType `json:"event_type"`
	Message     string       `json:"message"`
	PaymentID   string       `json:"payment_id,omitempty"`
	Status      LogStatus    `json:"status"`
	DetailsJSON string       `json:"details_json"`
}

// AdminOverview summarises tenant health for the operator dashboard.
type AdminOverview struct {
	TotalAccounts        int `json:"total_accounts"`
	HealthyAccounts      int `json:"healthy_accounts"`
	AccountsWithErrors   int `json:"accounts_with_errors"`
	DisconnectedAccounts int `json:"disconnected_accounts"`
	RecentErrors         int `json:"recent_errors"`
}
