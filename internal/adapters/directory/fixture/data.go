package fixture

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"rp-pay-dashboard/internal/core/domain"
)

func at(value string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05", value)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

func seedCustomers() []domain.CustomerRecord {
	raw := []struct{ id, name, email string }{
		{"1", "Maria Gonzalez", "maria.g@gmail.com"},
		{"2", "Carlos Rodriguez", "crod@empresa.com"},
		{"3", "Ana Silva", "ana.silva@hotmail.com"},
		{"4", "Jorge Perez", "jorgito@tech.co"},
		{"5", "Lucia Mendez", "lucia.m@studio.com"},
	}
	out := make([]domain.CustomerRecord, 0, len(raw))
	for _, c := range raw {
		out = append(out, domain.CustomerRecord{ID: c.id, Name: c.name, Email: c.email, Initials: domain.Initials(c.name)})
	}
	return out
}

// seedPayments is ordered newest first.
func seedPayments() []domain.PaymentRequest {
	return []domain.PaymentRequest{
		{ID: "1", CustomerName: "Maria Gonzalez", CustomerEmail: "maria.g@gmail.com", Amount: decimal.RequireFromString("1200.00"), Currency: "USD", Description: "Asesoría Estratégica - Pack 5 Horas", Status: domain.StatusApproved, Method: domain.MethodCard, CreatedAt: at("2023-10-24T14:30:00"), ExternalContactRef: "contacto-123"},
		{ID: "2", CustomerName: "Carlos Rodriguez", CustomerEmail: "crod@empresa.com", Amount: decimal.RequireFromString("850.50"), Currency: "USD", Description: "Consultoría mensual", Status: domain.StatusPending, Method: domain.MethodPix, CreatedAt: at("2023-10-24T12:15:00")},
		{ID: "3", CustomerName: "Ana Silva", CustomerEmail: "ana.silva@hotmail.com", Amount: decimal.RequireFromString("2500.00"), Currency: "USD", Description: "Desarrollo landing page", Status: domain.StatusApproved, Method: domain.MethodTransfer, CreatedAt: at("2023-10-23T18:45:00")},
	}
}

// seedEvents builds the timeline a seeded payment would have accumulated.
func seedEvents(p domain.PaymentRequest) []domain.PaymentEvent {
	events := []domain.PaymentEvent{{
		ID:        "event-" + p.ID + "-1",
		PaymentID: p.ID,
		Type:      domain.EventLinkCreated,
		Payload:   json.RawMessage(`{"message": "Payment link created"}`),
		CreatedAt: p.CreatedAt,
	}}
	switch p.Status {
	case domain.StatusApproved:
		events = append(events, domain.PaymentEvent{
			ID:        "event-" + p.ID + "-2",
			PaymentID: p.ID,
			Type:      domain.EventPaymentApproved,
			Payload:   json.RawMessage(`{"message": "Payment approved"}`),
			CreatedAt: p.CreatedAt.Add(15 * time.Minute),
		})
	case domain.StatusRejected:
		events = append(events, domain.PaymentEvent{
			ID:        "event-" + p.ID + "-2",
			PaymentID: p.ID,
			Type:      domain.EventPaymentRejected,
			Payload:   json.RawMessage(`{"message": "Payment rejected"}`),
			CreatedAt: p.CreatedAt.Add(15 * time.Minute),
		})
	}
	return events
}

func seedAccounts() []domain.TenantAccount {
	raw := []struct {
		id, company, email, location string
		crm, proc                    domain.ConnectionStatus
		installed, lastPayment       string
		amount                       string
	}{
		{"1", "Agency Alpha", "admin@alpha.com", "loc_Xy78z9", domain.ConnConnected, domain.ConnConnected, "2023-08-15T00:00:00", "2023-10-25T08:40:00", "150.00"},
		{"2", "Marketing Pro", "sarah@mpro.io", "loc_Bk21mQ", domain.ConnConnected, domain.ConnError, "2023-09-01T00:00:00", "2023-10-24T10:00:00", "89.00"},
		{"3", "Local Dental", "dr.smith@dental.com", "loc_99An2s", domain.ConnDisconnected, domain.ConnDisconnected, "2023-07-20T00:00:00", "2023-10-05T10:00:00", "1200.00"},
		{"4", "Ecom Boosters", "team@ecomb.com", "loc_Hh77ss", domain.ConnConnected, domain.ConnConnected, "2023-10-10T00:00:00", "2023-10-24T18:00:00", "45.00"},
		{"5", "Real Estate X", "info@rex.com", "loc_Mm33pp", domain.ConnError, domain.ConnConnected, "2023-09-15T00:00:00", "2023-10-22T10:00:00", "500.00"},
		{"6", "Fitness Hub", "gym@fit.com", "loc_Qwe123", domain.ConnConnected, domain.ConnConnected, "2023-06-01T00:00:00", "2023-10-25T09:00:00", "30.00"},
		{"7", "Legal Advisors", "law@advisors.com", "loc_Asd456", domain.ConnConnected, domain.ConnConnected, "2023-05-20T00:00:00", "2023-10-25T05:40:00", "250.00"},
	}
	out := make([]domain.TenantAccount, 0, len(raw))
	for _, a := range raw {
		out = append(out, domain.TenantAccount{
			ID:                a.id,
			Company:           a.company,
			ContactEmail:      a.email,
			LocationID:        a.location,
			CRMStatus:         a.crm,
			ProcessorStatus:   a.proc,
			InstalledAt:       at(a.installed),
			LastPaymentAt:     at(a.lastPayment),
			LastPaymentAmount: a.amount,
		})
	}
	return out
}

// seedLogs is ordered newest first.
func seedLogs() []domain.SystemLog {
	return []domain.SystemLog{
		{ID: "log_001", Timestamp: at("2023-10-25T10:42:15"), Client: "Agency Alpha", EventType: domain.LogPaymentApproved, Message: "Payment processed successfully via API.", PaymentID: "pay_123456789", Status: domain.LogSuccess, DetailsJSON: `{"amount": 150.00, "currency": "USD", "method": "credit_card", "processor": "mercadopago"}`},
		{ID: "log_002", Timestamp: at("2023-10-25T10:41:03"), Client: "Marketing Pro", EventType: domain.LogErrorEvent, Message: "GHL API Timeout (504 Gateway Time-out)", PaymentID: "pay_987654321", Status: domain.LogError, DetailsJSON: `{"error_code": 504, "endpoint": "/v1/contacts", "retry_count": 3, "latency_ms": 5002}`},
		{ID: "log_003", Timestamp: at("2023-10-25T10:38:55"), Client: "Local Dental", EventType: domain.LogReconnection, Message: "Mercado Pago token refreshed automatically.", Status: domain.LogWarning, DetailsJSON: `{"old_token_prefix": "APP_USR-123", "new_expiry": "2023-10-26T10:38:55Z"}`},
		{ID: "log_004", Timestamp: at("2023-10-25T10:35:20"), Client: "Ecom Boosters", EventType: domain.LogWebhookReceived, Message: "Webhook received from GHL (Opportunity Won)", Status: domain.LogSuccess, DetailsJSON: `{"trigger_type": "opportunity_status_update", "status": "won", "pipeline_id": "pip_123"}`},
		{ID: "log_005", Timestamp: at("2023-10-25T10:30:11"), Client: "Agency Alpha", EventType: domain.LogSyncContact, Message: "Contact updated: marked as paid.", PaymentID: "pay_123456789", Status: domain.LogSuccess, DetailsJSON: `{"contact_id": "con_xyz789", "tags_added": ["pago_confirmado"]}`},
		{ID: "log_006", Timestamp: at("2023-10-25T10:15:00"), Client: "Unknown Source", EventType: domain.LogErrorEvent, Message: "Invalid signature in webhook payload.", Status: domain.LogError, DetailsJSON: `{"ip_address": "203.0.113.45", "user_agent": "PostmanRuntime/7.28.0"}`},
	}
}
