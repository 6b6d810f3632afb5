package remote

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/tenant"
)

func newClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(config.RemoteConfig{BaseURL: srv.URL, TenantID: "loc_default", Timeout: time.Second}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return c
}

func TestListPayments(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/payments/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("page_size"))
		assert.Equal(t, "pending", r.URL.Query().Get("status"))
		assert.Equal(t, "loc_default", r.Header.Get(tenant.Header))
		_, _ = io.WriteString(w, `{"count": 6, "results": [{"id": "p6", "customer_name": "Ana Silva", "amount": "10.50", "status": "pending"}]}`)
	})

	page, err := c.ListPayments(context.Background(), 2, 5, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, 6, page.TotalCount)
	require.Len(t, page.Items, 1)
	assert.Equal(t, domain.MethodLink, page.Items[0].Method, "missing method defaults to link")
	assert.True(t, page.Items[0].Amount.Equal(decimal.RequireFromString("10.5")))
}

func TestTenantFromContextWins(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "loc_acme", r.Header.Get(tenant.Header))
		_, _ = io.WriteString(w, `{"count": 0, "results": []}`)
	})

	_, err := c.ListPayments(tenant.WithID(context.Background(), "loc_acme"), 1, 10, "")
	require.NoError(t, err)
}

func TestCreatePaymentRequest(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/payments/generate-link/", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Maria Gonzalez", body["customer_name"])
		_, _ = io.WriteString(w, `{"id": 42, "payment_link": "https://pay.rp-pay.com/l/abc"}`)
	})

	p, err := c.CreatePaymentRequest(context.Background(), domain.NewPaymentRequest{
		CustomerName: "Maria Gonzalez", CustomerEmail: "maria.g@gmail.com", Amount: decimal.NewFromInt(100), Currency: "USD", Description: "Asesoría",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", p.ID)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "https://pay.rp-pay.com/l/abc", p.PaymentLink)
}

func TestGetPaymentDetail(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/payments/p1/" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"detail": "Not found."}`)
			return
		}
		_, _ = io.WriteString(w, `{"id": "p1", "customer_name": "Ana Silva", "amount": 5, "status": "approved", "payment_method": "card",
			"events": [
				{"event_type": "payment_approved", "created_at": "2023-10-24T15:00:00Z"},
				{"event_type": "link_created", "created_at": "2023-10-24T14:00:00Z"}
			]}`)
	})

	d, err := c.GetPaymentDetail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", d.CustomerName)
	require.Len(t, d.Events, 2)
	assert.Equal(t, domain.EventLinkCreated, d.Events[0].Type, "events are ordered oldest first")
	assert.Equal(t, "p1", d.Events[1].PaymentID)

	_, err = c.GetPaymentDetail(context.Background(), "nonexistent-id")
	require.ErrorIs(t, err, domain.ErrNotFound)
	var re *domain.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Not found.", re.Message)
}

func TestFailureClassification(t *testing.T) {
	t.Run("error status carries the payload message", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error": "amount too large"}`)
		})
		_, err := c.ListPayments(context.Background(), 1, 10, "")
		require.ErrorIs(t, err, domain.ErrServiceRejected)
		var re *domain.RemoteError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, http.StatusBadRequest, re.StatusCode)
		assert.Equal(t, "amount too large", re.Message)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"results": "oops"`)
		})
		_, err := c.ListPayments(context.Background(), 1, 10, "")
		assert.ErrorIs(t, err, domain.ErrServiceRejected)
	})

	t.Run("timeout is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()
		c, err := New(config.RemoteConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)

		_, err = c.GetSettings(context.Background())
		assert.ErrorIs(t, err, domain.ErrServiceUnreachable)
	})

	t.Run("closed server is unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()
		c, err := New(config.RemoteConfig{BaseURL: srv.URL, Timeout: time.Second}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
		require.NoError(t, err)

		_, err = c.SearchCustomers(context.Background(), "maria")
		assert.ErrorIs(t, err, domain.ErrServiceUnreachable)
	})
}

func TestSearchCustomers(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"count": 3, "results": [
			{"id": "1", "customer_name": "Maria Gonzalez", "customer_email": "maria.g@gmail.com"},
			{"id": "2", "customer_name": "Maria Gonzalez", "customer_email": "maria.g@gmail.com"},
			{"id": "3", "customer_name": "Carlos Rodriguez", "customer_email": "crod@empresa.com"}
		]}`)
	})

	got, err := c.SearchCustomers(context.Background(), "MARIA")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "MG", got[0].Initials)

	empty, err := c.SearchCustomers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSettingsRoundTrip(t *testing.T) {
	var stored domain.Settings
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/settings/", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&stored))
			w.WriteHeader(http.StatusNoContent)
		default:
			_ = json.NewEncoder(w).Encode(stored)
		}
	})

	s := domain.DefaultSettings()
	s.PipelineID = "pip_123"
	require.NoError(t, c.UpdateSettings(context.Background(), s))
	got, err := c.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pip_123", got.PipelineID)

	s.DefaultCurrency = "dollars"
	assert.ErrorIs(t, c.UpdateSettings(context.Background(), s), domain.ErrInvalidSettings)
}

func TestAdminEndpoints(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/accounts/":
			assert.Equal(t, "error", r.URL.Query().Get("status"))
			_, _ = io.WriteString(w, `[{"id": "2", "company": "Marketing Pro", "ghl_status": "connected", "mp_status": "error"}]`)
		case "/api/admin/logs/":
			assert.Equal(t, "Agency Alpha", r.URL.Query().Get("source"))
			_, _ = io.WriteString(w, `{"results": [{"id": "log_001", "client": "Agency Alpha", "status": "success"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	accounts, err := c.ListAccounts(context.Background(), "error")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, domain.ConnError, accounts[0].ProcessorStatus)

	logs, err := c.ListLogs(context.Background(), ports.LogFilter{Source: "Agency Alpha"})
	require.NoError(t, err)
	require.Len(t, logs, 1)

	_, err = c.GetAccount(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
