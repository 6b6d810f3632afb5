package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
)

var (
	_ ports.Directory        = (*Client)(nil)
	_ ports.AccountDirectory = (*Client)(nil)
	_ ports.LogStore         = (*Client)(nil)
)

// customerSearchPageSize bounds how many contacts are scanned per search.
const customerSearchPageSize = 100

// SearchCustomers derives customers from recent payments, since the service
// exposes no contact search of its own.
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []domain.CustomerRecord{}, nil
	}
	page, err := c.ListPayments(ctx, 1, customerSearchPageSize, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := make([]domain.CustomerRecord, 0)
	for _, p := range page.Items {
		key := strings.ToLower(p.CustomerEmail)
		if seen[key] {
			continue
		}
		if !strings.Contains(strings.ToLower(p.CustomerName), q) && !strings.Contains(key, q) {
			continue
		}
		seen[key] = true
		id := p.ExternalContactRef
		if id == "" {
			id = p.CustomerEmail
		}
		out = append(out, domain.CustomerRecord{ID: id, Name: p.CustomerName, Email: p.CustomerEmail, Initials: domain.Initials(p.CustomerName)})
	}
	return out, nil
}

func (c *Client) ListPayments(ctx context.Context, page, pageSize int, status domain.PaymentStatus) (domain.PaymentPage, error) {
	q := pageQuery(page, pageSize)
	if status != "" {
		q.Set("status", string(status))
	}
	var out domain.PaymentPage
	if err := c.do(ctx, "list payments", http.MethodGet, "api/payments/", q, nil, &out); err != nil {
		return domain.PaymentPage{}, err
	}
	if out.Items == nil {
		out.Items = []domain.PaymentRequest{}
	}
	for i := range out.Items {
		out.Items[i].Normalize()
	}
	return out, nil
}

// flexibleID accepts an id sent as either a JSON string or a number.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type generateLinkResponse struct {
	ID          flexibleID `json:"id"`
	PaymentLink string     `json:"payment_link"`
}

func (c *Client) CreatePaymentRequest(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error) {
	var resp generateLinkResponse
	if err := c.do(ctx, "create payment link", http.MethodPost, "api/payments/generate-link/", nil, req, &resp); err != nil {
		return nil, err
	}
	if resp.ID == "" || resp.PaymentLink == "" {
		return nil, &domain.RemoteError{Kind: domain.ErrServiceRejected, Op: "create payment link", Message: "response is missing id or payment_link"}
	}
	now := time.Now().UTC()
	p := &domain.PaymentRequest{
		ID:                 string(resp.ID),
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		Status:             domain.StatusPending,
		CreatedAt:          now,
		PaymentLink:        resp.PaymentLink,
		ExternalContactRef: req.ExternalContactRef,
	}
	p.Normalize()
	return p, nil
}

func (c *Client) GetPaymentDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	var out domain.PaymentDetail
	if err := c.do(ctx, "get payment detail", http.MethodGet, "api/payments/"+url.PathEscape(id)+"/", nil, nil, &out); err != nil {
		return nil, err
	}
	out.Normalize()
	for i := range out.Events {
		out.Events[i].PaymentID = out.ID
	}
	slices.SortStableFunc(out.Events, func(a, b domain.PaymentEvent) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return &out, nil
}

func (c *Client) GetSettings(ctx context.Context) (domain.Settings, error) {
	var out domain.Settings
	if err := c.do(ctx, "get settings", http.MethodGet, "api/settings/", nil, nil, &out); err != nil {
		return domain.Settings{}, err
	}
	return out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return c.do(ctx, "update settings", http.MethodPut, "api/settings/", nil, s, nil)
}

// listEnvelope accepts both a bare JSON array and a {"results": [...]} page.
type listEnvelope[T any] struct {
	items []T
}

func (l *listEnvelope[T]) UnmarshalJSON(data []byte) error {
	if trimmed := strings.TrimSpace(string(data)); strings.HasPrefix(trimmed, "[") {
		return json.Unmarshal(data, &l.items)
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &page); err != nil {
		return err
	}
	l.items = page.Results
	return nil
}

func (c *Client) ListAccounts(ctx context.Context, status string) ([]domain.TenantAccount, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var out listEnvelope[domain.TenantAccount]
	if err := c.do(ctx, "list accounts", http.MethodGet, "api/admin/accounts/", q, nil, &out); err != nil {
		return nil, err
	}
	if out.items == nil {
		return []domain.TenantAccount{}, nil
	}
	return out.items, nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (*domain.TenantAccount, error) {
	var out domain.TenantAccount
	err := c.do(ctx, "get account", http.MethodGet, "api/admin/accounts/"+url.PathEscape(id)+"/", nil, nil, &out)
	if err != nil {
		var re *domain.RemoteError
		if errors.As(err, &re) && re.Kind == domain.ErrNotFound {
			re.Kind = domain.ErrAccountNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.SystemLog, error) {
	q := url.Values{}
	if f.Source != "" {
		q.Set("source", f.Source)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	var out listEnvelope[domain.SystemLog]
	if err := c.do(ctx, "list logs", http.MethodGet, "api/admin/logs/", q, nil, &out); err != nil {
		return nil, err
	}
	if out.items == nil {
		return []domain.SystemLog{}, nil
	}
	return out.items, nil
}

func (c *Client) AppendLog(ctx context.Context, entry domain.SystemLog) error {
	return c.do(ctx, "append log", http.MethodPost, "api/admin/logs/", nil, entry, nil)
}
