package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
	"rp-pay-dashboard/internal/listing"
)

// Mock implementation of the directory
type MockDirectory struct {
	mock.Mock
}

func (m *MockDirectory) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]domain.CustomerRecord), args.Error(1)
}

func (m *MockDirectory) ListPayments(ctx context.Context, page, pageSize int, status domain.PaymentStatus) (domain.PaymentPage, error) {
	args := m.Called(ctx, page, pageSize, status)
	return args.Get(0).(domain.PaymentPage), args.Error(1)
}

func (m *MockDirectory) CreatePaymentRequest(ctx context.Context, req domain.NewPaymentRequest) (*domain.PaymentRequest, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*domain.PaymentRequest)
	return p, args.Error(1)
}

func (m *MockDirectory) GetPaymentDetail(ctx context.Context, id string) (*domain.PaymentDetail, error) {
	args := m.Called(ctx, id)
	d, _ := args.Get(0).(*domain.PaymentDetail)
	return d, args.Error(1)
}

func (m *MockDirectory) GetSettings(ctx context.Context) (domain.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Settings), args.Error(1)
}

func (m *MockDirectory) UpdateSettings(ctx context.Context, s domain.Settings) error {
	return m.Called(ctx, s).Error(0)
}

// Mock implementation of the accounts directory
type MockAccounts struct {
	mock.Mock
}

func (m *MockAccounts) ListAccounts(ctx context.Context, status string) ([]domain.TenantAccount, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.TenantAccount), args.Error(1)
}

func (m *MockAccounts) GetAccount(ctx context.Context, id string) (*domain.TenantAccount, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*domain.TenantAccount)
	return a, args.Error(1)
}

// Mock implementation of the log store
type MockLogs struct {
	mock.Mock
}

func (m *MockLogs) ListLogs(ctx context.Context, f ports.LogFilter) ([]domain.SystemLog, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.SystemLog), args.Error(1)
}

func (m *MockLogs) AppendLog(ctx context.Context, entry domain.SystemLog) error {
	return m.Called(ctx, entry).Error(0)
}

// Mock implementation of a broker
type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) PublishPaymentEvent(ctx context.Context, p domain.PaymentRequest, ev domain.PaymentEvent) error {
	return m.Called(ctx, p, ev).Error(0)
}

// Mock implementation of the payment timeline
type MockTimeline struct {
	mock.Mock
}

func (m *MockTimeline) AppendEvent(ctx context.Context, ev domain.PaymentEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type mocks struct {
	dir      *MockDirectory
	accounts *MockAccounts
	logs     *MockLogs
	broker   *MockBroker
	timeline *MockTimeline
	issuer   *linktoken.Issuer
}

func newService(t *testing.T) (*PaymentService, mocks) {
	t.Helper()
	m := mocks{
		dir:      new(MockDirectory),
		accounts: new(MockAccounts),
		logs:     new(MockLogs),
		broker:   new(MockBroker),
		timeline: new(MockTimeline),
		issuer:   linktoken.NewIssuer("test-secret", "pay.rp-pay.com"),
	}
	svc := NewPaymentService(Deps{
		Directory: m.dir,
		Accounts:  m.accounts,
		Logs:      m.logs,
		Events:    m.broker,
		Links:     m.issuer,
		Timeline:  m.timeline,
	}, 50, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, m
}

func validRequest() domain.NewPaymentRequest {
	return domain.NewPaymentRequest{
		CustomerName:  "Maria Gonzalez",
		CustomerEmail: "maria.g@gmail.com",
		Amount:        decimal.RequireFromString("150.00"),
		Description:   "Asesoría",
	}
}

func payment(id string, status domain.PaymentStatus, amount string, created time.Time) domain.PaymentRequest {
	return domain.PaymentRequest{
		ID: id, CustomerName: "Cliente " + id, CustomerEmail: id + "@example.com",
		Amount: decimal.RequireFromString(amount), Currency: "USD", Status: status, Method: domain.MethodLink, CreatedAt: created,
	}
}

func TestValidateNewPayment(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*domain.NewPaymentRequest)
		minimum string
		wantErr error
	}{
		{"valid", func(*domain.NewPaymentRequest) {}, "0", nil},
		{"no customer", func(r *domain.NewPaymentRequest) { r.CustomerName = "" }, "0", domain.ErrCustomerRequired},
		{"no email", func(r *domain.NewPaymentRequest) { r.CustomerEmail = " " }, "0", domain.ErrCustomerRequired},
		{"zero amount", func(r *domain.NewPaymentRequest) { r.Amount = decimal.Zero }, "0", domain.ErrInvalidAmount},
		{"negative amount", func(r *domain.NewPaymentRequest) { r.Amount = decimal.NewFromInt(-5) }, "0", domain.ErrInvalidAmount},
		{"blank concept", func(r *domain.NewPaymentRequest) { r.Description = "   " }, "0", domain.ErrDescriptionRequired},
		{"below minimum", func(*domain.NewPaymentRequest) {}, "200", domain.ErrAmountBelowMinimum},
		{"equal to minimum", func(*domain.NewPaymentRequest) {}, "150", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := ValidateNewPayment(req, decimal.RequireFromString(tt.minimum))
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, domain.IsValidation(err))
		})
	}
}

func TestPaymentService_CreatePaymentLink_Success(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()

	settings := domain.DefaultSettings()
	settings.DefaultCurrency = "MXN"
	m.dir.On("GetSettings", ctx).Return(settings, nil)
	m.dir.On("CreatePaymentRequest", ctx, mock.MatchedBy(func(r domain.NewPaymentRequest) bool {
		return r.Currency == "MXN" && r.CustomerName == "Maria Gonzalez"
	})).Return(&domain.PaymentRequest{ID: "pay_1", Status: domain.StatusPending, Currency: "MXN", PaymentLink: "https://pay.rp-pay.com/l/t"}, nil)
	m.broker.On("PublishPaymentEvent", ctx, mock.AnythingOfType("domain.PaymentRequest"), mock.MatchedBy(func(ev domain.PaymentEvent) bool {
		return ev.Type == domain.EventLinkCreated && ev.PaymentID == "pay_1"
	})).Return(nil)

	p, err := svc.CreatePaymentLink(ctx, validRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.NotEmpty(t, p.PaymentLink)
	m.dir.AssertExpectations(t)
	m.broker.AssertExpectations(t)
}

func TestPaymentService_CreatePaymentLink_InvalidAmount(t *testing.T) {
	svc, m := newService(t)
	req := validRequest()
	req.Amount = decimal.Zero

	_, err := svc.CreatePaymentLink(context.Background(), req)

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	m.dir.AssertNotCalled(t, "GetSettings", mock.Anything)
	m.dir.AssertNotCalled(t, "CreatePaymentRequest", mock.Anything, mock.Anything)
	m.broker.AssertNotCalled(t, "PublishPaymentEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_CreatePaymentLink_BelowMinimum(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	settings := domain.DefaultSettings()
	settings.MinAmount = "500.00"
	m.dir.On("GetSettings", ctx).Return(settings, nil)

	_, err := svc.CreatePaymentLink(ctx, validRequest())

	assert.ErrorIs(t, err, domain.ErrAmountBelowMinimum)
	m.dir.AssertNotCalled(t, "CreatePaymentRequest", mock.Anything, mock.Anything)
}

func TestPaymentService_CreatePaymentLink_SettingsUnavailable(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	m.dir.On("GetSettings", ctx).Return(domain.Settings{}, &domain.RemoteError{Kind: domain.ErrServiceUnreachable, Op: "get settings"})
	m.dir.On("CreatePaymentRequest", ctx, mock.MatchedBy(func(r domain.NewPaymentRequest) bool { return r.Currency == "USD" })).
		Return(&domain.PaymentRequest{ID: "pay_2", Status: domain.StatusPending, Currency: "USD"}, nil)
	m.broker.On("PublishPaymentEvent", ctx, mock.Anything, mock.Anything).Return(errors.New("kafka down"))

	p, err := svc.CreatePaymentLink(ctx, validRequest())

	require.NoError(t, err, "a failed publish does not undo the link")
	assert.Equal(t, "pay_2", p.ID)
}

func TestPaymentService_CreatePaymentLink_DirectoryFailure(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	m.dir.On("GetSettings", ctx).Return(domain.DefaultSettings(), nil)
	m.dir.On("CreatePaymentRequest", ctx, mock.Anything).Return(nil, &domain.RemoteError{Kind: domain.ErrServiceRejected, Op: "create payment link", Message: "boom"})

	_, err := svc.CreatePaymentLink(ctx, validRequest())

	assert.ErrorIs(t, err, domain.ErrServiceRejected)
	m.broker.AssertNotCalled(t, "PublishPaymentEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_History(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	base := time.Date(2023, 10, 24, 12, 0, 0, 0, time.UTC)
	items := make([]domain.PaymentRequest, 0, 8)
	for i := 0; i < 8; i++ {
		items = append(items, payment(string(rune('a'+i)), domain.StatusPending, "10", base.Add(-time.Duration(i)*time.Hour)))
	}
	m.dir.On("ListPayments", ctx, 1, 50, domain.PaymentStatus("")).Return(domain.PaymentPage{Items: items, TotalCount: 8}, nil)

	first, err := svc.History(ctx, listing.Criteria{}, 1, 5)
	require.NoError(t, err)
	assert.Len(t, first.Items, 5)
	assert.Equal(t, 2, first.TotalPages)

	second, err := svc.History(ctx, listing.Criteria{}, 2, 5)
	require.NoError(t, err)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, "f", second.Items[0].ID)

	filtered, err := svc.History(ctx, listing.Criteria{Query: "cliente c"}, 1, 5)
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
	assert.Equal(t, 1, filtered.TotalPages)
}

func TestPaymentService_Dashboard(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	base := time.Date(2023, 10, 24, 12, 0, 0, 0, time.UTC)
	items := []domain.PaymentRequest{
		payment("1", domain.StatusApproved, "1200.00", base),
		payment("2", domain.StatusPending, "850.50", base),
		payment("3", domain.StatusApproved, "2500.00", base),
		payment("4", domain.StatusRejected, "10", base),
		payment("5", domain.StatusPending, "10", base),
		payment("6", domain.StatusPending, "10", base),
	}
	m.dir.On("ListPayments", ctx, 1, 50, domain.PaymentStatus("")).Return(domain.PaymentPage{Items: items, TotalCount: 6}, nil)

	d, err := svc.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, 6, d.Total)
	assert.Equal(t, 3, d.Pending)
	assert.Equal(t, 2, d.Approved)
	assert.Equal(t, 1, d.Rejected)
	assert.True(t, d.ApprovedTotal.Equal(decimal.RequireFromString("3700")))
	assert.Len(t, d.Recent, 5)
}

func TestPaymentService_DetailAndResend(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	detail := &domain.PaymentDetail{PaymentRequest: payment("1", domain.StatusPending, "10", time.Now())}
	m.dir.On("GetPaymentDetail", ctx, "1").Return(detail, nil)
	m.dir.On("GetPaymentDetail", ctx, "nonexistent-id").Return(nil, domain.ErrNotFound)
	isResend := mock.MatchedBy(func(ev domain.PaymentEvent) bool {
		return ev.Type == domain.EventLinkResendRequested && ev.PaymentID == "1"
	})
	m.timeline.On("AppendEvent", ctx, isResend).Return(nil).Once()
	m.broker.On("PublishPaymentEvent", ctx, detail.PaymentRequest, isResend).Return(nil).Once()

	_, err := svc.Detail(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Detail(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := svc.ResendLink(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", got.ID)
	require.Len(t, got.Events, 1)
	assert.Equal(t, domain.EventLinkResendRequested, got.Events[0].Type)
	_, err = svc.ResendLink(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	m.timeline.AssertExpectations(t)
	m.broker.AssertExpectations(t)
}

func TestPaymentService_ResendLink_TimelineFailure(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	detail := &domain.PaymentDetail{PaymentRequest: payment("1", domain.StatusPending, "10", time.Now())}
	m.dir.On("GetPaymentDetail", ctx, "1").Return(detail, nil)
	m.timeline.On("AppendEvent", ctx, mock.Anything).Return(errors.New("connection reset"))

	_, err := svc.ResendLink(ctx, "1")
	assert.ErrorContains(t, err, "connection reset")
	m.broker.AssertNotCalled(t, "PublishPaymentEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_RecordLog(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	now := time.Date(2023, 10, 25, 11, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	m.logs.On("AppendLog", ctx, mock.MatchedBy(func(e domain.SystemLog) bool {
		return e.ID != "" && e.Timestamp.Equal(now) && e.Message == "sync ok"
	})).Return(nil).Once()
	m.logs.On("AppendLog", ctx, mock.MatchedBy(func(e domain.SystemLog) bool {
		return e.ID == "log_keep"
	})).Return(errors.New("store down")).Once()

	require.NoError(t, svc.RecordLog(ctx, domain.SystemLog{Message: "sync ok"}))
	err := svc.RecordLog(ctx, domain.SystemLog{ID: "log_keep", Timestamp: now})
	assert.ErrorContains(t, err, "store down")
	m.logs.AssertExpectations(t)
}

func TestPaymentService_ResolveLink(t *testing.T) {
	svc, m := newService(t)
	token, err := m.issuer.Token("1", "")
	require.NoError(t, err)
	m.dir.On("GetPaymentDetail", mock.Anything, "1").Return(&domain.PaymentDetail{PaymentRequest: payment("1", domain.StatusPending, "10", time.Now())}, nil)

	d, err := svc.ResolveLink(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "1", d.ID)

	_, err = svc.ResolveLink(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrInvalidLinkToken)
}

func TestPaymentService_UpdateSettingsValidates(t *testing.T) {
	svc, m := newService(t)
	s := domain.DefaultSettings()
	s.BrandColor = "red"

	err := svc.UpdateSettings(context.Background(), s)

	assert.ErrorIs(t, err, domain.ErrInvalidSettings)
	m.dir.AssertNotCalled(t, "UpdateSettings", mock.Anything, mock.Anything)
}

func TestPaymentService_AdminOverview(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	accounts := []domain.TenantAccount{
		{ID: "1", CRMStatus: domain.ConnConnected, ProcessorStatus: domain.ConnConnected},
		{ID: "2", CRMStatus: domain.ConnConnected, ProcessorStatus: domain.ConnError},
		{ID: "3", CRMStatus: domain.ConnDisconnected, ProcessorStatus: domain.ConnDisconnected},
	}
	m.accounts.On("ListAccounts", ctx, "").Return(accounts, nil)
	m.logs.On("ListLogs", ctx, ports.LogFilter{Status: domain.LogError, Limit: 100}).Return([]domain.SystemLog{{ID: "log_002"}}, nil)

	o, err := svc.AdminOverview(ctx)

	require.NoError(t, err)
	assert.Equal(t, domain.AdminOverview{TotalAccounts: 3, HealthyAccounts: 1, AccountsWithErrors: 1, DisconnectedAccounts: 1, RecentErrors: 1}, o)
}

func TestPaymentService_AccountsAndLogs(t *testing.T) {
	svc, m := newService(t)
	ctx := context.Background()
	m.accounts.On("ListAccounts", ctx, "").Return([]domain.TenantAccount{
		{ID: "1", Company: "Agency Alpha", CRMStatus: domain.ConnConnected, ProcessorStatus: domain.ConnConnected},
		{ID: "2", Company: "Marketing Pro", CRMStatus: domain.ConnConnected, ProcessorStatus: domain.ConnError},
	}, nil)
	m.logs.On("ListLogs", ctx, ports.LogFilter{Status: domain.LogError}).Return([]domain.SystemLog{
		{ID: "log_002", Client: "Marketing Pro", EventType: domain.LogErrorEvent, Status: domain.LogError},
		{ID: "log_006", Client: "Unknown Source", EventType: domain.LogErrorEvent, Status: domain.LogError},
	}, nil)

	accounts, err := svc.Accounts(ctx, listing.AccountCriteria{Query: "alpha"})
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "1", accounts[0].ID)

	logs, err := svc.Logs(ctx, listing.LogCriteria{Query: "unknown", Status: "error"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "log_006", logs[0].ID)
}
