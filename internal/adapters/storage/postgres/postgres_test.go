package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
	"rp-pay-dashboard/internal/tenant"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "", likePattern("  "))
	assert.Equal(t, "%maria%", likePattern(" maria "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

// newTestRepository connects to RPPAY_TEST_POSTGRES_DSN and skips when it is unset.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("RPPAY_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("RPPAY_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	repo, err := NewRepository(ctx, dsn, linktoken.NewIssuer("test-secret", "pay.rp-pay.com"))
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func TestRepository_PaymentLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := tenant.WithID(context.Background(), "test_"+t.Name())

	p, err := repo.CreatePaymentRequest(ctx, domain.NewPaymentRequest{
		CustomerName: "Ana Silva", CustomerEmail: "ana.silva@hotmail.com",
		Amount: decimal.RequireFromString("2500.00"), Currency: "USD", Description: "Landing page",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)

	page, err := repo.ListPayments(ctx, 1, 10, domain.StatusPending)
	require.NoError(t, err)
	require.NotEmpty(t, page.Items)
	assert.True(t, page.Items[0].Amount.Equal(p.Amount))

	detail, err := repo.GetPaymentDetail(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, detail.Events, 1)
	assert.Equal(t, domain.EventLinkCreated, detail.Events[0].Type)

	_, err = repo.GetPaymentDetail(ctx, "nonexistent-id")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRepository_Settings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := tenant.WithID(context.Background(), "test_"+t.Name())

	s, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)

	s.StageID = "stage_won"
	require.NoError(t, repo.UpdateSettings(ctx, s))
	got, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stage_won", got.StageID)
}

func TestRepository_Logs(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendLog(ctx, domain.SystemLog{Client: "pg-test", EventType: domain.LogErrorEvent, Status: domain.LogError, Message: "boom"}))
	logs, err := repo.ListLogs(ctx, ports.LogFilter{Source: "pg-test", Limit: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "boom", logs[0].Message)
}
