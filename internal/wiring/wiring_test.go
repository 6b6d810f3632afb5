package wiring

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/adapters/directory/fixture"
	"rp-pay-dashboard/internal/adapters/directory/remote"
	"rp-pay-dashboard/internal/adapters/messaging/mock"
	"rp-pay-dashboard/internal/adapters/storage/memory"
	"rp-pay-dashboard/internal/config"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuild_Fixture(t *testing.T) {
	cfg, err := config.Parse([]byte("links:\n  signing_secret: s3cret\n"))
	require.NoError(t, err)

	s, err := Build(context.Background(), cfg, discard())
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &fixture.Directory{}, s.Directory)
	assert.IsType(t, &fixture.Directory{}, s.Logs)
	assert.IsType(t, &mock.Broker{}, s.Events)
	assert.IsType(t, &memory.RateLimiter{}, s.Limiter)
	assert.IsType(t, &fixture.Directory{}, s.Timeline)
	require.NotNil(t, s.Service)

	d, err := s.Service.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, d.Total)
}

func TestBuild_Remote(t *testing.T) {
	cfg, err := config.Parse([]byte(`
directory:
  backend: remote
remote:
  base_url: http://payments.internal:8000
  tenant_id: loc_1
`))
	require.NoError(t, err)

	s, err := Build(context.Background(), cfg, discard())
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &remote.Client{}, s.Directory)
	assert.IsType(t, &remote.Client{}, s.Accounts)
	assert.Nil(t, s.Timeline, "the remote service keeps its own timeline")
}

func TestBuild_UnknownBackend(t *testing.T) {
	cfg := &config.Config{}
	cfg.Directory.Backend = "carrier-pigeon"

	_, err := Build(context.Background(), cfg, discard())
	assert.ErrorContains(t, err, "carrier-pigeon")
}

func TestStack_CloseRunsInReverse(t *testing.T) {
	var order []int
	s := &Stack{}
	s.onClose(func() { order = append(order, 1) })
	s.onClose(func() { order = append(order, 2) })
	s.Close()
	s.Close()
	assert.Equal(t, []int{2, 1}, order)
}
