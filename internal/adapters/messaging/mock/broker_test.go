package mock

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/core/domain"
)

func TestBrokerRecordsEvents(t *testing.T) {
	b := NewBroker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, b.PublishPaymentEvent(context.Background(), domain.PaymentRequest{ID: "p1"}, domain.PaymentEvent{Type: domain.EventLinkCreated}))
	events := b.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventLinkCreated, events[0].Type)
}
