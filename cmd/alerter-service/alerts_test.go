package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
)

type memoryLogs struct {
	entries []domain.SystemLog
	err     error
}

func (m *memoryLogs) ListLogs(context.Context, ports.LogFilter) ([]domain.SystemLog, error) {
	return m.entries, nil
}

func (m *memoryLogs) AppendLog(_ context.Context, entry domain.SystemLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func alertService(logs ports.LogStore) *app.PaymentService {
	return app.NewPaymentService(app.Deps{Logs: logs}, 0, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const webhookBody = `{"alerts":[
 {"status":"firing","labels":{"alertname":"DirectoryDown","severity":"critical","tenant":"Agency Alpha"},"annotations":{"summary":"remote directory unreachable"},"startsAt":"2023-10-25T10:00:00Z"},
 {"status":"firing","labels":{"alertname":"SlowSearch","severity":"warning"},"annotations":{"summary":"p95 over 2s"}},
 {"status":"resolved","labels":{"alertname":"DirectoryDown","severity":"critical"},"annotations":{"summary":"recovered"}}
]}`

func TestAlertHandler_RecordsAlerts(t *testing.T) {
	logs := &memoryLogs{}
	h := NewAlertHandler(alertService(logs), slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2023, 10, 25, 11, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert", strings.NewReader(webhookBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, logs.entries, 3)
	assert.Equal(t, domain.LogError, logs.entries[0].Status)
	assert.Equal(t, "Agency Alpha", logs.entries[0].Client)
	assert.Equal(t, "DirectoryDown: remote directory unreachable", logs.entries[0].Message)
	assert.Equal(t, time.Date(2023, 10, 25, 10, 0, 0, 0, time.UTC), logs.entries[0].Timestamp)

	assert.Equal(t, domain.LogWarning, logs.entries[1].Status)
	assert.Equal(t, "Alertmanager", logs.entries[1].Client)
	assert.Equal(t, now, logs.entries[1].Timestamp)

	assert.Equal(t, domain.LogSuccess, logs.entries[2].Status)
	assert.Contains(t, logs.entries[2].DetailsJSON, `"status":"resolved"`)
	for _, e := range logs.entries {
		assert.True(t, strings.HasPrefix(e.ID, "log_"), e.ID)
	}
}

func TestAlertHandler_BadBody(t *testing.T) {
	h := NewAlertHandler(alertService(&memoryLogs{}), slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert", strings.NewReader("nope")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertHandler_StoreDown(t *testing.T) {
	h := NewAlertHandler(alertService(&memoryLogs{err: errors.New("down")}), slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/alert", strings.NewReader(webhookBody)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
