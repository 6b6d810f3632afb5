package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionIsJSON(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("production", &buf).Info("payment link created", "id", "pay_1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "pay_1", line["id"])
}

func TestNewLogger_DevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("dev", &buf).Debug("loading history")
	assert.Contains(t, buf.String(), "loading history")
}

func TestLoggerMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("production", &buf)

	h := NewLoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		LoggerFrom(r.Context()).Info("inside")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), "inside")
	assert.NotNil(t, LoggerFrom(context.Background()))
}
