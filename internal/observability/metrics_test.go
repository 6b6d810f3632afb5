package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestMetricsMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware("metrics-test"))
	r.Get("/payments/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/payments/"+id, nil))
	}

	body := scrape(t)
	assert.Contains(t, body, `http_requests_total{code="404",method="GET",path="/payments/{id}",service="metrics-test"} 2`)
	assert.NotContains(t, body, `path="/payments/1"`)
}

func TestMetricsMiddleware_UnmatchedPathsShareOneLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware("metrics-unmatched"))
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	for _, path := range []string{"/wp-admin", "/random/123"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t)
	assert.Contains(t, body, `http_requests_total{code="404",method="GET",path="unmatched",service="metrics-unmatched"} 2`)
	assert.NotContains(t, body, `path="/wp-admin"`)
}

func TestDomainCounters(t *testing.T) {
	RecordLinkCreated("PEN")
	RecordDirectoryFailure("list_payments", "transport")
	RecordStaleResponse("customer_search")

	body := scrape(t)
	assert.Contains(t, body, `rppay_payment_links_created_total{currency="PEN"}`)
	assert.Contains(t, body, `rppay_directory_failures_total{kind="transport",op="list_payments"}`)
	assert.Contains(t, body, `rppay_stale_responses_discarded_total{field="customer_search"}`)
}
