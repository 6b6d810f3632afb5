package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rppay"

var (
	requestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by route and status code.",
	}, []string{"service", "method", "path", "code"})

	requestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"service", "method", "path"})

	linksCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_links_created_total",
		Help:      "Payment links generated, by currency.",
	}, []string{"currency"})

	directoryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "directory_failures_total",
		Help:      "Failed payment directory calls, by operation and failure kind.",
	}, []string{"op", "kind"})

	staleDiscards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stale_responses_discarded_total",
		Help:      "Results dropped because a newer request for the same field was issued.",
	}, []string{"field"})
)

const unmatchedRoute = "unmatched"

// routeLabel returns the matched chi pattern, so /payments/{id} is one series.
// Unmatched requests share the "unmatched" label.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}

// NewMetricsMiddleware records request counts and latency per route.
func NewMetricsMiddleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			began := time.Now()
			next.ServeHTTP(ww, r)

			route := routeLabel(r)
			requestLatency.WithLabelValues(service, r.Method, route).Observe(time.Since(began).Seconds())
			requestsServed.WithLabelValues(service, r.Method, route, strconv.Itoa(ww.Status())).Inc()
		})
	}
}

func RecordLinkCreated(currency string) {
	linksCreated.WithLabelValues(currency).Inc()
}

func RecordDirectoryFailure(op, kind string) {
	directoryFailures.WithLabelValues(op, kind).Inc()
}

func RecordStaleResponse(field string) {
	staleDiscards.WithLabelValues(field).Inc()
}
