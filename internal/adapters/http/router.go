package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rp-pay-dashboard/internal/observability"
)

// RouterConfig gathers what the dashboard API router needs.
type RouterConfig struct {
	ServiceName   string
	DefaultTenant string
	Payments      *PaymentHandler
	Admin         *AdminHandler
	Navigation    *NavigationHandler
	RateLimiter   *RateLimiterMiddleware
	Logger        *slog.Logger
}

// NewRouter mounts every dashboard route.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
	)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Handler)
	}
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		observability.NewLoggerMiddleware(cfg.Logger),
		observability.NewMetricsMiddleware(cfg.ServiceName),
		observability.NewTracingMiddleware(cfg.ServiceName),
		RequestScope(cfg.DefaultTenant),
	)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{
			"status":  "healthy",
			"service": cfg.ServiceName,
		}, http.StatusOK, cfg.Logger)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/l/{token}", cfg.Payments.HandleResolveLink)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/navigation", cfg.Navigation.HandleCurrent)
		r.Post("/navigation", cfg.Navigation.HandleGoTo)
		r.Post("/navigation/back", cfg.Navigation.HandleBack)

		r.Get("/dashboard", cfg.Payments.HandleDashboard)
		r.Get("/customers", cfg.Payments.HandleSearchCustomers)

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", cfg.Payments.HandleHistory)
			r.Post("/", cfg.Payments.HandleCreatePayment)
			r.Get("/export", cfg.Payments.HandleExport)
			r.Get("/{id}", cfg.Payments.HandleDetail)
			r.Get("/{id}/receipt", cfg.Payments.HandleReceipt)
			r.Post("/{id}/resend", cfg.Payments.HandleResend)
		})

		r.Get("/settings", cfg.Payments.HandleGetSettings)
		r.Put("/settings", cfg.Payments.HandleUpdateSettings)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/overview", cfg.Admin.HandleOverview)
			r.Get("/accounts", cfg.Admin.HandleAccounts)
			r.Get("/accounts/{id}", cfg.Admin.HandleAccount)
			r.Get("/logs", cfg.Admin.HandleLogs)
		})
	})

	return r
}
