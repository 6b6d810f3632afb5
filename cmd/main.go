package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httphandler "rp-pay-dashboard/internal/adapters/http"
	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/navigation"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/wiring"
)

const serviceName = "rp-pay-dashboard"

func main() {
	// --- 1. Configuration and Logging ---
	fallbackLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	configPath := os.Getenv("RPPAY_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fallbackLogger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("Application starting", "env", cfg.App.Env, "port", cfg.Server.Port, "backend", cfg.Directory.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- 2. Observability ---
	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing, serviceName, cfg.App.Env)
	if err != nil {
		logger.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Warn("Failed to shutdown tracer", "error", err)
		}
	}()

	// --- 3. Dependencies ---
	stack, err := wiring.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	// --- 4. Handlers ---
	payments := httphandler.NewPaymentHandler(stack.Service, cfg.Directory.PageSize, cfg.Server.SessionTTL, logger)
	sessions := navigation.NewSessions(cfg.Server.SessionTTL)

	handler := httphandler.NewRouter(httphandler.RouterConfig{
		ServiceName:   serviceName,
		DefaultTenant: cfg.Remote.TenantID,
		Payments:      payments,
		Admin:         httphandler.NewAdminHandler(stack.Service, logger),
		Navigation:    httphandler.NewNavigationHandler(sessions, logger),
		RateLimiter:   httphandler.NewRateLimiterMiddleware(stack.Limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger),
		Logger:        logger,
	})

	sweeps := []func() int{payments.SweepSessions, sessions.Sweep}
	if limiter, ok := stack.Limiter.(interface{ Sweep() int }); ok {
		sweeps = append(sweeps, limiter.Sweep)
	}
	go sweepSessions(ctx, cfg.Server.SessionTTL, logger, sweeps...)

	// --- 5. HTTP Server ---
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
		return
	}

	logger.Info("Server exited properly")
}

// sweepSessions drops idle per-browser state and rate buckets every ttl until
// ctx ends.
func sweepSessions(ctx context.Context, ttl time.Duration, logger *slog.Logger, sweeps ...func() int) {
	if ttl <= 0 {
		logger.Warn("Session sweeping disabled", "ttl", ttl)
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped := 0
			for _, sweep := range sweeps {
				dropped += sweep()
			}
			if dropped > 0 {
				logger.Debug("Swept idle sessions", "count", dropped)
			}
		}
	}
}
