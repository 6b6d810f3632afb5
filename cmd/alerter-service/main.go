package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/wiring"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		observability.SetupLogger("development").Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("Alerter service starting", "env", cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stack, err := wiring.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Method(http.MethodPost, "/alert", NewAlertHandler(stack.Service, logger))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "OK"}); err != nil {
			logger.Error("Failed to write health response", "error", err)
		}
	})

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.PortAlerter,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Alerter service started", "port", cfg.Server.PortAlerter)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}
