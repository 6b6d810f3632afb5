package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rp-pay-dashboard/internal/adapters/messaging/kafka"
	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/observability"
	"rp-pay-dashboard/internal/wiring"
)

const consumerGroup = "event-recorder"

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		observability.SetupLogger("development").Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.SetupLogger(cfg.App.Env)
	logger.Info("event recorder starting", "env", cfg.App.Env, "topic", cfg.Kafka.Topic)

	servers := kafka.SplitServers(cfg.Kafka.BootstrapServers)
	if len(servers) == 0 {
		logger.Error("kafka.bootstrap_servers is required")
		os.Exit(1)
	}
	if cfg.ClickHouse.Addr == "" && cfg.Directory.Backend == config.BackendFixture {
		logger.Warn("no durable log store configured; recorded events live only in this process")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stack, err := wiring.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to build dependencies", "error", err)
		os.Exit(1)
	}
	defer stack.Close()

	consumer, err := kafka.NewConsumer(ctx, servers, cfg.Kafka.Topic, consumerGroup, logger)
	if err != nil {
		logger.Error("Failed to create Kafka consumer", "error", err)
		os.Exit(1)
	}
	defer consumer.Close()

	recorder := NewRecorder(stack.Service, consumer.Client(), logger)

	logger.Info("event recorder ready")
	if err := consumer.Run(ctx, recorder.Handle); err != nil {
		logger.Error("event recorder stopped", "error", err)
		stop()
		consumer.Close()
		stack.Close()
		os.Exit(1)
	}
	logger.Info("event recorder stopping")
}
