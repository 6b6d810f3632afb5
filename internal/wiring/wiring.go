// Package wiring assembles the adapters a config selects behind the service ports.
package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"rp-pay-dashboard/internal/adapters/directory/fixture"
	"rp-pay-dashboard/internal/adapters/directory/remote"
	"rp-pay-dashboard/internal/adapters/messaging/kafka"
	"rp-pay-dashboard/internal/adapters/messaging/mock"
	"rp-pay-dashboard/internal/adapters/storage/clickhouse"
	"rp-pay-dashboard/internal/adapters/storage/memory"
	"rp-pay-dashboard/internal/adapters/storage/postgres"
	"rp-pay-dashboard/internal/adapters/storage/redis"
	"rp-pay-dashboard/internal/app"
	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/linktoken"
)

// Stack is the set of ports a running dashboard works against.
type Stack struct {
	Links     *linktoken.Issuer
	Directory ports.Directory
	Accounts  ports.AccountDirectory
	Logs      ports.LogStore
	Events    ports.EventPublisher
	Timeline  ports.PaymentTimeline
	Limiter   ports.RateLimiterRepository
	Service   *app.PaymentService

	closers []func()
}

// backend is what every directory adapter provides.
type backend interface {
	ports.Directory
	ports.AccountDirectory
	ports.LogStore
}

// Build connects every adapter cfg asks for. Optional infrastructure is
// skipped when its address is empty: no Redis means an in-process limiter and
// no cache, no ClickHouse keeps logs in the directory, no Kafka logs events.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stack, error) {
	s := &Stack{Links: linktoken.NewIssuer(cfg.Links.SigningSecret, cfg.Directory.LinkHost)}

	if err := s.build(ctx, cfg, logger); err != nil {
		s.Close()
		return nil, err
	}

	s.Service = app.NewPaymentService(app.Deps{
		Directory: s.Directory,
		Accounts:  s.Accounts,
		Logs:      s.Logs,
		Events:    s.Events,
		Links:     s.Links,
		Timeline:  s.Timeline,
	}, cfg.Directory.HistoryFetchSize, logger)
	return s, nil
}

func (s *Stack) build(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	dir, err := s.openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	s.Directory, s.Accounts, s.Logs = dir, dir, dir
	if timeline, ok := dir.(ports.PaymentTimeline); ok {
		s.Timeline = timeline
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		s.onClose(func() { closeRedis(rdb, logger) })
		s.Limiter = redis.NewRateLimiterAdapter(rdb)
		s.Directory = redis.NewCachingDirectory(dir, rdb, cfg.Redis.CacheTTL, logger)
		logger.Info("Connected to Redis", "addr", cfg.Redis.Addr)
	} else {
		s.Limiter = memory.NewRateLimiter()
	}

	if cfg.ClickHouse.Addr != "" {
		store, err := clickhouse.Open(ctx, cfg.ClickHouse)
		if err != nil {
			return fmt.Errorf("connect to clickhouse: %w", err)
		}
		s.onClose(func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close ClickHouse", "error", err)
			}
		})
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		s.Logs = store
		logger.Info("Connected to ClickHouse", "addr", cfg.ClickHouse.Addr)
	}

	if servers := kafka.SplitServers(cfg.Kafka.BootstrapServers); len(servers) > 0 {
		broker, err := kafka.NewBroker(ctx, servers, cfg.Kafka.Topic, logger)
		if err != nil {
			return fmt.Errorf("connect to kafka: %w", err)
		}
		s.onClose(broker.Close)
		s.Events = broker
		logger.Info("Kafka broker created", "topic", cfg.Kafka.Topic)
	} else {
		s.Events = mock.NewBroker(logger)
	}
	return nil
}

func (s *Stack) openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, error) {
	switch cfg.Directory.Backend {
	case config.BackendRemote:
		client, err := remote.New(cfg.Remote, http.DefaultTransport, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("Using remote payment directory", "base_url", cfg.Remote.BaseURL)
		return client, nil
	case config.BackendPostgres:
		repo, err := postgres.NewRepository(ctx, cfg.Postgres.DSN, s.Links)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.onClose(repo.Close)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		logger.Info("Connected to PostgreSQL")
		return repo, nil
	case config.BackendFixture:
		logger.Info("Using fixture payment directory")
		return fixture.New(s.Links)
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Directory.Backend)
	}
}

func (s *Stack) onClose(fn func()) {
	s.closers = append(s.closers, fn)
}

// Close releases every connection in reverse order of opening.
func (s *Stack) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

func closeRedis(rdb *goredis.Client, logger *slog.Logger) {
	if err := rdb.Close(); err != nil {
		logger.Warn("Failed to close Redis", "error", err)
	}
}
