package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"

	"rp-pay-dashboard/internal/adapters/directory/remote"
	"rp-pay-dashboard/internal/adapters/messaging/kafka"
	"rp-pay-dashboard/internal/adapters/storage/clickhouse"
	"rp-pay-dashboard/internal/adapters/storage/postgres"
	"rp-pay-dashboard/internal/adapters/storage/redis"
	"rp-pay-dashboard/internal/config"
	"rp-pay-dashboard/internal/observability"
)

// Check describes one diagnostic check.
type Check struct {
	Name     string
	Func     func(ctx context.Context) error
	Skipped  bool
	Error    error
	Duration time.Duration
}

func main() {
	logger := observability.SetupLogger("development")
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	fmt.Println("Running dashboard diagnostics...")
	checks := runChecks(ctx, buildChecks(cfg, logger))
	if !report(os.Stdout, checks) {
		fmt.Println("\nDiagnostics found problems.")
		os.Exit(1)
	}
	fmt.Println("\nAll systems nominal.")
}

// buildChecks lists a check per dependency cfg configures. Unconfigured
// dependencies are reported as skipped.
func buildChecks(cfg *config.Config, logger *slog.Logger) []Check {
	return []Check{
		{Name: "Dashboard API", Func: func(ctx context.Context) error {
			return checkHTTPHealth(ctx, "localhost"+cfg.Server.Port+"/health", logger)
		}},
		{Name: "Alerter Service", Func: func(ctx context.Context) error {
			return checkHTTPHealth(ctx, "localhost:"+cfg.Server.PortAlerter+"/healthz", logger)
		}},
		{Name: "Payment Directory", Skipped: cfg.Directory.Backend != config.BackendRemote, Func: func(ctx context.Context) error {
			return checkRemote(ctx, cfg.Remote, logger)
		}},
		{Name: "PostgreSQL", Skipped: cfg.Postgres.DSN == "", Func: func(ctx context.Context) error {
			return checkPostgres(ctx, cfg.Postgres.DSN)
		}},
		{Name: "Redis", Skipped: cfg.Redis.Addr == "", Func: func(ctx context.Context) error {
			return checkRedis(ctx, cfg.Redis.Addr, logger)
		}},
		{Name: "Kafka Cluster", Skipped: cfg.Kafka.BootstrapServers == "", Func: func(ctx context.Context) error {
			return checkKafka(ctx, kafka.SplitServers(cfg.Kafka.BootstrapServers), cfg.Kafka.Topic, logger)
		}},
		{Name: "ClickHouse", Skipped: cfg.ClickHouse.Addr == "", Func: func(ctx context.Context) error {
			return checkClickHouse(ctx, cfg.ClickHouse)
		}},
	}
}

// runChecks runs every non-skipped check concurrently.
func runChecks(ctx context.Context, checks []Check) []Check {
	var wg sync.WaitGroup
	for i := range checks {
		if checks[i].Skipped {
			continue
		}
		wg.Add(1)
		go func(c *Check) {
			defer wg.Done()
			start := time.Now()
			c.Error = c.Func(ctx)
			c.Duration = time.Since(start)
		}(&checks[i])
	}
	wg.Wait()
	return checks
}

// report prints one line per check and reports whether all passed.
func report(w io.Writer, checks []Check) bool {
	ok := color.New(color.FgGreen).SprintFunc()
	failed := color.New(color.FgRed, color.Bold).SprintFunc()
	skipped := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintln(w, "\n--- Diagnostics report ---")
	healthy := true
	for _, c := range checks {
		switch {
		case c.Skipped:
			fmt.Fprintf(w, "[%s] %-20s (not configured)\n", skipped("SKIP"), c.Name)
		case c.Error == nil:
			fmt.Fprintf(w, "[%s] %-20s (took %v)\n", ok(" OK "), c.Name, c.Duration.Round(time.Millisecond))
		default:
			healthy = false
			fmt.Fprintf(w, "[%s] %-20s (took %v) - error: %v\n", failed("FAIL"), c.Name, c.Duration.Round(time.Millisecond), c.Error)
		}
	}
	return healthy
}

// --- Functions for checks ---

func checkHTTPHealth(ctx context.Context, url string, logger *slog.Logger) error {
	if !strings.HasPrefix(url, "http") {
		url = "http://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("Failed to close HTTP response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return nil
}

// checkRemote asks the directory service for one payment.
func checkRemote(ctx context.Context, cfg config.RemoteConfig, logger *slog.Logger) error {
	client, err := remote.New(cfg, http.DefaultTransport, logger)
	if err != nil {
		return err
	}
	_, err = client.ListPayments(ctx, 1, 1, "")
	return err
}

// checkPostgres opens the repository pool.
func checkPostgres(ctx context.Context, dsn string) error {
	repo, err := postgres.NewRepository(ctx, dsn, nil)
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Ping(ctx)
}

func checkRedis(ctx context.Context, addr string, logger *slog.Logger) error {
	rdb, err := redis.NewClient(ctx, addr)
	if err != nil {
		return err
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("Failed to close Redis", "error", err)
	}
	return nil
}

// checkKafka connects the event producer, which pings a seed broker.
func checkKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) error {
	broker, err := kafka.NewBroker(ctx, brokers, topic, logger)
	if err != nil {
		return err
	}
	broker.Close()
	return nil
}

func checkClickHouse(ctx context.Context, cfg config.ClickHouseConfig) error {
	store, err := clickhouse.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Ping(ctx)
}
