package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Directory backends selectable at start-up.
const (
	BackendFixture  = "fixture"
	BackendRemote   = "remote"
	BackendPostgres = "postgres"
)

// DirectoryConfig selects and tunes the payment directory.
type DirectoryConfig struct {
	Backend          string `yaml:"backend"`
	LinkHost         string `yaml:"link_host"`
	HistoryFetchSize int    `yaml:"history_fetch_size"`
	PageSize         int    `yaml:"page_size"`
}

// RemoteConfig describes the REST service behind the remote backend.
type RemoteConfig struct {
	BaseURL  string        `yaml:"base_url"`
	TenantID string        `yaml:"tenant_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ClickHouseConfig stores parameters for the system log store.
type ClickHouseConfig struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Table    string `yaml:"table"`
}

// TracingConfig points the OTLP exporter at a collector. An empty endpoint
// disables export.
type TracingConfig struct {
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	App struct {
		Env string `yaml:"env"`
	} `yaml:"app"`
	Server struct {
		Port        string        `yaml:"port"`
		PortAlerter string        `yaml:"port_alerter"`
		SessionTTL  time.Duration `yaml:"session_ttl"`
	} `yaml:"server"`
	Directory DirectoryConfig `yaml:"directory"`
	Remote    RemoteConfig    `yaml:"remote"`
	Postgres  struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"redis"`
	RateLimit struct {
		Limit  int           `yaml:"limit"`
		Window time.Duration `yaml:"window"`
	} `yaml:"rate_limit"`
	Kafka struct {
		BootstrapServers string `yaml:"bootstrap_servers"`
		Topic            string `yaml:"topic"`
	} `yaml:"kafka"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Links      struct {
		SigningSecret string `yaml:"signing_secret"`
	} `yaml:"links"`
}

// Load reads the YAML file at configPath, expanding ${VARS} from the environment.
// A .env file next to the working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	return Parse(file)
}

// Parse decodes raw YAML, applies defaults and validates the result.
func Parse(raw []byte) (*Config, error) {
	config := &Config{}

	// First, we substitute environment variables into the raw YAML file.
	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if c.Server.PortAlerter == "" {
		c.Server.PortAlerter = "8081"
	}
	if c.Server.SessionTTL <= 0 {
		c.Server.SessionTTL = 30 * time.Minute
	}
	if c.Directory.Backend == "" {
		c.Directory.Backend = BackendFixture
	}
	if c.Directory.LinkHost == "" {
		c.Directory.LinkHost = "pay.rp-pay.com"
	}
	if c.Directory.HistoryFetchSize <= 0 {
		c.Directory.HistoryFetchSize = 100
	}
	if c.Directory.PageSize <= 0 {
		c.Directory.PageSize = 10
	}
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	if c.Redis.CacheTTL <= 0 {
		c.Redis.CacheTTL = 5 * time.Minute
	}
	if c.RateLimit.Limit <= 0 {
		c.RateLimit.Limit = 100
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "payments.events"
	}
	if c.ClickHouse.Table == "" {
		c.ClickHouse.Table = "system_logs"
	}
	if c.Tracing.SampleRatio <= 0 || c.Tracing.SampleRatio > 1 {
		c.Tracing.SampleRatio = 1
	}
}

// Validate rejects configurations the selected backend cannot run with.
func (c *Config) Validate() error {
	switch c.Directory.Backend {
	case BackendFixture:
	case BackendRemote:
		if c.Remote.BaseURL == "" {
			return errors.New("remote.base_url is required for the remote backend")
		}
		if c.Remote.TenantID == "" {
			return errors.New("remote.tenant_id is required for the remote backend")
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown directory backend %q", c.Directory.Backend)
	}
	if c.Directory.Backend != BackendRemote && c.Links.SigningSecret == "" {
		return errors.New("links.signing_secret is required to issue payment links")
	}
	return nil
}

// Development reports whether the app runs in a local environment.
func (c *Config) Development() bool {
	return c.App.Env == "development" || c.App.Env == "dev"
}
