package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"rp-pay-dashboard/internal/core/domain"
	"rp-pay-dashboard/internal/core/ports"
	"rp-pay-dashboard/internal/tenant"
)

// CachingDirectory wraps a Directory and keeps customer searches and settings
// in Redis for ttl. Cache failures fall through to the wrapped directory.
type CachingDirectory struct {
	ports.Directory
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.Directory = (*CachingDirectory)(nil)

func NewCachingDirectory(next ports.Directory, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachingDirectory {
	return &CachingDirectory{Directory: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *CachingDirectory) settingsKey(ctx context.Context) string {
	return fmt.Sprintf("rppay:%s:settings", tenant.FromContext(ctx, "default"))
}

func (c *CachingDirectory) customersKey(ctx context.Context, query string) string {
	return fmt.Sprintf("rppay:%s:customers:%s", tenant.FromContext(ctx, "default"), strings.ToLower(strings.TrimSpace(query)))
}

// load reports whether key was found and decoded into out.
func (c *CachingDirectory) load(ctx context.Context, key string, out any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Warn("cache entry is corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *CachingDirectory) store(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

func (c *CachingDirectory) SearchCustomers(ctx context.Context, query string) ([]domain.CustomerRecord, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.CustomerRecord{}, nil
	}
	key := c.customersKey(ctx, query)
	var cached []domain.CustomerRecord
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	out, err := c.Directory.SearchCustomers(ctx, query)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, out)
	return out, nil
}

func (c *CachingDirectory) GetSettings(ctx context.Context) (domain.Settings, error) {
	key := c.settingsKey(ctx)
	var cached domain.Settings
	if c.load(ctx, key, &cached) {
		return cached, nil
	}
	s, err := c.Directory.GetSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	c.store(ctx, key, s)
	return s, nil
}

// UpdateSettings writes through and drops the cached copy.
func (c *CachingDirectory) UpdateSettings(ctx context.Context, s domain.Settings) error {
	if err := c.Directory.UpdateSettings(ctx, s); err != nil {
		return err
	}
	if err := c.rdb.Del(ctx, c.settingsKey(ctx)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", "error", err)
	}
	return nil
}
