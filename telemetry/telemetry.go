// Package telemetry periodically publishes a pool or executor's
// StatsSnapshot to Redis, for deployments that want current pool state
// readable from outside the process (a dashboard, a sibling service)
// without scraping Prometheus. It is optional: a Publisher built with
// Enabled: false does nothing on every call, the same no-op shape the
// package's other ambient collaborators use when unconfigured.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chainlens/taskpool"
)

// Config configures a Publisher.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	Enabled   bool
}

// StatsSource is satisfied by *taskpool.IsolatedPool and
// *taskpool.InProcessExecutor.
type StatsSource interface {
	Stats() taskpool.StatsSnapshot
}

// Publisher writes a named source's StatsSnapshot to a Redis key; Run
// repeats the write on a fixed interval until its context is done.
type Publisher struct {
	client    *redis.Client
	keyPrefix string
	enabled   bool
}

// New connects to Redis per cfg. A disabled config returns a Publisher
// whose methods are no-ops, so callers don't need to branch on whether
// telemetry is configured.
func New(cfg Config) (*Publisher, error) {
	if !cfg.Enabled {
		return &Publisher{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("telemetry: redis connection failed: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "taskpool"
	}
	return &Publisher{client: client, keyPrefix: prefix, enabled: true}, nil
}

// Close releases the underlying Redis connection. It is a no-op on a
// disabled Publisher.
func (p *Publisher) Close() error {
	if !p.enabled {
		return nil
	}
	return p.client.Close()
}

// IsEnabled reports whether the Publisher is backed by a real
// connection.
func (p *Publisher) IsEnabled() bool {
	return p.enabled
}

// PublishOnce writes source's current stats to the key for name.
func (p *Publisher) PublishOnce(ctx context.Context, name string, source StatsSource) error {
	if !p.enabled {
		return nil
	}

	data, err := json.Marshal(source.Stats())
	if err != nil {
		return err
	}
	return p.client.Set(ctx, p.key(name), data, 0).Err()
}

// Run publishes source's stats under name every interval until ctx is
// done. It is meant to be run in its own goroutine.
func (p *Publisher) Run(ctx context.Context, name string, source StatsSource, interval time.Duration) {
	if !p.enabled {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.PublishOnce(ctx, name, source)
		}
	}
}

func (p *Publisher) key(name string) string {
	return p.keyPrefix + ":pool:" + name
}
