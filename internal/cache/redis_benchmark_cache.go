// Package cache keeps recently fetched market benchmarks
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
)

const loanBenchmarksKey = "benchmarks:loans"

// RedisBenchmarkCache implements BenchmarkCache using Redis
type RedisBenchmarkCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

var _ interfaces.BenchmarkCache = (*RedisBenchmarkCache)(nil)

// NewRedisBenchmarkCache connects to Redis and verifies the connection
func NewRedisBenchmarkCache(ctx context.Context, addr, password string, ttl time.Duration, log *logrus.Logger) (*RedisBenchmarkCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBenchmarkCache{client: client, ttl: ttl, log: log}, nil
}

// GetLoanBenchmarks returns the cached benchmarks or models.ErrNotFound
func (c *RedisBenchmarkCache) GetLoanBenchmarks(ctx context.Context) (*models.LoanBenchmarks, error) {
	data, err := c.client.Get(ctx, loanBenchmarksKey).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("Benchmark cache miss")
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get benchmarks from cache: %w", err)
	}

	var b models.LoanBenchmarks
	if err := json.Unmarshal(data, &b); err != nil {
		_ = c.client.Del(ctx, loanBenchmarksKey)
		return nil, fmt.Errorf("failed to unmarshal benchmarks: %w", err)
	}
	return &b, nil
}

// SetLoanBenchmarks stores benchmarks for the configured TTL
func (c *RedisBenchmarkCache) SetLoanBenchmarks(ctx context.Context, b *models.LoanBenchmarks) error {
	if b == nil {
		return nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal benchmarks: %w", err)
	}
	if err := c.client.Set(ctx, loanBenchmarksKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set benchmarks in cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection
func (c *RedisBenchmarkCache) Close() error {
	return c.client.Close()
}
