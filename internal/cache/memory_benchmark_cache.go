package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/models"
	"github.com/Dan9191/fintrack/internal/utils"
)

// MemoryBenchmarkCache is an in-process BenchmarkCache used when Redis is not configured
type MemoryBenchmarkCache struct {
	mu      sync.RWMutex
	value   *models.LoanBenchmarks
	expires time.Time
	ttl     time.Duration
	now     utils.Clock
}

var _ interfaces.BenchmarkCache = (*MemoryBenchmarkCache)(nil)

// NewMemoryBenchmarkCache creates an empty cache
func NewMemoryBenchmarkCache(ttl time.Duration, now utils.Clock) *MemoryBenchmarkCache {
	if now == nil {
		now = time.Now
	}
	return &MemoryBenchmarkCache{ttl: ttl, now: now}
}

// GetLoanBenchmarks returns the cached benchmarks until they expire
func (c *MemoryBenchmarkCache) GetLoanBenchmarks(ctx context.Context) (*models.LoanBenchmarks, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.value == nil || !c.now().Before(c.expires) {
		return nil, models.ErrNotFound
	}
	out := *c.value
	return &out, nil
}

// SetLoanBenchmarks stores a copy for the configured TTL
func (c *MemoryBenchmarkCache) SetLoanBenchmarks(ctx context.Context, b *models.LoanBenchmarks) error {
	if b == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	v := *b
	c.value = &v
	c.expires = c.now().Add(c.ttl)
	return nil
}
