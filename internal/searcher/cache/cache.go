// Package cache keeps ranked search responses in Redis. Keys embed the
// snapshot build ID, so a rebuild makes every older entry unreachable and
// it simply ages out.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/LSI-Search-Platform/pkg/resilience"
)

const keyPrefix = "lsi:search:"

// Backend is the subset of pkg/redis.Client the cache needs.
type Backend interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	client  Backend
	breaker *resilience.CircuitBreaker
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache. m may be nil. After repeated backend errors the
// cache is bypassed until the circuit breaker lets a probe through.
func New(client Backend, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	breaker := resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     30 * time.Second,
		OnStateChange: func(_, to resilience.State) {
			if m == nil {
				return
			}
			if to == resilience.StateClosed {
				m.CacheCircuitOpen.Set(0)
			} else {
				m.CacheCircuitOpen.Set(1)
			}
		},
	})
	return &QueryCache{
		client:  client,
		breaker: breaker,
		ttl:     ttl,
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// CircuitState reports whether Redis is currently being bypassed.
func (c *QueryCache) CircuitState() resilience.State {
	return c.breaker.GetState()
}

func (c *QueryCache) Get(ctx context.Context, buildID string, plan *parser.QueryPlan, limit int) (*executor.SearchResult, bool) {
	key := BuildKey(buildID, plan, limit)
	var data string
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.client.Lookup(ctx, key)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.miss()
		return nil, false
	}
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	if !found {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query", plan.RawQuery, "key", key)
	// The cached entry was produced for some raw query with the same terms.
	result.Query = plan.RawQuery
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, buildID string, plan *parser.QueryPlan, limit int, result *executor.SearchResult) {
	key := BuildKey(buildID, plan, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.client.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached response for plan under buildID or runs
// computeFn once for all concurrent callers with the same key. The bool is
// true on a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	buildID string,
	plan *parser.QueryPlan,
	limit int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, buildID, plan, limit); ok {
		return result, true, nil
	}
	key := BuildKey(buildID, plan, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		// Only cache what was computed against the snapshot the key names.
		if result.BuildID == buildID {
			c.Set(ctx, buildID, plan, limit, result)
		}
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	shared := *val.(*executor.SearchResult)
	shared.Query = plan.RawQuery
	return &shared, false, nil
}

// Invalidate deletes every cached response regardless of build.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// BuildKey derives the Redis key. Term order does not matter because the
// query vector only counts occurrences.
func BuildKey(buildID string, plan *parser.QueryPlan, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", plan.Normalized(), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, buildID, hash[:16])
}
