package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache holds built reports per user. Every user has a generation that
// Invalidate advances whenever their trades change. Get and Set are bound
// to the generation read before the trades were loaded, so a report built
// from data older than the last invalidation is never stored.
type Cache interface {
	Generation(ctx context.Context, userID uint) (int64, error)
	Get(ctx context.Context, userID uint, gen int64, key string) (*Report, bool, error)
	Set(ctx context.Context, userID uint, gen int64, key string, r *Report) error
	Invalidate(ctx context.Context, userID uint) error
}

// RedisCache stores reports as JSON. The generation counter is part of
// every key, so invalidation is a single INCR and stale entries age out
// through their TTL.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func generationKey(userID uint) string {
	return fmt.Sprintf("report:%d:gen", userID)
}

func reportKey(userID uint, gen int64, key string) string {
	return fmt.Sprintf("report:%d:%d:%s", userID, gen, key)
}

func (c *RedisCache) Generation(ctx context.Context, userID uint) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey(userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

func (c *RedisCache) Get(ctx context.Context, userID uint, gen int64, key string) (*Report, bool, error) {
	k := reportKey(userID, gen, key)
	data, err := c.rdb.Get(ctx, k).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r, err := decodeReport(data)
	if err != nil {
		return nil, false, fmt.Errorf("corrupt cached report %s: %w", k, err)
	}
	return r, true, nil
}

// Set writes r under gen only while gen is still current. A write racing
// an invalidation can at worst land under the old generation, which no
// reader asks for again.
func (c *RedisCache) Set(ctx context.Context, userID uint, gen int64, key string, r *Report) error {
	current, err := c.Generation(ctx, userID)
	if err != nil {
		return err
	}
	if current != gen {
		return nil
	}
	data, err := encodeReport(r)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, reportKey(userID, gen, key), data, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uint) error {
	return c.rdb.Incr(ctx, generationKey(userID)).Err()
}

func encodeReport(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

func decodeReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

type memoryEntries struct {
	gen     int64
	reports map[string]*Report
}

// MemoryCache is an in-process Cache for single-instance deployments and
// tests. Entries do not expire; Invalidate is the only eviction, and it
// only reaches the process that owns the cache.
type MemoryCache struct {
	mu    sync.RWMutex
	users map[uint]*memoryEntries
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{users: make(map[uint]*memoryEntries)}
}

func (c *MemoryCache) Generation(_ context.Context, userID uint) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if e := c.users[userID]; e != nil {
		return e.gen, nil
	}
	return 0, nil
}

func (c *MemoryCache) Get(_ context.Context, userID uint, gen int64, key string) (*Report, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e := c.users[userID]
	if e == nil || e.gen != gen {
		return nil, false, nil
	}
	r, ok := e.reports[key]
	return r, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, userID uint, gen int64, key string, r *Report) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.users[userID]
	if e == nil {
		e = &memoryEntries{reports: make(map[string]*Report)}
		c.users[userID] = e
	}
	if e.gen != gen {
		return nil
	}
	e.reports[key] = r
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.users[userID]
	if e == nil {
		c.users[userID] = &memoryEntries{gen: 1, reports: make(map[string]*Report)}
		return nil
	}
	e.gen++
	e.reports = make(map[string]*Report)
	return nil
}
