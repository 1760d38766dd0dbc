// Package cache stores rendered list responses. Keys embed a per-resource
// generation counter, so bumping the counter invalidates every cached page
// of that resource at once.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte) error
	Incr(ctx context.Context, key string) (int64, error)
	// Counter reads an Incr key; absent counters are 0.
	Counter(ctx context.Context, key string) (int64, error)
}

// Memory is the single-process Cache used without Redis. Expired entries
// are dropped when read and swept on every Set.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	vals     map[string]entry
	counters map[string]int64
}

type entry struct {
	val     []byte
	expires time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Memory{
		ttl:      ttl,
		now:      time.Now,
		vals:     make(map[string]entry),
		counters: make(map[string]int64),
	}
}

func (c *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.vals[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.vals, key)
		return nil, false, nil
	}
	return e.val, true, nil
}

func (c *Memory) Set(_ context.Context, key string, val []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.vals {
		if !now.Before(e.expires) {
			delete(c.vals, k)
		}
	}

	c.vals[key] = entry{val: val, expires: now.Add(c.ttl)}
	return nil
}

func (c *Memory) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counters[key]++
	return c.counters[key], nil
}

func (c *Memory) Counter(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.counters[key], nil
}

func genKey(resource string) string {
	return resource + ":gen"
}

func listKey(resource string, gen int64, query string) string {
	return resource + ":list:v1:gen=" + strconv.FormatInt(gen, 10) + ":" + query
}
