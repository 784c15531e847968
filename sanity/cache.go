package sanity

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// sweepThreshold is the entry count above which stores prune expired entries.
const sweepThreshold = 1024

type cacheEntry struct {
	result  json.RawMessage
	fetched time.Time
}

// CachedQuerier keeps query results in memory for a fixed TTL. Concurrent
// misses for the same query and params share one upstream request.
type CachedQuerier struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	next    Querier
	group   singleflight.Group
	now     func() time.Time
}

// NewCachedQuerier wraps next with a cache whose entries live for ttl.
func NewCachedQuerier(next Querier, ttl time.Duration) *CachedQuerier {
	return &CachedQuerier{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		next:    next,
		now:     time.Now,
	}
}

func (c *CachedQuerier) valid(e cacheEntry) bool {
	return c.now().Sub(e.fetched) < c.ttl
}

func (c *CachedQuerier) lookup(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok || !c.valid(e) {
		return nil, false
	}
	return e.result, true
}

// Fetch returns a cached result when one is fresh, otherwise queries next.
// Errors are not cached. A shared upstream request is detached from any
// single caller's cancellation; each caller still returns as soon as its own
// ctx is done.
func (c *CachedQuerier) Fetch(ctx context.Context, query string, params Params) (json.RawMessage, error) {
	key, err := cacheKey(query, params)
	if err != nil {
		return nil, err
	}
	if res, ok := c.lookup(key); ok {
		return res, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		if res, ok := c.lookup(key); ok {
			return res, nil
		}
		res, err := c.next.Fetch(shared, query, params)
		if err != nil {
			return nil, err
		}
		c.store(key, res)
		return res, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(json.RawMessage), nil
	}
}

func (c *CachedQuerier) store(key string, res json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= sweepThreshold {
		for k, e := range c.entries {
			if !c.valid(e) {
				delete(c.entries, k)
			}
		}
	}
	c.entries[key] = cacheEntry{result: res, fetched: c.now()}
}

// Invalidate drops every entry so the next read goes upstream.
func (c *CachedQuerier) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, fresh or not.
func (c *CachedQuerier) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// cacheKey relies on encoding/json sorting map keys.
func cacheKey(query string, params Params) (string, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	return query + "\x00" + string(p), nil
}
