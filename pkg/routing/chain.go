package routing

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/bluele/gcache"
)

const resultCacheSize = 512

// Chain tries each adapter in order until one produces a result, and
// memoizes results by rounded-coordinate key. Concurrent calls for the
// same key share a single upstream request.
type Chain struct {
	adapters []Adapter
	cache    gcache.Cache

	mu       sync.Mutex
	inflight map[string]*inflightRoute
}

type inflightRoute struct {
	done chan struct{}
	res  Result
	err  error
}

// NewChain builds a chain over the given adapters. The last adapter
// should be one that cannot fail (see HaversineAdapter).
func NewChain(adapters ...Adapter) *Chain {
	return &Chain{
		adapters: adapters,
		cache:    gcache.New(resultCacheSize).LRU().Build(),
		inflight: make(map[string]*inflightRoute),
	}
}

// NewDefaultChain wires the production provider order:
// HERE, then OSRM, then the haversine estimate.
func NewDefaultChain(hereAPIKey string) *Chain {
	return NewChain(
		NewHEREAdapter(hereAPIKey),
		NewOSRMAdapter(),
		NewHaversineAdapter(),
	)
}

// Route computes a driving route, consulting the cache first. Two
// calls whose coordinates agree to five decimals and whose avoidance
// flag matches issue at most one upstream request.
func (c *Chain) Route(ctx context.Context, origin, dest Point, opts Options) (Result, error) {
	key := cacheKey(origin, dest, opts.AvoidFerries)

	if cached, err := c.cache.Get(key); err == nil {
		return cached.(Result), nil
	}

	c.mu.Lock()
	if call, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.res, call.err
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	call := &inflightRoute{done: make(chan struct{})}
	c.inflight[key] = call
	c.mu.Unlock()

	call.res, call.err = c.routeUncached(ctx, origin, dest, opts)
	if call.err == nil {
		c.cache.Set(key, call.res)
	}

	c.mu.Lock()
	delete(c.inflight, key)
	c.mu.Unlock()
	close(call.done)

	return call.res, call.err
}

func (c *Chain) routeUncached(ctx context.Context, origin, dest Point, opts Options) (Result, error) {
	var lastErr error
	for _, adapter := range c.adapters {
		res, err := adapter.Route(ctx, origin, dest, opts)
		if err == nil {
			return res, nil
		}
		lastErr = err
		log.Printf("[routing] %s failed, falling through: %v", adapter.Name(), err)
	}
	return Result{}, fmt.Errorf("all routing providers failed: %w", lastErr)
}
