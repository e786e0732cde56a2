// Package ratelimit provides per-client token-bucket rate limiters.
package ratelimit

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// ClientLimiter rate-limits requests per client key using token buckets.
// A bucket is created on a key's first request.
type ClientLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewClientLimiter creates a limiter allowing rps requests per second per
// client with the given burst.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (cl *ClientLimiter) limiter(key string) *rate.Limiter {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	l, ok := cl.limiters[key]
	if !ok {
		l = rate.NewLimiter(cl.rps, cl.burst)
		cl.limiters[key] = l
	}
	return l
}

// Allow reports whether key may make a request now, consuming a token if so.
func (cl *ClientLimiter) Allow(key string) bool {
	return cl.limiter(key).Allow()
}

// Wait blocks until a token is available for key, or ctx is cancelled.
func (cl *ClientLimiter) Wait(ctx context.Context, key string) error {
	if err := cl.limiter(key).Wait(ctx); err != nil {
		return fmt.Errorf("rate limit %s: %w", key, err)
	}
	return nil
}

// Clients returns the number of tracked client keys.
func (cl *ClientLimiter) Clients() int {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return len(cl.limiters)
}
