// Package middleware holds the HTTP middleware shared by the API routes.
package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// entry pairs a limiter with its last use so idle callers can be swept.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter throttles requests per caller identity. Entries expire after
// a period of inactivity so the map stays bounded.
type RateLimiter struct {
	mu      sync.Mutex
	limits  map[string]*entry
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	done    chan struct{}
	closing sync.Once
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per caller. Idle entries are dropped after ttl.
func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limits: make(map[string]*entry),
		limit:  rate.Limit(rps),
		burst:  burst,
		ttl:    ttl,
		done:   make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

// DefaultRateLimiter matches the chat endpoint budget: 10 requests per
// second with a burst of 20, idle entries swept after ten minutes.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(10, 20, 10*time.Minute)
}

// Allow reports whether a request from key may proceed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, ok := rl.limits[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limits[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter.Allow()
}

// Close stops the sweep loop.
func (rl *RateLimiter) Close() {
	rl.closing.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	cutoff := time.Now().Add(-rl.ttl)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, e := range rl.limits {
		if e.lastSeen.Before(cutoff) {
			delete(rl.limits, key)
		}
	}
}

// Middleware throttles by authenticated user when available, falling back
// to the caller's IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if uid, ok := c.Get("user_id").(int32); ok && uid != 0 {
				key = fmt.Sprintf("user:%d", uid)
			}
			if !rl.Allow(key) {
				return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded, slow down")
			}
			return next(c)
		}
	}
}
