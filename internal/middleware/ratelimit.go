package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/openshelf/libris/internal/model"
)

// RateLimiter throttles API callers with a token bucket per caller.
// Catalog browsing and loan traffic share the same buckets; one noisy
// client cannot starve the rest of the members.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // Requests per window
	window   time.Duration // Time window
	burst    int           // Max burst size
	cleanup  time.Duration // Sweep interval for idle callers
	stopChan chan struct{}
}

type bucket struct {
	tokens    int
	lastReset time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int           // Requests per window (default 100)
	Window  time.Duration // Time window (default 1 minute)
	Burst   int           // Max burst (default 20)
	Cleanup time.Duration // Sweep interval (default 5 minutes)
}

// NewRateLimiter creates a rate limiter and starts its sweep goroutine.
// Call Stop on shutdown.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		cleanup:  cfg.Cleanup,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the sweep goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) cleanupExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.window * 2)
	for key, b := range rl.buckets {
		if b.lastReset.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Allow takes a token for key, reporting whether the request may
// proceed, how many tokens remain, and when the window resets
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	b, exists := rl.buckets[key]

	if !exists {
		// First request from this caller; the bucket starts full
		// minus the token for this request
		b = &bucket{
			tokens:    rl.rate + rl.burst - 1,
			lastReset: now,
		}
		rl.buckets[key] = b
		return true, b.tokens, now.Add(rl.window)
	}

	elapsed := now.Sub(b.lastReset)
	if elapsed >= rl.window {
		b.tokens = rl.rate + rl.burst
		b.lastReset = now
	} else {
		// Pro-rated refill for a partial window
		tokensToAdd := int(float64(rl.rate) * (float64(elapsed) / float64(rl.window)))
		b.tokens += tokensToAdd
		if b.tokens > rl.rate+rl.burst {
			b.tokens = rl.rate + rl.burst
		}
		if tokensToAdd > 0 {
			b.lastReset = now
		}
	}

	if b.tokens > 0 {
		b.tokens--
		return true, b.tokens, b.lastReset.Add(rl.window)
	}

	return false, 0, b.lastReset.Add(rl.window)
}

// RateLimit throttles requests per caller. Authenticated traffic is
// keyed by member id so a member keeps one budget across devices;
// anonymous catalog browsing falls back to the remote address.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := GetUserID(r.Context())
			if key == "" {
				key = r.RemoteAddr
			}

			allowed, remaining, resetTime := limiter.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
