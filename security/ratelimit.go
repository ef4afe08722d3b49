package security

import (
	"log/slog"
	"sync"

	"golang.org/x/time/rate"
)

// limit is a token bucket configuration.
type limit struct {
	rate  float64
	burst int
}

// RateLimiter provides per-identifier rate limiting using token bucket algorithm.
// Identifiers are provider names, so the set of buckets stays small and is never
// evicted.
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	overrides map[string]limit
	mu        sync.Mutex
	rate      float64
	burst     int
	logger    *slog.Logger

	// Statistics
	totalAllowed  int64
	totalRejected int64
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond with the given
// burst for every identifier without an override. A burst below 1 is raised to 1.
func NewRateLimiter(requestsPerSecond float64, burst int, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		overrides: make(map[string]limit),
		rate:      requestsPerSecond,
		burst:     burst,
		logger:    logger,
	}
}

// SetLimit overrides the limit for one identifier. An existing bucket is updated in
// place.
func (rl *RateLimiter) SetLimit(identifier string, requestsPerSecond float64, burst int) {
	if burst < 1 {
		burst = 1
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.overrides[identifier] = limit{rate: requestsPerSecond, burst: burst}
	if l, ok := rl.limiters[identifier]; ok {
		l.SetLimit(rate.Limit(requestsPerSecond))
		l.SetBurst(burst)
	}
}

// Allow reports whether a call for identifier may proceed now. It never blocks.
func (rl *RateLimiter) Allow(identifier string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[identifier]
	if !ok {
		cfg := limit{rate: rl.rate, burst: rl.burst}
		if override, has := rl.overrides[identifier]; has {
			cfg = override
		}
		l = rate.NewLimiter(rate.Limit(cfg.rate), cfg.burst)
		rl.limiters[identifier] = l
	}

	if l.Allow() {
		rl.totalAllowed++
		return true
	}

	rl.totalRejected++
	rl.logger.Debug("Rate limit exceeded",
		"identifier", identifier,
		"total_rejected", rl.totalRejected)
	return false
}

// Stats holds rate limiter statistics for monitoring
type Stats struct {
	CurrentEntries int   // Number of identifiers with a bucket
	TotalAllowed   int64 // Calls let through
	TotalRejected  int64 // Calls rejected
}

// GetStats returns current rate limiter statistics.
func (rl *RateLimiter) GetStats() Stats {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return Stats{
		CurrentEntries: len(rl.limiters),
		TotalAllowed:   rl.totalAllowed,
		TotalRejected:  rl.totalRejected,
	}
}
