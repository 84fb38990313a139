package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// LocalLimiter keeps a token-bucket limiter per key in process memory. It is
// the test and single-instance stand-in for the Redis limiter; the window is
// approximated by the refill rate.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLocalLimiter creates a limiter refilling at perSecond tokens with the
// given burst per key.
func NewLocalLimiter(perSecond float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether key has budget for one more request. It never fails.
func (l *LocalLimiter) Allow(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = limiter

		// Crude bound on memory for long-running processes.
		if len(l.limiters) > 100000 {
			l.limiters = map[string]*rate.Limiter{key: limiter}
		}
	}
	l.mu.Unlock()

	return limiter.Allow(), nil
}
