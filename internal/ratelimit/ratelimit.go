package ratelimit

import (
	"sync"
	"time"
)

// Token bucket. Tokens refill continuously at rate per second up to
// burst; each allowed event spends its cost in tokens.
type Limiter struct {
	rate   float64
	burst  float64
	tokens float64
	last   time.Time
	mu     sync.Mutex
}

func NewLimiter(rate float64, burst int) *Limiter {
	return &Limiter{
		rate:   rate,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Spends one token if available
func (l *Limiter) Allow() bool {
	return l.AllowN(1)
}

// Spends n tokens if available. Events with a larger fan-out cost can
// pass a higher n so that cheap and expensive messages share one budget.
func (l *Limiter) AllowN(n int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.refill(time.Now())

	if l.tokens < float64(n) {
		return false
	}
	l.tokens -= float64(n)
	return true
}

func (l *Limiter) refill(now time.Time) {
	elapsed := now.Sub(l.last).Seconds()
	l.last = now

	l.tokens += elapsed * l.rate
	if l.tokens > l.burst {
		l.tokens = l.burst
	}
}
