package retry

import (
	"context"
	"sync"
	"time"
)

// Throttle paces outbound requests with a token bucket so a burst of
// commands does not trip the platform's undocumented limits before the
// backoff layer ever sees a response. A nil Throttle never blocks.
type Throttle struct {
	mu         sync.Mutex
	rate       float64 // tokens per second
	burst      int
	tokens     float64
	lastRefill time.Time
}

// NewThrottle creates a token bucket refilling at rate tokens per second
// with the given burst capacity. The bucket starts full.
func NewThrottle(rate float64, burst int) *Throttle {
	if rate <= 0 {
		rate = 1
	}
	if burst < 1 {
		burst = 1
	}

	return &Throttle{
		rate:       rate,
		burst:      burst,
		tokens:     float64(burst),
		lastRefill: time.Now(),
	}
}

// Allow consumes a token when one is available.
func (t *Throttle) Allow() bool {
	if t == nil {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()

	if t.tokens >= 1 {
		t.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}

	for {
		if t.Allow() {
			return nil
		}
		if err := sleepContext(ctx, t.shortfall()); err != nil {
			return err
		}
	}
}

// refill adds tokens for the time elapsed since the last refill. Caller
// holds the lock.
func (t *Throttle) refill() {
	now := time.Now()
	elapsed := now.Sub(t.lastRefill).Seconds()
	t.lastRefill = now

	t.tokens += elapsed * t.rate
	if t.tokens > float64(t.burst) {
		t.tokens = float64(t.burst)
	}
}

// shortfall estimates how long until the next whole token.
func (t *Throttle) shortfall() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.refill()

	missing := 1 - t.tokens
	if missing <= 0 {
		return time.Millisecond
	}
	return time.Duration(missing / t.rate * float64(time.Second))
}
