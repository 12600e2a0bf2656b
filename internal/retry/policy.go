package retry

import (
	"math/rand"
	"time"

	"github.com/gramctl-io/gramctl/internal/models"
)

// Policy decides, per failure classification and attempt index, whether a
// call is retried and how long to wait first. The decision is pure given
// the Rand source; no call-site state leaks in.
type Policy struct {
	// MaxAttempts is the total attempt budget for retryable failures.
	MaxAttempts int

	// BaseWait seeds the exponential backoff for transient failures.
	BaseWait time.Duration

	// RateLimitWait seeds the backoff when the platform asked us to slow
	// down. Kept longer than BaseWait so we respect the cooldown.
	RateLimitWait time.Duration

	// MaxWait caps the exponential before jitter is applied.
	MaxWait time.Duration

	// JitterFactor spreads each wait into [1-f, 1+f] of the capped
	// exponential. Must stay within [0, 0.5] so the wait never leaves
	// [0.5x, 1.5x] of the computed value.
	JitterFactor float64

	// Rand, when set, makes jitter deterministic. Tests use this.
	Rand *rand.Rand
}

// DefaultPolicy mirrors the platform-friendly defaults: five attempts,
// one second transient base, five second rate-limit base, one minute cap.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:   5,
		BaseWait:      1 * time.Second,
		RateLimitWait: 5 * time.Second,
		MaxWait:       60 * time.Second,
		JitterFactor:  0.5,
	}
}

// Action is the outcome of one policy decision.
type Action struct {
	Retry  bool
	Wait   time.Duration
	Reason string
}

func abort(reason string) Action {
	return Action{Reason: reason}
}

// Next maps (classification, 1-based attempt index of the failure) to the
// next action. AuthExpired, ChallengeRequired, NotFound and Fatal abort on
// the first failure: repeating those calls cannot change the outcome and
// only worsens rate-limit standing.
func (p Policy) Next(class models.Classification, attempt int) Action {
	switch class {
	case models.ClassAuthExpired:
		return abort("session no longer valid, login required")
	case models.ClassChallengeRequired:
		return abort("verification challenge requires manual action")
	case models.ClassNotFound:
		return abort("resource does not exist")
	case models.ClassTransient, models.ClassRateLimited:
		// fall through to the backoff computation below
	default:
		return abort("not retryable")
	}

	if attempt >= p.MaxAttempts {
		return abort("attempts exhausted")
	}

	base := p.BaseWait
	if class == models.ClassRateLimited {
		base = p.RateLimitWait
	}

	return Action{Retry: true, Wait: p.jitter(backoff(base, attempt, p.MaxWait))}
}

// backoff computes base x 2^(attempt-1) capped at max, guarding the shift
// against overflow for large attempt indices.
func backoff(base time.Duration, attempt int, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}

	wait := base
	for i := 1; i < attempt; i++ {
		wait *= 2
		if wait >= max || wait < 0 {
			return max
		}
	}
	if wait > max {
		return max
	}
	return wait
}

func (p Policy) jitter(wait time.Duration) time.Duration {
	f := p.JitterFactor
	if f <= 0 || wait <= 0 {
		return wait
	}
	if f > 0.5 {
		f = 0.5
	}

	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand.Float64
	}

	// factor in [1-f, 1+f]
	factor := 1 + f*(2*r()-1)
	return time.Duration(float64(wait) * factor)
}
