package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gramctl-io/gramctl/internal/models"
)

// Outcome records how a single attempt resolved.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRetryable Outcome = "retryable_failure"
	OutcomeFatal     Outcome = "fatal_failure"
)

// Attempt is the ephemeral record of one pass through the retry loop. It
// exists for the duration of the call and is handed to observers only;
// nothing persists it.
type Attempt struct {
	Operation string
	Index     int
	Wait      time.Duration
	Outcome   Outcome
}

// Observer receives every attempt as it resolves. Tests use this to
// assert on the wait sequence.
type Observer func(Attempt)

// Do runs fn under the policy, classifying each failure and consulting the
// policy for the next action. Waits honour ctx cancellation. On a
// non-retryable failure the classified error is returned as-is; on an
// exhausted budget the last error is returned wrapped so callers can still
// extract its classification.
func Do(ctx context.Context, p Policy, op string, fn func(context.Context) error, observers ...Observer) error {
	_, err := DoValue(ctx, p, op, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, observers...)
	return err
}

// DoValue is Do for calls that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error), observers ...Observer) (T, error) {
	var zero T
	var wait time.Duration

	for attempt := 1; ; attempt++ {
		if err := sleepContext(ctx, wait); err != nil {
			return zero, err
		}

		out, err := fn(ctx)
		if err == nil {
			notify(observers, Attempt{Operation: op, Index: attempt, Wait: wait, Outcome: OutcomeSuccess})
			return out, nil
		}

		class := models.ClassificationOf(err)

		outcome := OutcomeFatal
		if class.Retryable() {
			outcome = OutcomeRetryable
		}
		notify(observers, Attempt{Operation: op, Index: attempt, Wait: wait, Outcome: outcome})

		action := p.Next(class, attempt)
		if !action.Retry {
			if class.Retryable() {
				// Budget exhausted on a retryable failure. Wrap so the
				// classification still surfaces through errors.As.
				return zero, fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt, err)
			}
			return zero, err
		}

		logrus.WithFields(logrus.Fields{
			"operation":      op,
			"attempt":        attempt,
			"classification": class.String(),
			"wait":           action.Wait,
		}).Debugln("Retrying after backoff")

		wait = action.Wait
	}
}

func notify(observers []Observer, attempt Attempt) {
	for _, observer := range observers {
		observer(attempt)
	}
}

// sleepContext waits for d, returning early when ctx is done. Only the
// calling operation suspends; nothing else blocks on this wait.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
