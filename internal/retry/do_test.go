package retry

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramctl-io/gramctl/internal/models"
)

// fastPolicy keeps waits negligible so tests run instantly.
func fastPolicy() Policy {
	return Policy{
		MaxAttempts:   5,
		BaseWait:      time.Microsecond,
		RateLimitWait: 2 * time.Microsecond,
		MaxWait:       time.Millisecond,
		JitterFactor:  0.5,
		Rand:          rand.New(rand.NewSource(7)),
	}
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_TransientFailuresThenSuccess(t *testing.T) {
	calls := 0
	var attempts []Attempt

	err := Do(context.Background(), fastPolicy(), "op", func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return models.NewTransient(nil, "flaky network")
		}
		return nil
	}, func(a Attempt) { attempts = append(attempts, a) })

	require.NoError(t, err)
	assert.Equal(t, 4, calls)

	require.Len(t, attempts, 4)
	assert.Equal(t, OutcomeRetryable, attempts[0].Outcome)
	assert.Equal(t, OutcomeSuccess, attempts[3].Outcome)

	// Attempt indices are 1-based and the first attempt serves no wait.
	assert.Equal(t, 1, attempts[0].Index)
	assert.Zero(t, attempts[0].Wait)
	for _, a := range attempts[1:] {
		assert.Positive(t, a.Wait)
	}
}

func TestDo_NonRetryableAbortsImmediately(t *testing.T) {
	tests := []struct {
		name string
		err  *models.ClassifiedError
	}{
		{"auth expired", models.NewAuthExpired(nil, "login_required")},
		{"challenge", models.NewChallengeRequired(nil, "verify via the app")},
		{"not found", models.NewNotFound(nil, "no such user")},
		{"fatal", models.NewFatal(nil, "bad request")},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			calls := 0
			err := Do(context.Background(), fastPolicy(), "op", func(ctx context.Context) error {
				calls++
				return test.err
			})

			require.Error(t, err)
			assert.Equal(t, 1, calls, "exactly one attempt before aborting")
			assert.Equal(t, test.err.Class, models.ClassificationOf(err))
		})
	}
}

func TestDo_ExhaustionWrapsLastError(t *testing.T) {
	policy := fastPolicy()
	calls := 0

	err := Do(context.Background(), policy, "fetch-feed", func(ctx context.Context) error {
		calls++
		return models.NewRateLimited(nil, "slow down")
	})

	require.Error(t, err)
	assert.Equal(t, policy.MaxAttempts, calls)
	assert.Contains(t, err.Error(), "fetch-feed")
	assert.Contains(t, err.Error(), "giving up after 5 attempts")

	// The classification must survive the wrapping.
	assert.Equal(t, models.ClassRateLimited, models.ClassificationOf(err))
}

func TestDo_UnclassifiedErrorNotRetried(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), "op", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("plumbing bug")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "unclassified errors are programming faults, never retried")
}

func TestDo_ContextCancellationCutsWaitShort(t *testing.T) {
	policy := fastPolicy()
	policy.BaseWait = time.Hour // a wait the test would never survive
	policy.MaxWait = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- Do(ctx, policy, "op", func(ctx context.Context) error {
			calls++
			close(started)
			return models.NewTransient(nil, "timeout")
		})
	}()

	// Cancel only once the first attempt has failed, so the retry loop
	// is parked in its hour-long wait.
	<-started
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
}

func TestDoValue_ReturnsValue(t *testing.T) {
	calls := 0
	got, err := DoValue(context.Background(), fastPolicy(), "op", func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", models.NewTransient(nil, "hiccup")
		}
		return "payload", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 2, calls)
}

func TestDo_WaitSequenceNonDecreasingWithoutJitter(t *testing.T) {
	policy := fastPolicy()
	policy.BaseWait = time.Millisecond
	policy.MaxWait = 8 * time.Millisecond
	policy.JitterFactor = 0

	var waits []time.Duration
	Do(context.Background(), policy, "op", func(ctx context.Context) error {
		return models.NewTransient(nil, "timeout")
	}, func(a Attempt) {
		if a.Index > 1 {
			waits = append(waits, a.Wait)
		}
	})

	require.Len(t, waits, policy.MaxAttempts-1)
	for i := 1; i < len(waits); i++ {
		assert.GreaterOrEqual(t, waits[i], waits[i-1], "waits must never decrease")
	}
	assert.Equal(t, policy.MaxWait, waits[len(waits)-1])
}
