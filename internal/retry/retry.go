// Package retry implements a bounded exponential-backoff policy for
// calls to external services.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Policy describes a bounded retry schedule: up to MaxAttempts tries,
// capped exponential delays starting at BaseDelay, with a random jitter
// fraction added to spread out contending callers.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Jitter is the fraction of the computed delay added at random,
	// e.g. 0.2 adds up to +20%.
	Jitter float64
}

// DefaultPolicy matches the documented generation-call defaults.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   250 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Jitter:      0.2,
	}
}

var (
	jitterMu  sync.Mutex
	jitterRNG = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// SetJitterRNG overrides the RNG used for delay jitter. Useful for
// deterministic tests.
func SetJitterRNG(r *rand.Rand) {
	jitterMu.Lock()
	defer jitterMu.Unlock()
	if r != nil {
		jitterRNG = r
	}
}

// Delay returns the backoff before attempt n (0-based: the delay taken
// after the n-th failure), before jitter.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := p.BaseDelay
	if base <= 0 {
		return 0
	}
	d := base << uint(attempt)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func (p Policy) jittered(attempt int) time.Duration {
	d := p.Delay(attempt)
	if d <= 0 || p.Jitter <= 0 {
		return d
	}
	jitterMu.Lock()
	f := jitterRNG.Float64()
	jitterMu.Unlock()
	return d + time.Duration(float64(d)*p.Jitter*f)
}

// Do runs op up to MaxAttempts times. Between failed attempts it sleeps
// the scheduled backoff, honoring ctx cancellation. retryable decides
// whether an error is transient; a nil retryable retries everything
// except context cancellation. The last error is returned once attempts
// are exhausted or a non-retryable error occurs.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if sleepErr := sleep(ctx, p.jittered(attempt-1)); sleepErr != nil {
				return sleepErr
			}
		}

		err = op(ctx)
		if err == nil {
			return nil
		}
		// Cancellation is permanent from the caller's point of view.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if retryable != nil && !retryable(err) {
			return err
		}
	}
	return err
}

func sleep(ctx context.Context, d time.Duration) error {
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
