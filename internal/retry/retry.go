// Package retry provides the exponential-backoff policy used for every
// external embedding and generation call.
package retry

import (
	"context"
	"errors"
	"time"
)

// sleepFunc allows tests to replace the backoff sleep
var sleepFunc = sleepCtx

// TransientError marks an error as retryable (rate limiting, network
// failures). Errors not wrapped this way are surfaced immediately.
type TransientError struct {
	Err error
}

// Error returns the underlying error message.
func (e *TransientError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err so the retry policy will treat it as retryable.
// Wrapping nil returns nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err (or any error it wraps) is retryable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Policy is a configurable exponential-backoff retry policy.
type Policy struct {
	MaxAttempts int           // Total attempts, including the first
	BaseDelay   time.Duration // Delay before the second attempt
	Multiplier  float64       // Backoff growth factor
}

// DefaultPolicy returns the standard policy: 5 attempts starting at 1s,
// doubling each time.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// normalized fills zero fields with defaults so a zero Policy still works.
func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = time.Second
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2
	}
	return p
}

// Do runs fn under the policy, retrying transient errors with exponential
// backoff. Non-transient errors and the final transient error are returned
// as-is. The context cancels both the call and the backoff wait.
func Do[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error
	delay := p.BaseDelay

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsTransient(err) {
			return zero, err
		}

		lastErr = err
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleepFunc(ctx, delay); err != nil {
			return zero, err
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}

	return zero, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
