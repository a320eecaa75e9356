package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
)

// ErrExhausted is returned when every attempt failed with a retryable error
var ErrExhausted = errors.New("retries exhausted")

// Policy retries an operation a bounded number of times with linear backoff.
// The delay before attempt n (n >= 2) is BaseDelay * (n-1).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration

	// OnRetry is called before sleeping ahead of the given attempt
	OnRetry func(nextAttempt int, delay time.Duration, err error)
}

// NewPolicy returns a policy with the given limits. Do substitutes the defaults for zero values.
func NewPolicy(maxAttempts int, baseDelay time.Duration) Policy {
	return Policy{MaxAttempts: maxAttempts, BaseDelay: baseDelay}
}

// Do runs op until it succeeds, returns a non-retryable error, or the attempts run out.
// Only errors wrapped with Retryable are retried.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}

	attempt := 0
	b := backoff.WithContext(
		backoff.WithMaxRetries(&linearBackOff{base: base}, uint64(maxAttempts-1)),
		ctx,
	)

	operation := func() error {
		attempt++
		err := op(ctx, attempt)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
	}

	err := backoff.RetryNotify(operation, b, notify)
	if err != nil && IsRetryable(err) {
		return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempt, err)
	}
	return err
}

// linearBackOff grows the delay by base on every retry: base, 2*base, 3*base...
type linearBackOff struct {
	base time.Duration
	n    int
}

func (l *linearBackOff) NextBackOff() time.Duration {
	l.n++
	return l.base * time.Duration(l.n)
}

func (l *linearBackOff) Reset() {
	l.n = 0
}

type retryableError struct {
	err error
}

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// Retryable marks err as transient so Policy.Do will try again
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &retryableError{err: err}
}

// IsRetryable reports whether err was marked with Retryable
func IsRetryable(err error) bool {
	var r *retryableError
	return errors.As(err, &r)
}
