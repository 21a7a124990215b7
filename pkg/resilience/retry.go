package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

var ErrRetryTimeout = errors.New("retry deadline exceeded")

// RetryTimeoutError reports that a transient condition outlived the retry budget.
type RetryTimeoutError struct {
	Attempts int
	Timeout  time.Duration
	Last     error
}

func (e *RetryTimeoutError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%v after %d attempts (budget %s)", ErrRetryTimeout, e.Attempts, e.Timeout)
	}
	return fmt.Sprintf("%v after %d attempts (budget %s): %v", ErrRetryTimeout, e.Attempts, e.Timeout, e.Last)
}

func (e *RetryTimeoutError) Is(target error) bool {
	return target == ErrRetryTimeout
}

func (e *RetryTimeoutError) Unwrap() error {
	return e.Last
}

// RetryPolicy bounds a transient-retry loop.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Timeout caps the whole loop including waits. Zero leaves it to the caller's context.
	Timeout time.Duration
}

// DefaultRetryPolicy is used when a field of the supplied policy is zero.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 50 * time.Millisecond,
	MaxInterval:     time.Second,
	Timeout:         30 * time.Second,
}

func (p RetryPolicy) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	if b.InitialInterval <= 0 {
		b.InitialInterval = DefaultRetryPolicy.InitialInterval
	}
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = DefaultRetryPolicy.MaxInterval
	}
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	// The deadline lives on the context so waits stay cancellable.
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// RetryTransient calls op until it succeeds, fails with an error transient does
// not accept, or the policy timeout elapses. It returns the number of attempts made.
//
// When the budget runs out a *RetryTimeoutError is returned. Cancellation of
// the parent context is returned as ctx.Err().
func RetryTransient[T any](ctx context.Context, policy RetryPolicy, transient func(error) bool, op func(context.Context) (T, error)) (T, int, error) {
	callCtx := ctx
	cancel := func() {}
	if policy.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
	}
	defer cancel()

	attempts := 0
	var lastErr error
	result, err := backoff.RetryWithData(func() (T, error) {
		attempts++
		v, err := op(callCtx)
		if err == nil {
			return v, nil
		}
		lastErr = err
		if transient(err) && callCtx.Err() == nil {
			return v, err
		}
		return v, backoff.Permanent(err)
	}, backoff.WithContext(policy.backOff(), callCtx))
	if err == nil {
		return result, attempts, nil
	}

	if parentErr := ctx.Err(); parentErr != nil {
		return result, attempts, parentErr
	}
	if callCtx.Err() != nil {
		return result, attempts, &RetryTimeoutError{Attempts: attempts, Timeout: policy.Timeout, Last: lastErr}
	}
	return result, attempts, err
}
