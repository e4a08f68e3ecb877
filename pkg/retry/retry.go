package retry

import (
	"context"
	"fmt"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
)

type keyContext string

const keyAttempt keyContext = "retry_attempt"

// Policy is a bounded exponential backoff policy.
type Policy struct {
	MaxAttempts  int
	BaseInterval time.Duration
	MaxInterval  time.Duration
	Multiplier   float64
}

// DefaultPolicy is three attempts starting at one second.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		BaseInterval: time.Second,
		MaxInterval:  10 * time.Second,
		Multiplier:   2,
	}
}

// Classifier reports whether an error is worth another attempt.
type Classifier func(error) bool

// NotifyFunc is called before sleeping between attempts.
type NotifyFunc func(attempt int, err error, wait time.Duration)

// Do runs op until it succeeds, returns an error the classifier rejects,
// the attempts are exhausted or ctx is done. The returned error is the last
// error produced by op, unwrapped.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error, retryable Classifier, notify NotifyFunc) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	if p.BaseInterval > 0 {
		bo.InitialInterval = p.BaseInterval
	}
	if p.MaxInterval > 0 {
		bo.MaxInterval = p.MaxInterval
	}
	if p.Multiplier > 0 {
		bo.Multiplier = p.Multiplier
	}
	bo.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := runAttempt(WithAttempt(ctx, attempt), op)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		if retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, wait time.Duration) {
			notify(attempt, err, wait)
		}
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(maxAttempts-1)), ctx)
	return backoff.RetryNotify(operation, b, onRetry)
}

func runAttempt(ctx context.Context, op func(ctx context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = backoff.Permanent(fmt.Errorf("panic recovered: %v", p))
		}
	}()
	return op(ctx)
}

// WithAttempt stores the 1-based attempt number in ctx.
func WithAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, keyAttempt, attempt)
}

// AttemptFrom returns the attempt number stored by Do, or 0.
func AttemptFrom(ctx context.Context) int {
	attempt, _ := ctx.Value(keyAttempt).(int)
	return attempt
}
