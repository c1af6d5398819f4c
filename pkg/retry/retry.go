package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// Policy bounds a remote call: up to MaxAttempts tries with exponential
// backoff starting at BaseDelay, retrying only errors Retryable accepts.
// Everything else propagates immediately.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
	OnRetry     func(attempt int, err error)
}

// Do runs op under the policy.
func (p Policy) Do(ctx context.Context, op func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	backoff := retry.WithMaxRetries(uint64(attempts-1), retry.NewExponential(delay))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && p.Retryable(err) {
			if p.OnRetry != nil && attempt < attempts {
				p.OnRetry(attempt, err)
			}
			return retry.RetryableError(err)
		}
		return err
	})
}
