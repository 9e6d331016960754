package audit

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rgehrsitz/withholding/internal/domain"
)

// RetryConfig bounds how hard RetryingSink tries before giving up.
type RetryConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Timeout caps each attempt. Zero means no per-attempt timeout.
	Timeout time.Duration
}

// DefaultRetryConfig returns conservative settings for a request path.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Timeout:         5 * time.Second,
	}
}

// RetryingSink retries failed appends with exponential backoff. Only the
// write is retried; the calculation that produced the record is never
// recomputed. Retrying is safe because stores ignore duplicate IDs.
type RetryingSink struct {
	next    Sink
	config  RetryConfig
	onRetry func(err error, wait time.Duration)
}

// NewRetryingSink wraps next. onRetry, if not nil, is called before each
// backoff wait.
func NewRetryingSink(next Sink, config RetryConfig, onRetry func(err error, wait time.Duration)) *RetryingSink {
	return &RetryingSink{next: next, config: config, onRetry: onRetry}
}

// Append implements Sink.
func (r *RetryingSink) Append(ctx context.Context, record domain.AuditRecord) error {
	operation := func() error {
		attemptCtx := ctx
		if r.config.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
			defer cancel()
		}
		err := r.next.Append(attemptCtx, record)
		if err != nil && ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	if r.config.InitialInterval > 0 {
		expBackoff.InitialInterval = r.config.InitialInterval
	}
	if r.config.MaxInterval > 0 {
		expBackoff.MaxInterval = r.config.MaxInterval
	}
	expBackoff.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, r.config.MaxRetries), ctx)
	if r.onRetry != nil {
		return backoff.RetryNotify(operation, policy, r.onRetry)
	}
	return backoff.Retry(operation, policy)
}
