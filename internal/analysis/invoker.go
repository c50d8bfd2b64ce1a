package analysis

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Mahaboob-Ashraf/ContextAI/internal/provider"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = 2 * time.Second
)

// Invoker wraps a model call with bounded retry and exponential backoff.
// Every attempt re-acquires a credential from the pool, so retries rotate
// across keys implicitly. Only transient provider failures are retried;
// anything else propagates immediately without consuming remaining attempts.
type Invoker struct {
	pool        *provider.Pool
	log         *zap.Logger
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewInvoker creates an invoker with the default attempt budget (3 attempts,
// 2s base delay).
func NewInvoker(pool *provider.Pool, log *zap.Logger) *Invoker {
	return &Invoker{
		pool:        pool,
		log:         log,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Invoke runs call with a freshly acquired credential, retrying transient
// failures with backoff baseDelay * 2^(attempt-1). No sleep follows the
// final attempt; after the budget is spent the last error propagates.
func (iv *Invoker) Invoke(ctx context.Context, call func(ctx context.Context, client *provider.Client) (string, error)) (string, error) {
	var lastErr error

	for attempt := 1; attempt <= iv.maxAttempts; attempt++ {
		client, err := iv.pool.Acquire()
		if err != nil {
			// Empty pool: the feature is disabled, not transiently failing.
			return "", err
		}

		result, err := call(ctx, client)
		if err == nil {
			return result, nil
		}

		if !provider.IsRetryable(err) {
			return "", err
		}
		lastErr = err

		if attempt < iv.maxAttempts {
			delay := iv.baseDelay << (attempt - 1)
			iv.log.Warn("transient provider failure, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", iv.maxAttempts),
				zap.Duration("delay", delay),
				zap.Error(err))
			if err := iv.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}

	return "", lastErr
}

// Generate invokes the model with a plain text prompt.
func (iv *Invoker) Generate(ctx context.Context, prompt string) (string, error) {
	return iv.Invoke(ctx, func(ctx context.Context, client *provider.Client) (string, error) {
		return client.Generate(ctx, prompt)
	})
}
