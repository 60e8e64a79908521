package retry

import (
	"context"
	"time"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Executor runs an operation until it succeeds, fails fatally or the
// strategy runs out of attempts. Safe for concurrent use.
type Executor struct {
	classifier shp2pg.ErrorClassifier
	strategy   shp2pg.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates an executor. Panics if classifier or strategy is nil.
func NewExecutor(classifier shp2pg.ErrorClassifier, strategy shp2pg.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// NewConnectExecutor returns the executor connectors use, logging every retry to logger.
func NewConnectExecutor(logger shp2pg.Logger) *Executor {
	exec := NewExecutor(NewPostgreSQLErrorClassifier(), NewConnectBackoff())
	if logger == nil {
		return exec
	}
	return exec.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Warn("Connection attempt %d failed, retrying in %s: %v", attempt+1, delay.Round(time.Millisecond), err)
	})
}

// WithOnRetry returns a copy that calls callback before each retry.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation, retrying transient failures. It returns nil on
// success, the first fatal error, the last transient error once attempts are
// exhausted, or the context error if ctx ends while waiting.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
