package retry

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/shp2pg/internal/logging"
)

var errTransient = &pgconn.PgError{Code: "08006", Message: "connection failure"}

// flaky fails with errTransient until it has been called succeedOn times.
type flaky struct {
	calls     int
	succeedOn int
	final     error
}

func (f *flaky) run(context.Context) error {
	f.calls++
	if f.calls < f.succeedOn {
		return errTransient
	}
	return f.final
}

func fastExecutor(attempts int) *Executor {
	return NewExecutor(NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithMaxDelay(2*time.Millisecond), WithJitter(0)))
}

func TestExecutor_SucceedsFirstTime(t *testing.T) {
	op := &flaky{succeedOn: 1}
	require.NoError(t, fastExecutor(3).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	op := &flaky{succeedOn: 3}
	var retries []int
	exec := fastExecutor(3).WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retries = append(retries, attempt)
	})

	require.NoError(t, exec.Execute(context.Background(), op.run))
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	op := &flaky{succeedOn: 100}

	err := fastExecutor(2).Execute(context.Background(), op.run)

	assert.ErrorIs(t, err, errTransient)
	assert.Equal(t, 3, op.calls, "first attempt plus two retries")
}

func TestExecutor_StopsOnFatalError(t *testing.T) {
	fatal := &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}
	op := &flaky{succeedOn: 2, final: fatal}

	err := fastExecutor(5).Execute(context.Background(), op.run)

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 2, op.calls)
}

func TestExecutor_NoRetriesWhenZeroAttempts(t *testing.T) {
	op := &flaky{succeedOn: 5}
	assert.Error(t, fastExecutor(0).Execute(context.Background(), op.run))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	exec := NewExecutor(NewPostgreSQLErrorClassifier(), NewExponentialBackoff(-1, WithInitialDelay(time.Hour), WithJitter(0)))
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := exec.Execute(ctx, func(context.Context) error {
		calls++
		return errTransient
	})

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestNewConnectExecutor_LogsRetries(t *testing.T) {
	var buf bytes.Buffer
	exec := NewConnectExecutor(logging.NewConsoleLoggerTo(&buf, false))
	exec.strategy = NewExponentialBackoff(1, WithInitialDelay(time.Millisecond), WithJitter(0))
	op := &flaky{succeedOn: 2}

	require.NoError(t, exec.Execute(context.Background(), op.run))
	assert.Contains(t, buf.String(), "[WARN] Connection attempt 1 failed, retrying in")
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, NewExponentialBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
}
