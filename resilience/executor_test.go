package resilience

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/observe"
)

func TestDirect_RunsOnce(t *testing.T) {
	calls := 0
	err := Direct().Execute(context.Background(), func(context.Context) error {
		calls++
		return engine.ErrTransient
	})
	if !errors.Is(err, engine.ErrTransient) || calls != 1 {
		t.Errorf("Execute() = %v after %d calls", err, calls)
	}
}

func TestExecutor_RetriesAndLogs(t *testing.T) {
	var logs bytes.Buffer
	e := New(Config{
		Retry: RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	}, observe.NewLoggerWithWriter("warn", &logs))

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return engine.ErrTransient
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("Execute() = %v after %d calls", err, calls)
	}
	if !strings.Contains(logs.String(), "retrying engine call") {
		t.Errorf("expected retry log, got %q", logs.String())
	}
}

// TestExecutor_TimeoutPerAttempt verifies a hung attempt times out and is
// retried.
func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	e := New(Config{
		Retry:       RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond},
		CallTimeout: 20 * time.Millisecond,
	}, nil)

	var calls atomic.Int32
	err := e.Execute(context.Background(), func(ctx context.Context) error {
		if calls.Add(1) == 1 {
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	})
	if err != nil || calls.Load() != 2 {
		t.Errorf("Execute() = %v after %d calls", err, calls.Load())
	}
}

func TestExecutor_BreakerOpens(t *testing.T) {
	var logs bytes.Buffer
	e := New(Config{Breaker: CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour}},
		observe.NewLoggerWithWriter("warn", &logs))
	ctx := context.Background()

	_ = e.Execute(ctx, failWith(engine.ErrTransient))
	if err := e.Execute(ctx, failWith(nil)); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() = %v, want ErrCircuitOpen", err)
	}
	if e.Breaker().State() != StateOpen {
		t.Errorf("State() = %v, want open", e.Breaker().State())
	}
	if !strings.Contains(logs.String(), "circuit breaker changed state") {
		t.Errorf("expected breaker log, got %q", logs.String())
	}
}

func TestTimeout(t *testing.T) {
	if NewTimeout(0).Execute(context.Background(), failWith(nil)) != nil {
		t.Error("disabled timeout should run op directly")
	}

	err := NewTimeout(10*time.Millisecond).Execute(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Execute() = %v, want ErrTimeout", err)
	}
	if !Retryable(err) {
		t.Error("timeouts should be retryable")
	}
}
