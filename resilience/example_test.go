package resilience_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/rndsync/engine"
	"github.com/jonwraymond/rndsync/resilience"
)

func ExampleExecutor_Execute() {
	exec := resilience.New(resilience.Config{
		Retry: resilience.RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond},
	}, nil)

	attempts := 0
	err := exec.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return engine.ErrTransient
		}
		return nil
	})

	fmt.Println("error:", err)
	fmt.Println("attempts:", attempts)
	// Output:
	// error: <nil>
	// attempts: 3
}

func ExampleRetryable() {
	fmt.Println(resilience.Retryable(engine.ErrTransient))
	fmt.Println(resilience.Retryable(engine.ErrRejected))
	fmt.Println(resilience.Retryable(engine.ErrSessionExpired))
	// Output:
	// true
	// false
	// false
}
