// pkg/network/circuit_breaker_test.go
package network

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"github.com/opd-ai/go-clothsim/pkg/config"
)

func breakerEnvConfig() *config.EnvironmentConfig {
	cfg := testEnvConfig()
	cfg.CircuitBreakerMaxConsecutiveFails = 3
	cfg.CircuitBreakerTimeout = 50 * time.Millisecond
	return cfg
}

func TestExecuteSuccess(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	called := false
	err := service.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !called {
		t.Error("operation was not called")
	}
	if service.GetState() != gobreaker.StateClosed {
		t.Errorf("state = %v, expected closed", service.GetState())
	}
}

func TestExecutePropagatesError(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	opErr := errors.New("connection refused")
	err := service.Execute(context.Background(), func() error { return opErr })
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, opErr) {
		t.Errorf("error %v does not wrap the operation error", err)
	}
}

func TestBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	opErr := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		service.Execute(context.Background(), func() error { return opErr })
	}

	if service.GetState() != gobreaker.StateOpen {
		t.Fatalf("state = %v, expected open after 3 consecutive failures", service.GetState())
	}

	// With the circuit open the operation must not run at all.
	called := false
	err := service.Execute(context.Background(), func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Error("expected an error while the circuit is open")
	}
	if called {
		t.Error("operation ran while the circuit was open")
	}
}

func TestBreakerRecoversAfterTimeout(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	opErr := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		service.Execute(context.Background(), func() error { return opErr })
	}

	time.Sleep(100 * time.Millisecond)

	if err := service.Execute(context.Background(), func() error { return nil }); err != nil {
		t.Errorf("Execute() failed after the open timeout: %v", err)
	}
}

func TestExecuteWithRetrySkipsWhenOpen(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	opErr := errors.New("connection refused")
	for i := 0; i < 3; i++ {
		service.Execute(context.Background(), func() error { return opErr })
	}

	// An open breaker must short-circuit instead of sleeping through
	// the full retry schedule.
	started := time.Now()
	err := service.ExecuteWithRetry(context.Background(), func() error { return opErr })
	if err == nil {
		t.Fatal("expected an error")
	}
	if elapsed := time.Since(started); elapsed > 500*time.Millisecond {
		t.Errorf("retry took %v, expected a fast open-circuit exit", elapsed)
	}
}

func TestExecuteWithRetryHonorsContext(t *testing.T) {
	service := NewNetworkService(breakerEnvConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := service.ExecuteWithRetry(ctx, func() error { return errors.New("always fails") })
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error %v does not wrap context.Canceled", err)
	}
}
