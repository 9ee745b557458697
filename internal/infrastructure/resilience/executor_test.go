package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(Policy{
		Attempts:       3,
		BaseDelay:      1 * time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		Growth:         2,
		BreakerEnabled: false,
	}, nil)

	attempts := 0
	errTemp := errors.New("temporary")
	err := exec.Do(context.Background(), "op", func(err error) Outcome {
		return Outcome{Retry: errors.Is(err, errTemp), CountFailure: true}
	}, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTemp
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnPermanentFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		Attempts:       3,
		BaseDelay:      1 * time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		Growth:         2,
		BreakerEnabled: false,
	}, nil)

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Do(context.Background(), "op", func(error) Outcome {
		return Outcome{Retry: false, CountFailure: false}
	}, func(context.Context) error {
		attempts++
		return errPermanent
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Policy{
		Attempts:            1,
		BaseDelay:           1 * time.Millisecond,
		MaxDelay:            1 * time.Millisecond,
		Growth:              2,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerCooldown:     50 * time.Millisecond,
		BreakerProbeCalls:   1,
	}, nil)

	errTemp := errors.New("temporary")
	classify := func(error) Outcome {
		return Outcome{Retry: false, CountFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Do(context.Background(), "op", classify, func(context.Context) error {
			return errTemp
		})
		if !errors.Is(err, errTemp) {
			t.Fatalf("expected temporary error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Do(context.Background(), "op", classify, func(context.Context) error {
		t.Fatal("circuit should be open and must not call operation")
		return nil
	})
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit error, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected gobreaker open state, got %v", err)
	}
}

func TestDoHonorsContextCancellation(t *testing.T) {
	exec := NewExecutor(Policy{
		Attempts:       5,
		BaseDelay:      50 * time.Millisecond,
		MaxDelay:       50 * time.Millisecond,
		Growth:         2,
		BreakerEnabled: false,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errTemp := errors.New("temporary")
	attempts := 0
	err := exec.Do(ctx, "op", func(error) Outcome {
		return Outcome{Retry: true, CountFailure: true}
	}, func(context.Context) error {
		attempts++
		cancel()
		return errTemp
	})
	if !errors.Is(err, errTemp) {
		t.Fatalf("expected last attempt error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("cancelled context must stop retries, got %d attempts", attempts)
	}
}
