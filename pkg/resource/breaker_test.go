// pkg/resource/breaker_test.go
package resource

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestBreaker_Execute(t *testing.T) {
	b := NewBreaker("test", testEnv(10), nil)
	ctx := context.Background()

	calls := 0
	if err := b.Execute(ctx, func() error { calls++; return nil }); err != nil {
		t.Fatalf("Expected success, got %v", err)
	}

	boom := errors.New("boom")
	for i := 0; i < 2; i++ {
		if err := b.Execute(ctx, func() error { calls++; return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected underlying error, got %v", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("Expected breaker open after 2 consecutive failures, got %s", b.State())
	}

	err := b.Execute(ctx, func() error { calls++; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Expected ErrCircuitOpen, got %v", err)
	}
	if calls != 3 {
		t.Errorf("open breaker should not run the call, got %d calls", calls)
	}
}

func TestBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	b := NewBreaker("test", testEnv(10), nil)
	ctx := context.Background()
	fail := func() error { return errors.New("fail") }
	ok := func() error { return nil }

	b.Execute(ctx, fail)
	b.Execute(ctx, ok)
	b.Execute(ctx, fail)

	if b.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed breaker, got %s", b.State())
	}
	if got := b.Counts().ConsecutiveFailures; got != 1 {
		t.Errorf("Expected 1 consecutive failure, got %d", got)
	}
}
