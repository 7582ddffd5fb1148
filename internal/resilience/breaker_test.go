package resilience

import (
	"errors"
	"testing"
	"time"
)

var errDown = errors.New("identity provider unreachable")

func trip(b *Breaker, n int) {
	for range n {
		_ = b.Execute(func() error { return errDown })
	}
}

func TestClosedBreakerRunsCalls(t *testing.T) {
	b := NewBreaker(3, time.Second)

	ran := false
	if err := b.Execute(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ran {
		t.Fatal("fn was not called")
	}
}

func TestBreakerOpensAtThreshold(t *testing.T) {
	b := NewBreaker(3, time.Second)
	trip(b, 3)

	err := b.Execute(func() error {
		t.Fatal("fn called while open")
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreakerReturnsCallErrorUnwrapped(t *testing.T) {
	b := NewBreaker(3, time.Second)

	err := b.Execute(func() error { return errDown })
	if !errors.Is(err, errDown) {
		t.Fatalf("expected the fn's error back, got %v", err)
	}
}

func TestBreakerProbesAfterCooldown(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	trip(b, 2)

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected open before cooldown, got %v", err)
	}

	now = now.Add(2 * time.Second)

	// Half-open lets the probe through; success closes the circuit.
	ran := false
	if err := b.Execute(func() error { ran = true; return nil }); err != nil {
		t.Fatalf("probe after cooldown: %v", err)
	}
	if !ran {
		t.Fatal("probe fn was not called")
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed after probe success, got %v", err)
	}
}

func TestFailedProbeReopensBreaker(t *testing.T) {
	now := time.Now()
	b := NewBreaker(2, time.Second)
	b.now = func() time.Time { return now }

	trip(b, 2)
	now = now.Add(2 * time.Second)

	// A single half-open failure reopens immediately, no threshold needed.
	_ = b.Execute(func() error { return errDown })

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected reopened circuit, got %v", err)
	}
}

func TestSuccessResetsConsecutiveCount(t *testing.T) {
	b := NewBreaker(3, time.Second)

	trip(b, 2)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("reset call: %v", err)
	}
	trip(b, 2)

	// Two failures after a reset stay under the threshold of three.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected closed circuit, got %v", err)
	}
}
