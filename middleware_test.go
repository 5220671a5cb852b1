package observe

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/time/rate"
)

type gauge struct {
	Emitter
}

func TestFilter(t *testing.T) {
	s := NewSlot[int]("gauge.sampled")
	g := &gauge{}

	rec := NewRecorder[int]()
	s.Of(g).Subscribe(rec.Listener(), WithMiddleware(
		Filter(func(n int) bool { return n%2 == 0 }),
	))

	for n := range 4 {
		if err := s.Of(g).Fire(context.Background(), n); err != nil {
			t.Fatalf("fire failed: %v", err)
		}
	}
	if diff := cmp.Diff([]int{0, 2}, rec.Data()); diff != "" {
		t.Errorf("filtered payloads (-want +got):\n%s", diff)
	}
}

func TestFilteredListenerKeepsIdentity(t *testing.T) {
	s := NewSlot[int]("gauge.sampled")
	g := &gauge{}
	rec := NewRecorder[int]()

	s.Of(g).Subscribe(rec.Listener(), WithMiddleware(
		Filter(func(n int) bool { return false }),
	))
	if !s.Of(g).Contains(rec.Listener()) {
		t.Error("wrapped listener lost its identity")
	}
	if err := s.Of(g).Unsubscribe(rec.Listener()); err != nil {
		t.Errorf("unsubscribe wrapped listener: %v", err)
	}
}

func TestChainOrder(t *testing.T) {
	var got []string
	tag := func(name string) Middleware[int] {
		return func(next Listener[int]) Listener[int] {
			return func(ctx context.Context, n int) error {
				got = append(got, name)
				return next(ctx, n)
			}
		}
	}

	s := NewSlot[int]("gauge.chained")
	g := &gauge{}
	s.Of(g).Subscribe(func(ctx context.Context, n int) error {
		got = append(got, "listener")
		return nil
	}, WithMiddleware(Chain(tag("outer"), tag("inner"))))

	if err := s.Of(g).Fire(context.Background(), 1); err != nil {
		t.Fatalf("fire failed: %v", err)
	}
	if diff := cmp.Diff([]string{"outer", "inner", "listener"}, got); diff != "" {
		t.Errorf("chain order (-want +got):\n%s", diff)
	}
}

func TestRecover(t *testing.T) {
	s := NewSlot[int]("gauge.panicky")
	g := &gauge{}

	s.Of(g).Subscribe(func(ctx context.Context, n int) error {
		panic("kaboom")
	}, WithMiddleware(Recover[int]()))

	err := s.Of(g).Fire(context.Background(), 1)
	if !errors.Is(err, ErrListenerPanic) {
		t.Fatalf("fire = %v, want ErrListenerPanic", err)
	}
}

func TestPanicPropagatesWithoutRecover(t *testing.T) {
	s := NewSlot[int]("gauge.panicky")
	g := &gauge{}
	s.Of(g).Subscribe(func(ctx context.Context, n int) error {
		panic("kaboom")
	})

	defer func() {
		if recover() == nil {
			t.Error("panic did not propagate to the firer")
		}
	}()
	_ = s.Of(g).Fire(context.Background(), 1)
}

func TestRateLimit(t *testing.T) {
	s := NewSlot[int]("gauge.limited")
	g := &gauge{}
	rec := NewRecorder[int]()

	// Plenty of budget: everything passes without blocking the test.
	s.Of(g).Subscribe(rec.Listener(), WithMiddleware(
		RateLimit[int](rate.NewLimiter(rate.Inf, 0)),
	))
	for range 3 {
		if err := s.Of(g).Fire(context.Background(), 1); err != nil {
			t.Fatalf("fire failed: %v", err)
		}
	}
	if rec.Count() != 3 {
		t.Errorf("recorded %d fires, want 3", rec.Count())
	}

	// Zero budget: the limiter error aborts the fire.
	s.Of(g).Clear()
	s.Of(g).Subscribe(rec.Listener(), WithMiddleware(
		RateLimit[int](rate.NewLimiter(0, 0)),
	))
	if err := s.Of(g).Fire(context.Background(), 1); err == nil {
		t.Error("zero-budget limiter let the fire through")
	}
}
