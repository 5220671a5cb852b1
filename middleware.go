package observe

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/time/rate"
)

// Middleware wraps a listener with cross-cutting behavior. Attach with the
// WithMiddleware subscribe option:
//
//	slot.Of(obj).Subscribe(handler, observe.WithMiddleware(
//	    observe.Filter(func(c Change[int]) bool { return c.New > 0 }),
//	    observe.RateLimit[Change[int]](rate.NewLimiter(100, 10)),
//	))
//
// Middleware changes what a single subscription does, never the dispatch
// contract: listeners still run in order on the firing goroutine and errors
// still abort the fire.
type Middleware[T any] func(next Listener[T]) Listener[T]

// Chain composes middleware into one, outermost first.
func Chain[T any](mw ...Middleware[T]) Middleware[T] {
	return func(next Listener[T]) Listener[T] {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}

// Filter skips the listener for payloads the predicate rejects. A skipped
// payload is a success, not an error; later listeners still run.
func Filter[T any](pred func(data T) bool) Middleware[T] {
	return func(next Listener[T]) Listener[T] {
		return func(ctx context.Context, data T) error {
			if !pred(data) {
				return nil
			}
			return next(ctx, data)
		}
	}
}

// RateLimit blocks on a token bucket before running the listener. Firing
// slows down to the configured rate; a cancelled context surfaces as the
// listener's error. Share one limiter across subscriptions for a combined
// budget.
func RateLimit[T any](limiter *rate.Limiter) Middleware[T] {
	return func(next Listener[T]) Listener[T] {
		return func(ctx context.Context, data T) error {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
			return next(ctx, data)
		}
	}
}

// Recover converts a listener panic into an error wrapping ErrListenerPanic,
// so one misbehaving listener aborts the fire the same way an error return
// does instead of unwinding the firing goroutine. Dispatch stays fail-fast;
// this only trades the panic for an error. Off unless subscribed with.
func Recover[T any]() Middleware[T] {
	return func(next Listener[T]) Listener[T] {
		return func(ctx context.Context, data T) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %q fired %v\n%s",
						ErrListenerPanic, ContextSlot(ctx), r, debug.Stack())
				}
			}()
			return next(ctx, data)
		}
	}
}
