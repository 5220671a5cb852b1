package observe

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Bound is the per-instance view of a slot: the pair (owner, listener list)
// behind obj.event in the declaration idiom. It is a transient value,
// recreated by every Of call; the listener list it wraps is not, so any two
// views of the same slot on the same owner stay in sync.
type Bound[T any] struct {
	slot  *Slot[T]
	owner Observable
	list  *listenerList[T]
}

// Slot returns the declaration this view is bound to.
func (b Bound[T]) Slot() *Slot[T] {
	return b.slot
}

// Subscribe attaches fn to the end of the listener list and returns the same
// view for chaining. Duplicate subscriptions are allowed and fire once per
// attachment. There is no callable check beyond the type system; a nil fn
// will fail at fire time, not here.
func (b Bound[T]) Subscribe(fn Listener[T], opts ...SubscribeOption[T]) Bound[T] {
	var cfg subscribeConfig[T]
	for _, opt := range opts {
		opt(&cfg)
	}
	wrapped := fn
	for i := len(cfg.middleware) - 1; i >= 0; i-- {
		wrapped = cfg.middleware[i](wrapped)
	}
	b.list.add(wrapped, listenerKey(fn))
	return b
}

// Unsubscribe detaches the first occurrence of fn. Detaching a listener that
// is not attached is an error, not a no-op:
//
//	if err := Closed.Of(d).Unsubscribe(onClose); err != nil {
//	    // errors.Is(err, observe.ErrListenerNotFound)
//	}
func (b Bound[T]) Unsubscribe(fn Listener[T]) error {
	if !b.list.remove(listenerKey(fn)) {
		return fmt.Errorf("%w: %q on %T", ErrListenerNotFound, b.slot.name, b.owner)
	}
	return nil
}

// Contains reports whether fn is currently attached.
func (b Bound[T]) Contains(fn Listener[T]) bool {
	return b.list.contains(listenerKey(fn))
}

// Len returns the number of attached listeners.
func (b Bound[T]) Len() int {
	return b.list.len()
}

// Clear detaches every listener.
func (b Bound[T]) Clear() {
	b.list.clear()
}

// Fire invokes every attached listener in subscription order with data,
// synchronously on the calling goroutine. The first listener error is
// returned unmodified and skips the rest of the list. A fire with no
// listeners is a no-op.
func (b Bound[T]) Fire(ctx context.Context, data T) error {
	if ctx == nil {
		ctx = context.Background()
	}
	eventID := NewID()
	ctx = contextWithFire(ctx, &fireInfo{
		eventID: eventID,
		slot:    b.slot.name,
		sender:  b.owner,
	})

	if b.slot.cfg.metricsEnabled {
		meter := otel.Meter(instrumentationName)
		fired, _ := meter.Int64Counter("observe.fired",
			metric.WithDescription("Total number of events fired"))
		fired.Add(ctx, 1, metric.WithAttributes(attribute.String("slot", b.slot.name)))
	}

	if b.slot.cfg.tracingEnabled {
		tracer := otel.Tracer(instrumentationName)
		var span trace.Span
		ctx, span = tracer.Start(ctx, fmt.Sprintf("%s.fire", b.slot.name),
			trace.WithAttributes(
				attribute.String(spanKeyEventID, eventID),
				attribute.String(spanKeySlot, b.slot.name),
				attribute.Int(spanKeyListeners, b.list.len())),
			trace.WithSpanKind(trace.SpanKindInternal))
		defer span.End()
	}

	if err := b.list.fire(ctx, data); err != nil {
		b.slot.cfg.logger.Debug("fire aborted", "slot", b.slot.name, "event_id", eventID, "error", err)
		return err
	}
	return nil
}
