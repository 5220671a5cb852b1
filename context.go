package observe

import (
	"context"

	"github.com/google/uuid"
)

const instrumentationName = "github.com/observekit/observe"

// Span attribute keys
const (
	spanKeyEventID   = "observe.event.id"
	spanKeySlot      = "observe.slot"
	spanKeyListeners = "observe.listeners"
)

// NewID generates a new unique event ID.
func NewID() string {
	return uuid.NewString()
}

type fireContextKey struct{}

// fireInfo is the per-fire metadata passed to listeners through the context.
type fireInfo struct {
	eventID string
	slot    string
	sender  Observable
}

func contextWithFire(ctx context.Context, info *fireInfo) context.Context {
	return context.WithValue(ctx, fireContextKey{}, info)
}

// ContextEventID returns the id of the fire that invoked the current
// listener, or "" outside a fire.
func ContextEventID(ctx context.Context) string {
	if info, ok := ctx.Value(fireContextKey{}).(*fireInfo); ok {
		return info.eventID
	}
	return ""
}

// ContextSlot returns the name of the slot being fired, or "" outside a fire.
func ContextSlot(ctx context.Context) string {
	if info, ok := ctx.Value(fireContextKey{}).(*fireInfo); ok {
		return info.slot
	}
	return ""
}

// ContextSender returns the instance whose slot is being fired, or nil
// outside a fire. The dynamic type is the embedding value, so listeners can
// type-assert back to the concrete owner:
//
//	if s, ok := observe.ContextSender(ctx).(*Sensor); ok { ... }
func ContextSender(ctx context.Context) Observable {
	if info, ok := ctx.Value(fireContextKey{}).(*fireInfo); ok {
		return info.sender
	}
	return nil
}
