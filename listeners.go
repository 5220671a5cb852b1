package observe

import (
	"context"
	"reflect"
)

// Listener is the callback attached to a slot. Fire metadata (event id, slot
// name, sender) rides the context; see ContextEventID and friends.
//
// Returning a non-nil error aborts the fire: the error surfaces to the
// caller of Fire and listeners subscribed after this one are not invoked.
type Listener[T any] func(ctx context.Context, data T) error

// listenerKey is the identity used for Unsubscribe and Contains: the code
// pointer of the function value. Subscribing the same value twice yields
// duplicates sharing one key; removal takes the first match. Closures built
// from the same function literal (and method values of the same method)
// also share a code pointer, so they alias each other for removal — keep
// the subscribed value around and detach exactly what was attached.
func listenerKey[T any](fn Listener[T]) uintptr {
	return reflect.ValueOf(fn).Pointer()
}

type listenerEntry[T any] struct {
	fn  Listener[T] // possibly middleware-wrapped
	key uintptr     // identity of the original listener
}

// listenerList is the per-(instance, slot) ordered listener collection.
// Attachment order is invocation order. Not safe for concurrent use.
type listenerList[T any] struct {
	entries []listenerEntry[T]
}

func (l *listenerList[T]) add(fn Listener[T], key uintptr) {
	l.entries = append(l.entries, listenerEntry[T]{fn: fn, key: key})
}

// remove drops the first entry with the given identity. Reports whether an
// entry was removed.
func (l *listenerList[T]) remove(key uintptr) bool {
	for i, e := range l.entries {
		if e.key == key {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (l *listenerList[T]) contains(key uintptr) bool {
	for _, e := range l.entries {
		if e.key == key {
			return true
		}
	}
	return false
}

func (l *listenerList[T]) len() int {
	return len(l.entries)
}

func (l *listenerList[T]) clear() {
	l.entries = nil
}

// fire invokes every listener in attachment order on the calling goroutine.
// The first error stops the walk. Structural mutation of the list from
// inside a listener is undefined.
func (l *listenerList[T]) fire(ctx context.Context, data T) error {
	for _, e := range l.entries {
		if err := e.fn(ctx, data); err != nil {
			return err
		}
	}
	return nil
}
