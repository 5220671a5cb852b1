package observe

import (
	"context"
	"time"
)

// RecordedFire is one invocation captured by a Recorder.
type RecordedFire[T any] struct {
	EventID   string
	Slot      string
	Data      T
	Timestamp time.Time
}

// Recorder is a test listener that captures every payload it receives.
// Useful for asserting fire order and content without hand-rolled channels.
//
//	rec := observe.NewRecorder[TempChange]()
//	TempChanged.Of(s).Subscribe(rec.Listener())
//	TempChanged.Of(s).Fire(ctx, TempChange{Celsius: 20})
//	if rec.Count() != 1 { ... }
//
// Listener returns the same function value every call, so the recorder can
// be detached again with Unsubscribe. Not safe for concurrent use, matching
// the dispatch model.
type Recorder[T any] struct {
	fires []RecordedFire[T]
	fail  error
	fn    Listener[T]
}

// NewRecorder creates a recorder for payloads of type T.
func NewRecorder[T any]() *Recorder[T] {
	r := &Recorder[T]{}
	r.fn = func(ctx context.Context, data T) error {
		r.fires = append(r.fires, RecordedFire[T]{
			EventID:   ContextEventID(ctx),
			Slot:      ContextSlot(ctx),
			Data:      data,
			Timestamp: time.Now(),
		})
		return r.fail
	}
	return r
}

// Listener returns the recorder's stable listener value.
func (r *Recorder[T]) Listener() Listener[T] {
	return r.fn
}

// FailWith makes every subsequent invocation return err after recording.
// Pass nil to succeed again.
func (r *Recorder[T]) FailWith(err error) {
	r.fail = err
}

// Fires returns a copy of all recorded invocations in order.
func (r *Recorder[T]) Fires() []RecordedFire[T] {
	out := make([]RecordedFire[T], len(r.fires))
	copy(out, r.fires)
	return out
}

// Data returns just the recorded payloads in order.
func (r *Recorder[T]) Data() []T {
	out := make([]T, len(r.fires))
	for i, f := range r.fires {
		out[i] = f.Data
	}
	return out
}

// Count returns the number of recorded invocations.
func (r *Recorder[T]) Count() int {
	return len(r.fires)
}

// Last returns the most recent invocation. Reports false when nothing has
// been recorded yet.
func (r *Recorder[T]) Last() (RecordedFire[T], bool) {
	if len(r.fires) == 0 {
		return RecordedFire[T]{}, false
	}
	return r.fires[len(r.fires)-1], true
}

// Reset clears all recorded invocations.
func (r *Recorder[T]) Reset() {
	r.fires = nil
}
