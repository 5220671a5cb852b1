package observe

import (
	"log/slog"
	"sync/atomic"
)

// declKeys is the process-wide source of declaration keys. Keys are assigned
// once, when a slot or property is declared, and act as the stable handle
// into per-instance storage.
var declKeys atomic.Uint64

func nextDeclKey() uint64 {
	return declKeys.Add(1)
}

// Decl is a class-level declaration that can be pinned into a Layout: a
// *Slot[T] or a *Property[T].
type Decl interface {
	// Name returns the declared name.
	Name() string

	// keys returns the storage keys the declaration owns. A slot owns one,
	// a property owns its backing cell plus its Changed slot.
	keys() []uint64
}

// Slot is a typed, identity-stable event declaration. Declare one per event,
// next to the type it belongs to:
//
//	var Closed = observe.NewSlot[CloseReason]("door.closed")
//
// The slot itself holds no listeners. Per-instance listener lists live in the
// owner's Emitter and are reached through Of. Slot identity (the pointer) is
// what distinguishes two events, not the name; embedding types inherit their
// parents' slots and may declare their own under the same name without clashing.
type Slot[T any] struct {
	key  uint64
	name string
	cfg  slotConfig
}

// NewSlot declares a new typed event slot.
func NewSlot[T any](name string, opts ...SlotOption) *Slot[T] {
	return &Slot[T]{
		key:  nextDeclKey(),
		name: name,
		cfg:  newSlotConfig(opts...),
	}
}

// Name returns the declared event name.
func (s *Slot[T]) Name() string {
	return s.name
}

func (s *Slot[T]) String() string {
	return s.name
}

func (s *Slot[T]) keys() []uint64 {
	return []uint64{s.key}
}

// Of returns the bound view of this event on owner. The owner's listener
// list is created on first access; every later access observes the same
// list, so views from separate Of calls stay consistent.
//
// Panics with *NotDeclaredError if owner was built from a Layout that does
// not declare this slot.
func (s *Slot[T]) Of(owner Observable) Bound[T] {
	cell := owner.eventStore().cell(s.key, s.name, func() any {
		return new(listenerList[T])
	})
	return Bound[T]{
		slot:  s,
		owner: owner,
		list:  cell.(*listenerList[T]),
	}
}

// Logger returns the slot's logger.
func (s *Slot[T]) Logger() *slog.Logger {
	return s.cfg.logger
}
