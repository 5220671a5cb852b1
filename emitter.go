package observe

// Observable is implemented by any type that embeds Emitter. It is the
// owner-side half of the slot contract: Slot.Of and Property.Get/Set accept
// any Observable and resolve their per-instance storage through it.
type Observable interface {
	eventStore() *store
}

// Emitter holds the per-instance listener and property storage for one
// owning value. Types opt in by embedding it:
//
//	type Sensor struct {
//	    observe.Emitter
//	}
//
// The zero value is ready to use: storage is allocated lazily on the first
// access to any slot or property, accepts any declaration, and lives exactly
// as long as the embedding value. Use Layout.NewEmitter to restrict an
// instance to a fixed declaration set instead.
//
// An Emitter must not be copied after first use; the embedding value should
// be handled by pointer.
type Emitter struct {
	s store
}

func (e *Emitter) eventStore() *store {
	return &e.s
}

// store maps declaration keys to their per-instance cells: a *listenerList[T]
// for slots, a *propertyCell[T] for properties. Keys are process-unique
// integers assigned at declaration time, so lookups never collide across
// independently declared slots, including same-named ones.
type store struct {
	cells  map[uint64]any
	layout *Layout
}

// cell returns the cell for key, creating it on first access. Repeated
// accesses return the same cell, which is what keeps every Bound view of an
// instance's slot backed by the same listener list.
func (s *store) cell(key uint64, name string, create func() any) any {
	if s.layout != nil && !s.layout.declares(key) {
		panic(&NotDeclaredError{Declaration: name})
	}
	if c, ok := s.cells[key]; ok {
		return c
	}
	if s.cells == nil {
		s.cells = make(map[uint64]any)
	}
	c := create()
	s.cells[key] = c
	return c
}
