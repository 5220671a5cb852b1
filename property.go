package observe

import (
	"context"
	"reflect"
)

// Change is the payload of a property's Changed slot: the owning instance
// and the value transition that actually happened.
type Change[T any] struct {
	Owner Observable
	Old   T
	New   T
}

// Property declares an observable attribute: a typed per-instance value plus
// an auto-declared Changed slot that fires when, and only when, a Set stores
// a value different from the one already stored.
//
//	var Temp = observe.NewProperty[float64]("sensor.temp")
//
//	Temp.Changed().Of(s).Subscribe(onTemp)
//	Temp.Set(ctx, s, 21.5)
//
// Equality defaults to reflect.DeepEqual and is configurable with WithEqual
// (pass a go-cmp based comparison for type-aware semantics).
type Property[T any] struct {
	key     uint64
	name    string
	changed *Slot[Change[T]]
	cfg     propertyConfig[T]
}

// propertyConfig holds per-property configuration (unexported)
type propertyConfig[T any] struct {
	equal   func(prev, next T) bool
	getter  func(owner Observable, stored T) T
	setter  func(owner Observable, value T) (T, error)
	initial T
	slot    []SlotOption
}

// PropertyOption is an option function for property configuration.
type PropertyOption[T any] func(*propertyConfig[T])

// WithInitial sets the value an instance holds before its first Set.
// Defaults to the zero value of T.
func WithInitial[T any](v T) PropertyOption[T] {
	return func(cfg *propertyConfig[T]) {
		cfg.initial = v
	}
}

// WithEqual sets the comparison deciding whether a Set actually changed the
// value. Defaults to reflect.DeepEqual.
func WithEqual[T any](eq func(prev, next T) bool) PropertyOption[T] {
	return func(cfg *propertyConfig[T]) {
		if eq != nil {
			cfg.equal = eq
		}
	}
}

// WithGetter overrides the read path: it receives the stored value and
// returns what Get reports. The stored value is not modified.
func WithGetter[T any](get func(owner Observable, stored T) T) PropertyOption[T] {
	return func(cfg *propertyConfig[T]) {
		cfg.getter = get
	}
}

// WithSetter overrides the write path: it receives the incoming value and
// returns what gets stored, or an error to refuse the write. The change
// comparison runs on its result.
func WithSetter[T any](set func(owner Observable, value T) (T, error)) PropertyOption[T] {
	return func(cfg *propertyConfig[T]) {
		cfg.setter = set
	}
}

// WithChangedSlot forwards slot options (logger, tracing, metrics) to the
// property's Changed slot.
func WithChangedSlot[T any](opts ...SlotOption) PropertyOption[T] {
	return func(cfg *propertyConfig[T]) {
		cfg.slot = append(cfg.slot, opts...)
	}
}

// NewProperty declares a new observable property. The Changed slot is
// declared alongside it under "<name>_changed".
func NewProperty[T any](name string, opts ...PropertyOption[T]) *Property[T] {
	cfg := propertyConfig[T]{
		equal: func(prev, next T) bool { return reflect.DeepEqual(prev, next) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Property[T]{
		key:     nextDeclKey(),
		name:    name,
		changed: NewSlot[Change[T]](name+"_changed", cfg.slot...),
		cfg:     cfg,
	}
}

// Name returns the declared property name.
func (p *Property[T]) Name() string {
	return p.name
}

func (p *Property[T]) String() string {
	return p.name
}

func (p *Property[T]) keys() []uint64 {
	return []uint64{p.key, p.changed.key}
}

// Changed returns the slot that fires on actual value changes. Subscribe
// through it like any other slot.
func (p *Property[T]) Changed() *Slot[Change[T]] {
	return p.changed
}

// propertyCell is the per-instance backing storage.
type propertyCell[T any] struct {
	value T
}

func (p *Property[T]) cell(owner Observable) *propertyCell[T] {
	c := owner.eventStore().cell(p.key, p.name, func() any {
		return &propertyCell[T]{value: p.cfg.initial}
	})
	return c.(*propertyCell[T])
}

// Get returns the property value on owner, routed through the getter
// override when one is configured.
func (p *Property[T]) Get(owner Observable) T {
	v := p.cell(owner).value
	if p.cfg.getter != nil {
		v = p.cfg.getter(owner, v)
	}
	return v
}

// Set stores value on owner and fires Changed with the old and new values
// if they differ under the configured equality. Equal writes store silently.
// Listener errors propagate unmodified; the value stays stored either way.
func (p *Property[T]) Set(ctx context.Context, owner Observable, value T) error {
	cell := p.cell(owner)
	old := cell.value

	if p.cfg.setter != nil {
		v, err := p.cfg.setter(owner, value)
		if err != nil {
			return err
		}
		value = v
	}
	cell.value = value

	if p.cfg.equal(old, value) {
		return nil
	}
	return p.changed.Of(owner).Fire(ctx, Change[T]{Owner: owner, Old: old, New: value})
}
