package observe

import "fmt"

// Layout is a fixed, validated declaration set for emitters that should not
// accept arbitrary slots. It is the analog of a closed attribute list: the
// set is decided and checked when the layout is built, and instances created
// from it reject anything outside it.
//
// Layouts compose across an embedding hierarchy: a child type extends its
// parent's layout with its own declarations instead of repeating them.
type Layout struct {
	names map[uint64]string // declaration key -> name
}

// NewLayout builds a layout from the given declarations. A nil declaration
// or the same declaration listed twice is a configuration error reported
// here, at definition time, never at first use.
func NewLayout(decls ...Decl) (*Layout, error) {
	l := &Layout{names: make(map[uint64]string, len(decls))}
	if err := l.declare(decls); err != nil {
		return nil, err
	}
	return l, nil
}

// Extend returns a new layout containing the receiver's declarations plus
// decls. The receiver is not modified, so a parent layout can be extended by
// several children independently. Redeclaring an inherited entry is an
// ErrDuplicateDeclaration; declaring a new slot under an inherited name is
// fine, keys never clash.
func (l *Layout) Extend(decls ...Decl) (*Layout, error) {
	ext := &Layout{names: make(map[uint64]string, len(l.names)+len(decls))}
	for k, v := range l.names {
		ext.names[k] = v
	}
	if err := ext.declare(decls); err != nil {
		return nil, err
	}
	return ext, nil
}

func (l *Layout) declare(decls []Decl) error {
	for _, d := range decls {
		if d == nil {
			return ErrNilDeclaration
		}
		for _, k := range d.keys() {
			if prev, ok := l.names[k]; ok {
				return fmt.Errorf("%w: %q", ErrDuplicateDeclaration, prev)
			}
			l.names[k] = d.Name()
		}
	}
	return nil
}

// Declares reports whether d is part of the layout. Useful for detecting
// whether an embedding type already inherits a declaration before extending.
func (l *Layout) Declares(d Decl) bool {
	if d == nil {
		return false
	}
	for _, k := range d.keys() {
		if _, ok := l.names[k]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of declared storage cells.
func (l *Layout) Len() int {
	return len(l.names)
}

// NewEmitter returns an emitter restricted to this layout, with storage
// pre-sized for exactly the declared cells. Assign it to the embedded field
// at construction:
//
//	s := &Sensor{Emitter: layout.NewEmitter()}
func (l *Layout) NewEmitter() Emitter {
	return Emitter{s: store{
		cells:  make(map[uint64]any, len(l.names)),
		layout: l,
	}}
}

func (l *Layout) declares(key uint64) bool {
	_, ok := l.names[key]
	return ok
}
