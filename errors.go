package observe

import (
	"errors"
	"fmt"
)

// Package errors.
// Use errors.Is() to check for these as they may be wrapped with slot and
// listener detail.
var (
	// ErrListenerNotFound is returned by Unsubscribe when the listener was
	// never subscribed (or was already removed). Detaching is never silent.
	ErrListenerNotFound = errors.New("listener not found")

	// ErrNilDeclaration is returned by NewLayout/Extend for a nil slot or property.
	ErrNilDeclaration = errors.New("nil declaration")

	// ErrDuplicateDeclaration is returned by NewLayout/Extend when the same
	// slot or property appears twice in a layout.
	ErrDuplicateDeclaration = errors.New("duplicate declaration")

	// ErrListenerPanic wraps a recovered listener panic when the Recover
	// middleware is installed. Without that middleware panics propagate.
	ErrListenerPanic = errors.New("listener panic")
)

// NotDeclaredError is the panic value raised when a slot or property is
// accessed on an emitter whose layout does not declare it. This is a
// programmer error: the declaration set of a fixed emitter is decided when
// the layout is built, not at first use.
type NotDeclaredError struct {
	// Declaration is the name of the slot or property that was accessed.
	Declaration string
}

func (e *NotDeclaredError) Error() string {
	return fmt.Sprintf("observe: %q is not declared in the emitter layout", e.Declaration)
}

// IsNotDeclared reports whether err (usually a recovered panic value) is a
// *NotDeclaredError.
func IsNotDeclared(err error) bool {
	var nd *NotDeclaredError
	return errors.As(err, &nd)
}
