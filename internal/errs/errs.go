// Package errs defines the error kinds raised by the scene graph.
//
// Every error carries one of four sentinel kinds so callers can branch with
// errors.Is:
//
//	if errors.Is(err, errs.ErrInconsistency) { ... }
package errs

import (
	"errors"
	"fmt"
)

// Error kinds.
var (
	// ErrPrecondition marks a programmer error such as reading a released
	// CPU buffer or an out-of-range vertex index.
	ErrPrecondition = errors.New("precondition violated")

	// ErrResource marks a GPU resource failure. It is recovered locally.
	ErrResource = errors.New("resource unavailable")

	// ErrInconsistency marks an operation that would leave the scene graph
	// invalid, such as a cyclic parent assignment.
	ErrInconsistency = errors.New("inconsistent operation")

	// ErrNotFound marks a failed name lookup.
	ErrNotFound = errors.New("not found")
)

// Error is a kinded error with the operation that raised it.
type Error struct {
	Kind error
	Op   string
	Msg  string
}

// New returns an *Error of the given kind.
func New(kind error, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Kind, e.Msg)
}

// Unwrap returns the kind so errors.Is matches the sentinel.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Precondition panics with an ErrPrecondition error. Hot accessors use it
// instead of returning an error.
func Precondition(op, format string, args ...any) {
	panic(New(ErrPrecondition, op, format, args...))
}

// KindOf returns the sentinel kind of err, or nil if err carries none.
func KindOf(err error) error {
	for _, k := range []error{ErrPrecondition, ErrResource, ErrInconsistency, ErrNotFound} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
