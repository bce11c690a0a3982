package kernel

import (
	"errors"
	"fmt"
)

// ErrGeometry matches every *GeometryError with errors.Is.
var ErrGeometry = errors.New("geometry error")

// GeometryError reports a kernel operation that could not produce valid
// geometry.
type GeometryError struct {
	Op     string // kernel operation, e.g. "make_face", "revolve"
	Reason string // what was wrong with the input or result
	Err    error  // underlying cause, may be nil
}

// NewGeometryError builds a *GeometryError with a formatted reason.
func NewGeometryError(op, format string, args ...any) *GeometryError {
	return &GeometryError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

func (e *GeometryError) Error() string {
	msg := fmt.Sprintf("geometry: %s: %s", e.Op, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *GeometryError) Unwrap() error { return e.Err }

// Is reports whether target is ErrGeometry.
func (e *GeometryError) Is(target error) bool { return target == ErrGeometry }
