package shape

import (
	"errors"
	"fmt"
)

// ErrCutCycle is returned when a shape's cut operands lead back to itself.
var ErrCutCycle = errors.New("cut references form a cycle")

// Build stages named in BuildError.Op.
const (
	OpValidate  = "validate"
	OpProfile   = "profile"
	OpWire      = "wire"
	OpFace      = "face"
	OpSweep     = "sweep"
	OpUnion     = "union"
	OpReplicate = "replicate"
	OpCut       = "cut"
)

// BuildError reports which shape failed to build and at what stage. The
// cause is one of geom.ErrInvalidParameter, profile.ErrNotConverged,
// ErrCutCycle or a *kernel.GeometryError, reachable with errors.Is and
// errors.As.
type BuildError struct {
	Shape string
	Op    string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %q: %s: %v", e.Shape, e.Op, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
