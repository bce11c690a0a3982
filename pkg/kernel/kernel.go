// Package kernel defines the geometry kernel interface the solid builder
// consumes. The kernel owns faces and solids; callers only hold opaque
// handles and ask for the measurements they need. The sdfx subpackage
// provides the implementation used by default.
package kernel

import (
	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/wire"
)

// Face is a planar region bounded by a closed wire, lying in the XZ plane
// with profile X as the 3D x coordinate and profile Y as z.
type Face interface {
	// Area returns the enclosed area.
	Area() float64
	// Bounds returns the 2D bounding box of the boundary.
	Bounds() (min, max geom.Vec2)
}

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Volume returns the enclosed volume.
	Volume() float64
}

// Kernel is the abstract geometry kernel.
type Kernel interface {
	// MakeFace closes a wire into a face. Self-intersecting, zero-area or
	// otherwise unusable wires fail with a *GeometryError.
	MakeFace(w *wire.Wire) (Face, error)

	// Revolve sweeps a face about the z axis by angle degrees, starting
	// from the XZ plane and turning counter-clockwise seen from +z.
	Revolve(f Face, angle float64) (Solid, error)
	// Extrude sweeps a face along y by distance, centred on the XZ plane.
	Extrude(f Face, distance float64) (Solid, error)

	// Compound groups solids without merging them. Volumes add.
	Compound(solids ...Solid) (Solid, error)
	// Subtract removes b from a.
	Subtract(a, b Solid) (Solid, error)
	// RotateZ returns s rotated about the z axis by angle degrees.
	RotateZ(s Solid, angle float64) Solid

	// ToMesh converts a solid to a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
