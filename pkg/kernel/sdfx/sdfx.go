// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
//
// sdfx solids are signed distance functions, so volumes are not read back
// from a boundary representation. Each solid carries its volume, computed
// exactly for sweeps (Pappus for revolutions, area times length for
// extrusions) and by sampling the operands for boolean cuts.
package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/paracore/pkg/config"
	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/metrics"
	"github.com/chazu/paracore/pkg/wire"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// Options controls sampling resolution.
type Options struct {
	MeshCells      int // marching cubes resolution for ToMesh
	SplineSegments int // polygon samples per spline span in MakeFace
	ArcSegments    int // polygon samples per arc in MakeFace
	VolumeSamples  int // grid points per axis when measuring a cut
}

// DefaultOptions returns the resolution used by New.
func DefaultOptions() Options {
	k := config.Default().Kernel
	return Options{
		MeshCells:      k.MeshCells,
		SplineSegments: k.SplineSegments,
		ArcSegments:    k.ArcSegments,
		VolumeSamples:  k.VolumeSamples,
	}
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s      sdf.SDF3
	volume float64
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Volume returns the enclosed volume.
func (s *sdfxSolid) Volume() float64 { return s.volume }

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	opts    Options
	metrics *metrics.Collector
}

// Option configures an SdfxKernel.
type Option func(*SdfxKernel)

// WithOptions replaces the sampling resolution.
func WithOptions(o Options) Option {
	return func(k *SdfxKernel) { k.opts = o }
}

// WithMetrics counts kernel operations on c.
func WithMetrics(c *metrics.Collector) Option {
	return func(k *SdfxKernel) { k.metrics = c }
}

// New returns a new SdfxKernel.
func New(opts ...Option) *SdfxKernel {
	k := &SdfxKernel{opts: DefaultOptions()}
	for _, o := range opts {
		o(k)
	}
	return k
}

// NewFromConfig returns a kernel using the resolution in cfg.
func NewFromConfig(cfg config.Kernel, opts ...Option) *SdfxKernel {
	o := Options{
		MeshCells:      cfg.MeshCells,
		SplineSegments: cfg.SplineSegments,
		ArcSegments:    cfg.ArcSegments,
		VolumeSamples:  cfg.VolumeSamples,
	}
	return New(append([]Option{WithOptions(o)}, opts...)...)
}

// Options returns the kernel's sampling resolution.
func (k *SdfxKernel) Options() Options { return k.opts }

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3, volume float64) kernel.Solid {
	return &sdfxSolid{s: s, volume: volume}
}

// MakeFace samples the wire into a polygon, checks it is simple with
// non-zero area and orients it counter-clockwise.
func (k *SdfxKernel) MakeFace(w *wire.Wire) (kernel.Face, error) {
	k.metrics.KernelCall("make_face")
	if w == nil || len(w.Edges) == 0 {
		return nil, kernel.NewGeometryError("make_face", "empty wire")
	}
	pts, err := w.Polyline(k.opts.SplineSegments, k.opts.ArcSegments)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "make_face", Reason: "cannot sample wire", Err: err}
	}
	fc, err := newFace(pts)
	if err != nil {
		return nil, err
	}
	fc.pointMin = math.Inf(1)
	for _, e := range w.Edges {
		for _, p := range e.Points {
			fc.pointMin = math.Min(fc.pointMin, p.X)
		}
	}
	return fc, nil
}

// Revolve sweeps a face about the z axis. The profile's x coordinate is the
// radius and its y coordinate the height. A profile whose defining points
// lie left of the axis is rejected; a sampled edge that only bulges across
// it is clipped to x >= 0.
func (k *SdfxKernel) Revolve(f kernel.Face, angle float64) (kernel.Solid, error) {
	k.metrics.KernelCall("revolve")
	fc := f.(*face)
	if !(angle > 0 && angle <= 360) {
		return nil, kernel.NewGeometryError("revolve", "rotation angle %g outside (0, 360]", angle)
	}
	if fc.pointMin < -axisTolerance*fc.scale() {
		return nil, kernel.NewGeometryError("revolve", "profile crosses the revolution axis (min x = %g)", fc.pointMin)
	}
	if fc.min.X < 0 {
		clipped, err := fc.clipToAxis()
		if err != nil {
			return nil, &kernel.GeometryError{Op: "revolve", Reason: "cannot clip face to the axis", Err: err}
		}
		fc = clipped
	}

	var (
		s   sdf.SDF3
		err error
	)
	if angle >= 360 {
		s, err = sdf.Revolve3D(fc.s)
	} else {
		s, err = sdf.RevolveTheta3D(fc.s, angle*math.Pi/180.0)
	}
	if err != nil {
		return nil, &kernel.GeometryError{Op: "revolve", Reason: "sdf revolve failed", Err: err}
	}
	// Pappus: swept volume is the angle times the first moment about the axis.
	return wrap(s, fc.moment*angle*math.Pi/180.0), nil
}

// Extrude sweeps a face along y, symmetric about the XZ plane.
func (k *SdfxKernel) Extrude(f kernel.Face, distance float64) (kernel.Solid, error) {
	k.metrics.KernelCall("extrude")
	fc := f.(*face)
	if !(distance > 0) || math.IsInf(distance, 0) {
		return nil, kernel.NewGeometryError("extrude", "distance %g must be positive", distance)
	}
	// Extrude3D runs along z; turning +z onto -y brings the profile's y
	// axis up to z.
	s := sdf.Extrude3D(fc.s, distance)
	s = sdf.Transform3D(s, sdf.RotateX(math.Pi/2))
	return wrap(s, fc.area*distance), nil
}

// Compound groups solids. The result's volume is the sum of the parts.
func (k *SdfxKernel) Compound(solids ...kernel.Solid) (kernel.Solid, error) {
	k.metrics.KernelCall("compound")
	switch len(solids) {
	case 0:
		return nil, kernel.NewGeometryError("compound", "no solids to combine")
	case 1:
		return solids[0], nil
	}
	parts := make([]sdf.SDF3, len(solids))
	total := 0.0
	for i, s := range solids {
		u := unwrap(s)
		parts[i] = u.s
		total += u.volume
	}
	return wrap(sdf.Union3D(parts...), total), nil
}

// Subtract returns a - b.
func (k *SdfxKernel) Subtract(a, b kernel.Solid) (kernel.Solid, error) {
	k.metrics.KernelCall("subtract")
	ua, ub := unwrap(a), unwrap(b)
	overlap := overlapVolume(ua, ub, k.opts.VolumeSamples)
	vol := ua.volume - overlap
	if vol <= emptyTolerance*ua.volume {
		return nil, kernel.NewGeometryError("subtract", "empty result")
	}
	return wrap(sdf.Difference3D(ua.s, ub.s), vol), nil
}

// RotateZ rotates a solid about the z axis by angle degrees.
func (k *SdfxKernel) RotateZ(s kernel.Solid, angle float64) kernel.Solid {
	k.metrics.KernelCall("rotate_z")
	u := unwrap(s)
	if math.Mod(angle, 360) == 0 {
		return u
	}
	m := sdf.RotateZ(angle * math.Pi / 180.0)
	return wrap(sdf.Transform3D(u.s, m), u.volume)
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	k.metrics.KernelCall("to_mesh")
	sdf3 := unwrap(s).s

	renderer := render.NewMarchingCubesUniform(k.opts.MeshCells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, kernel.NewGeometryError("to_mesh", "no surface at %d cells", k.opts.MeshCells)
	}

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

const (
	axisTolerance  = 1e-9
	emptyTolerance = 1e-9
)

// overlapVolume estimates the volume shared by a and b. It samples the
// operand with the smaller bounding box on a regular grid and scales that
// operand's exact volume by the fraction of its samples inside the other.
// A fully enclosed operand therefore contributes its exact volume.
func overlapVolume(a, b *sdfxSolid, n int) float64 {
	ab, bb := a.s.BoundingBox(), b.s.BoundingBox()
	if !boxesOverlap(ab, bb) {
		return 0
	}
	small, other := b, a
	if boxVolume(ab) < boxVolume(bb) {
		small, other = a, b
	}
	box := small.s.BoundingBox()
	otherBox := other.s.BoundingBox()
	size := box.Max.Sub(box.Min)
	step := v3.Vec{X: size.X / float64(n), Y: size.Y / float64(n), Z: size.Z / float64(n)}

	total, inside := 0, 0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for l := 0; l < n; l++ {
				p := v3.Vec{
					X: box.Min.X + (float64(i)+0.5)*step.X,
					Y: box.Min.Y + (float64(j)+0.5)*step.Y,
					Z: box.Min.Z + (float64(l)+0.5)*step.Z,
				}
				if small.s.Evaluate(p) >= 0 {
					continue
				}
				total++
				if inBox(otherBox, p) && other.s.Evaluate(p) < 0 {
					inside++
				}
			}
		}
	}
	if total == 0 || inside == 0 {
		return 0
	}
	if inside == total {
		return small.volume
	}
	return small.volume * float64(inside) / float64(total)
}

func boxesOverlap(a, b sdf.Box3) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y &&
		a.Min.Z <= b.Max.Z && b.Min.Z <= a.Max.Z
}

func boxVolume(b sdf.Box3) float64 {
	s := b.Max.Sub(b.Min)
	return s.X * s.Y * s.Z
}

func inBox(b sdf.Box3, p v3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// profileBounds returns the 2D bounding box of pts.
func profileBounds(pts []geom.Vec2) (min, max geom.Vec2) {
	min, max = pts[0], pts[0]
	for _, p := range pts[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}
