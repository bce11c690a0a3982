package shape

import (
	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/profile"
)

// NewRotateStraight revolves a polygon of straight edges.
func NewRotateStraight(name string, pts []geom.Vec2, opts ...Option) *Shape {
	return New(name, Points{Profile: geom.Uniform(pts, geom.Straight)}, opts...)
}

// NewRotateSpline revolves the closed spline through pts.
func NewRotateSpline(name string, pts []geom.Vec2, opts ...Option) *Shape {
	return New(name, Points{Profile: geom.Uniform(pts, geom.Spline)}, opts...)
}

// NewRotateMixed revolves a profile with per-point connection tags.
func NewRotateMixed(name string, p geom.Profile, opts ...Option) *Shape {
	return New(name, Points{Profile: p}, opts...)
}

func extrudeOpts(distance float64, opts []Option) []Option {
	return append([]Option{WithMode(Extrude), WithDistance(distance)}, opts...)
}

// NewExtrudeStraight extrudes a polygon of straight edges by distance.
func NewExtrudeStraight(name string, pts []geom.Vec2, distance float64, opts ...Option) *Shape {
	return New(name, Points{Profile: geom.Uniform(pts, geom.Straight)}, extrudeOpts(distance, opts)...)
}

// NewExtrudeSpline extrudes the closed spline through pts by distance.
func NewExtrudeSpline(name string, pts []geom.Vec2, distance float64, opts ...Option) *Shape {
	return New(name, Points{Profile: geom.Uniform(pts, geom.Spline)}, extrudeOpts(distance, opts)...)
}

// NewExtrudeMixed extrudes a profile with per-point connection tags.
func NewExtrudeMixed(name string, p geom.Profile, distance float64, opts ...Option) *Shape {
	return New(name, Points{Profile: p}, extrudeOpts(distance, opts)...)
}

// NewTruncatedTriangle revolves a truncated triangle, the usual cross
// section of a poloidal field coil.
func NewTruncatedTriangle(name string, p profile.TriangleParams, opts ...Option) *Shape {
	if name == "" {
		name = "truncated_tri"
	}
	return New(name, Triangle{TriangleParams: p},
		append([]Option{WithMaterialTag("truncated_tri_mat")}, opts...)...)
}

// CoilBlue is the default color of toroidal field coils.
var CoilBlue = [4]float64{0, 0, 1, 1}

// NewToroidalFieldCoil extrudes Princeton-D coils of the given toroidal
// width and places them around the machine.
func NewToroidalFieldCoil(name string, c Coil, distance float64, opts ...Option) *Shape {
	if name == "" {
		name = "tf_coil"
	}
	return New(name, c, append([]Option{WithColor(CoilBlue)}, extrudeOpts(distance, opts)...)...)
}
