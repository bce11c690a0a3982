// Package profile generates the 2D point profiles of the parametric shape
// families. Generators are pure functions of their parameters.
package profile

import "github.com/chazu/paracore/pkg/geom"

// TriangleParams describes a truncated triangle (trapezoid) cross section,
// typically a poloidal field coil.
type TriangleParams struct {
	Length1    float64   `json:"length_1" yaml:"length_1"`       // top edge width
	Length2    float64   `json:"length_2" yaml:"length_2"`       // bottom edge width
	Length3    float64   `json:"length_3" yaml:"length_3"`       // height, measured downwards from the pivot
	Pivot      geom.Vec2 `json:"pivot" yaml:"pivot"`             // (x, z) centre of the top edge and of rotation
	PivotAngle float64   `json:"pivot_angle" yaml:"pivot_angle"` // degrees, counter-clockwise
}

// TruncatedTriangle returns the four corners of the trapezoid rotated about
// the pivot. Lengths are not validated: non-positive values produce a
// self-intersecting or zero-area profile that the kernel rejects.
func TruncatedTriangle(p TriangleParams) geom.Profile {
	px, pz := p.Pivot.X, p.Pivot.Y
	corners := []geom.Vec2{
		{X: px + p.Length1/2, Y: pz},
		{X: px - p.Length1/2, Y: pz},
		{X: px - p.Length2/2, Y: pz - p.Length3},
		{X: px + p.Length2/2, Y: pz - p.Length3},
	}
	for i, c := range corners {
		corners[i] = geom.Rotate(p.Pivot, c, p.PivotAngle)
	}
	return geom.Uniform(corners, geom.Straight)
}
