package geom

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned when a shape parameter is rejected before
// any kernel call: non-positive lengths or counts, short profiles,
// unrecognized connection tags.
var ErrInvalidParameter = errors.New("invalid parameter")

// Vec2 is a point or vector in the profile plane.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns a + b.
func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a.X + b.X, a.Y + b.Y} }

// Sub returns a - b.
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a.X - b.X, a.Y - b.Y} }

// Scale returns a * k.
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }

// Dist returns the euclidean distance between a and b.
func (a Vec2) Dist(b Vec2) float64 { return math.Hypot(a.X-b.X, a.Y-b.Y) }

// Cross returns the z component of the 3D cross product a x b.
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }

func (a Vec2) String() string {
	return fmt.Sprintf("(%g, %g)", a.X, a.Y)
}

// Rotate rotates p about origin by deg degrees counter-clockwise.
func Rotate(origin, p Vec2, deg float64) Vec2 {
	rad := deg * math.Pi / 180.0
	s, c := math.Sincos(rad)
	dx, dy := p.X-origin.X, p.Y-origin.Y
	return Vec2{
		X: origin.X + dx*c - dy*s,
		Y: origin.Y + dx*s + dy*c,
	}
}
