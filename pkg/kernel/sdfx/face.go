package sdfx

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
)

// face is a simple polygon in the profile plane, stored counter-clockwise.
type face struct {
	poly     []geom.Vec2
	s        sdf.SDF2
	area     float64
	moment   float64 // first moment about the revolution axis, the integral of x dA
	min, max geom.Vec2
	pointMin float64 // smallest x among the wire's defining points
}

func (f *face) Area() float64                 { return f.area }
func (f *face) Bounds() (min, max geom.Vec2) { return f.min, f.max }

// scale is the largest extent of the face, used to make tolerances
// relative.
func (f *face) scale() float64 {
	return math.Max(f.max.X-f.min.X, f.max.Y-f.min.Y)
}

func newFace(pts []geom.Vec2) (*face, error) {
	if len(pts) < 3 {
		return nil, kernel.NewGeometryError("make_face", "wire has %d vertices, need at least 3", len(pts))
	}
	min, max := profileBounds(pts)
	scale := math.Max(max.X-min.X, max.Y-min.Y)
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, kernel.NewGeometryError("make_face", "wire has no extent")
	}

	n := len(pts)
	for i := range pts {
		if pts[i].Dist(pts[(i+1)%n]) <= 1e-9*scale {
			return nil, kernel.NewGeometryError("make_face", "zero-length edge at vertex %d", i)
		}
	}

	area, moment := polygonMoments(pts)
	if math.Abs(area) <= 1e-12*scale*scale {
		return nil, kernel.NewGeometryError("make_face", "zero area")
	}
	if i, j, ok := selfIntersection(pts, scale); ok {
		return nil, kernel.NewGeometryError("make_face", "self-intersecting wire (segments %d and %d)", i, j)
	}

	poly := make([]geom.Vec2, n)
	copy(poly, pts)
	if area < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			poly[i], poly[j] = poly[j], poly[i]
		}
		area, moment = -area, -moment
	}

	verts := make([]v2.Vec, n)
	for i, p := range poly {
		verts[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, &kernel.GeometryError{Op: "make_face", Reason: "sdf polygon failed", Err: err}
	}
	return &face{poly: poly, s: s, area: area, moment: moment, min: min, max: max}, nil
}

// clipToAxis returns the part of f at x >= 0. Sampled splines can bulge
// across the axis even when every defining point lies on or right of it.
func (f *face) clipToAxis() (*face, error) {
	g, err := newFace(clipHalfPlane(f.poly, 1e-9*f.scale()))
	if err != nil {
		return nil, err
	}
	g.pointMin = f.pointMin
	return g, nil
}

// clipHalfPlane clips a polygon to x >= 0 (Sutherland-Hodgman) and drops
// the repeated vertices a clip through an existing vertex leaves behind.
func clipHalfPlane(pts []geom.Vec2, eps float64) []geom.Vec2 {
	n := len(pts)
	clipped := make([]geom.Vec2, 0, n+2)
	for i := range pts {
		p, q := pts[i], pts[(i+1)%n]
		pIn, qIn := p.X >= 0, q.X >= 0
		if pIn {
			clipped = append(clipped, p)
		}
		if pIn != qIn {
			t := p.X / (p.X - q.X)
			clipped = append(clipped, geom.Vec2{X: 0, Y: p.Y + t*(q.Y-p.Y)})
		}
	}

	out := make([]geom.Vec2, 0, len(clipped))
	for _, p := range clipped {
		if len(out) > 0 && out[len(out)-1].Dist(p) <= eps {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0].Dist(out[len(out)-1]) <= eps {
		out = out[:len(out)-1]
	}
	return out
}

// polygonMoments returns the signed area of the polygon and its signed
// first moment about the y axis. Both are positive for counter-clockwise
// polygons.
func polygonMoments(pts []geom.Vec2) (area, moment float64) {
	n := len(pts)
	for i := range pts {
		p, q := pts[i], pts[(i+1)%n]
		c := p.Cross(q)
		area += c
		moment += (p.X + q.X) * c
	}
	return area / 2, moment / 6
}

// selfIntersection reports the first pair of polygon segments that touch
// other than at a shared vertex. Adjacent segments only count when they
// fold back onto each other.
func selfIntersection(pts []geom.Vec2, scale float64) (int, int, bool) {
	n := len(pts)
	eps := 1e-12 * scale * scale
	for i := 0; i < n; i++ {
		a, b := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			c, d := pts[j], pts[(j+1)%n]
			switch {
			case j == i+1:
				if foldsBack(a, b, d, eps) {
					return i, j, true
				}
			case i == 0 && j == n-1:
				if foldsBack(c, a, b, eps) {
					return i, j, true
				}
			default:
				if segmentsTouch(a, b, c, d, eps) {
					return i, j, true
				}
			}
		}
	}
	return 0, 0, false
}

// foldsBack reports whether the path a -> b -> c reverses along a line.
func foldsBack(a, b, c geom.Vec2, eps float64) bool {
	u, v := b.Sub(a), c.Sub(b)
	return math.Abs(u.Cross(v)) <= eps && u.X*v.X+u.Y*v.Y < 0
}

func segmentsTouch(a, b, c, d geom.Vec2, eps float64) bool {
	if math.Max(a.X, b.X) < math.Min(c.X, d.X) || math.Max(c.X, d.X) < math.Min(a.X, b.X) ||
		math.Max(a.Y, b.Y) < math.Min(c.Y, d.Y) || math.Max(c.Y, d.Y) < math.Min(a.Y, b.Y) {
		return false
	}
	d1 := orient(c, d, a, eps)
	d2 := orient(c, d, b, eps)
	d3 := orient(a, b, c, eps)
	d4 := orient(a, b, d, eps)
	if d1*d2 < 0 && d3*d4 < 0 {
		return true
	}
	return (d1 == 0 && onSegment(c, d, a)) ||
		(d2 == 0 && onSegment(c, d, b)) ||
		(d3 == 0 && onSegment(a, b, c)) ||
		(d4 == 0 && onSegment(a, b, d))
}

// orient returns the sign of the turn p -> q -> r.
func orient(p, q, r geom.Vec2, eps float64) int {
	v := q.Sub(p).Cross(r.Sub(p))
	switch {
	case v > eps:
		return 1
	case v < -eps:
		return -1
	}
	return 0
}

// onSegment reports whether r, known to be collinear with p and q, lies
// within their bounding box.
func onSegment(p, q, r geom.Vec2) bool {
	return r.X <= math.Max(p.X, q.X) && r.X >= math.Min(p.X, q.X) &&
		r.Y <= math.Max(p.Y, q.Y) && r.Y >= math.Min(p.Y, q.Y)
}
