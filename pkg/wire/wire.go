// Package wire turns a tagged point profile into a closed sequence of typed
// edges and samples those edges into a polygon for the kernel.
package wire

import (
	"errors"
	"fmt"

	"github.com/chazu/paracore/pkg/geom"
)

// ErrDegenerateArc is returned when the three points of an arc edge are
// collinear or coincident.
var ErrDegenerateArc = errors.New("degenerate arc")

// Kind is the geometric type of an edge.
type Kind int

const (
	Line Kind = iota
	Spline
	Arc
)

func (k Kind) String() string {
	switch k {
	case Line:
		return "line"
	case Spline:
		return "spline"
	case Arc:
		return "arc"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Edge is one segment of a wire.
//
// A Line has two points. An Arc has three: start, a point on the arc, end.
// A Spline interpolates all of its points in order; when Closed is set it is
// periodic and the last point joins back to the first.
type Edge struct {
	Kind   Kind
	Points []geom.Vec2
	Closed bool
}

// Start returns the first point of the edge.
func (e Edge) Start() geom.Vec2 { return e.Points[0] }

// End returns the last point of the edge. For a closed spline that is the
// start point.
func (e Edge) End() geom.Vec2 {
	if e.Closed {
		return e.Points[0]
	}
	return e.Points[len(e.Points)-1]
}

// Wire is a closed loop of edges. Each edge ends where the next begins and
// the last edge ends at the start of the first.
type Wire struct {
	Edges []Edge
}

// Connect builds the wire for a profile.
//
// A Straight point is joined to its successor by a line. A maximal run of
// Spline points becomes one spline edge through the run that ends on the
// first point after it. A CircularArc point starts an arc through the next
// point (which must also be CircularArc) ending on the point after that.
// The last point always connects back to the first. A profile tagged Spline
// throughout becomes a single periodic spline.
//
// Connect does no geometric checking; self-intersection and zero area are
// the kernel's to report.
func Connect(p geom.Profile) (*Wire, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	n := len(p)
	at := func(i int) geom.Vec2 { return p[i%n].Vec2 }

	if allTagged(p, geom.Spline) {
		return &Wire{Edges: []Edge{{Kind: Spline, Points: p.Vecs(), Closed: true}}}, nil
	}

	w := &Wire{}
	for i := 0; i < n; {
		switch p[i].Conn {
		case geom.Straight:
			w.Edges = append(w.Edges, Edge{Kind: Line, Points: []geom.Vec2{at(i), at(i + 1)}})
			i++
		case geom.Spline:
			j := i
			var pts []geom.Vec2
			for j < n && p[j].Conn == geom.Spline {
				pts = append(pts, p[j].Vec2)
				j++
			}
			pts = append(pts, at(j))
			w.Edges = append(w.Edges, Edge{Kind: Spline, Points: pts})
			i = j
		case geom.CircularArc:
			if i+1 >= n || p[i+1].Conn != geom.CircularArc {
				return nil, fmt.Errorf("%w: arc starting at point %d needs a circle-tagged midpoint", geom.ErrInvalidParameter, i)
			}
			w.Edges = append(w.Edges, Edge{Kind: Arc, Points: []geom.Vec2{at(i), at(i + 1), at(i + 2)}})
			i += 2
		}
	}
	return w, nil
}

func allTagged(p geom.Profile, c geom.Connection) bool {
	for _, pt := range p {
		if pt.Conn != c {
			return false
		}
	}
	return true
}

// Polyline samples the wire into a closed polygon. Each spline span is cut
// into splineSegments pieces and each arc into arcSegments pieces; lines
// contribute their start point only. The closing point is not repeated.
func (w *Wire) Polyline(splineSegments, arcSegments int) ([]geom.Vec2, error) {
	if splineSegments < 1 || arcSegments < 1 {
		return nil, fmt.Errorf("%w: segment counts must be positive (spline=%d arc=%d)",
			geom.ErrInvalidParameter, splineSegments, arcSegments)
	}
	var out []geom.Vec2
	for i, e := range w.Edges {
		switch e.Kind {
		case Line:
			out = append(out, e.Points[0])
		case Spline:
			if e.Closed {
				out = append(out, sampleClosedSpline(e.Points, splineSegments)...)
			} else {
				out = append(out, sampleOpenSpline(e.Points, splineSegments)...)
			}
		case Arc:
			pts, err := sampleArc(e.Points[0], e.Points[1], e.Points[2], arcSegments)
			if err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			out = append(out, pts...)
		default:
			return nil, fmt.Errorf("edge %d: unknown kind %s", i, e.Kind)
		}
	}
	return out, nil
}
