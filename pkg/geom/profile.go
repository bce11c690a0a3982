package geom

import (
	"fmt"
	"strings"
)

// Connection describes the edge that leaves a point towards the next one.
type Connection int

const (
	Straight    Connection = iota // line segment
	Spline                        // interpolating cubic through the run of spline points
	CircularArc                   // three-point arc, consumes the following point as its midpoint
)

func (c Connection) String() string {
	switch c {
	case Straight:
		return "straight"
	case Spline:
		return "spline"
	case CircularArc:
		return "circle"
	default:
		return fmt.Sprintf("Connection(%d)", int(c))
	}
}

// Valid reports whether c is one of the known connection kinds.
func (c Connection) Valid() bool {
	return c == Straight || c == Spline || c == CircularArc
}

// ParseConnection converts a connection name to a Connection.
// "arc" is accepted as an alias of "circle".
func ParseConnection(s string) (Connection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight":
		return Straight, nil
	case "spline":
		return Spline, nil
	case "circle", "arc":
		return CircularArc, nil
	}
	return 0, fmt.Errorf("%w: unrecognized connection %q", ErrInvalidParameter, s)
}

// Point is a profile vertex tagged with the kind of its outgoing edge.
type Point struct {
	Vec2
	Conn Connection `json:"connection" yaml:"connection"`
}

// P builds a Point.
func P(x, y float64, c Connection) Point {
	return Point{Vec2: Vec2{X: x, Y: y}, Conn: c}
}

// Profile is an ordered, implicitly closed sequence of points. The order
// defines winding and adjacency and is never rearranged.
type Profile []Point

// Uniform tags every point of pts with the same connection.
func Uniform(pts []Vec2, c Connection) Profile {
	p := make(Profile, len(pts))
	for i, v := range pts {
		p[i] = Point{Vec2: v, Conn: c}
	}
	return p
}

// Vecs returns the coordinates of p without their tags.
func (p Profile) Vecs() []Vec2 {
	out := make([]Vec2, len(p))
	for i, pt := range p {
		out[i] = pt.Vec2
	}
	return out
}

// Clone returns a copy of p that shares no storage with it.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	copy(out, p)
	return out
}

// Validate checks the structural invariants of a profile: at least three
// points and only known connection tags. It does not look at the geometry.
func (p Profile) Validate() error {
	if len(p) < 3 {
		return fmt.Errorf("%w: profile needs at least 3 points, got %d", ErrInvalidParameter, len(p))
	}
	for i, pt := range p {
		if !pt.Conn.Valid() {
			return fmt.Errorf("%w: point %d has unrecognized connection %s", ErrInvalidParameter, i, pt.Conn)
		}
	}
	return nil
}
