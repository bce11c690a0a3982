package wire

import (
	"fmt"
	"math"

	"github.com/chazu/paracore/pkg/geom"
)

// sampleArc samples the circle through a, mid and b from a towards b,
// passing through mid. The end point is left to the next edge.
func sampleArc(a, mid, b geom.Vec2, segs int) ([]geom.Vec2, error) {
	c, r, err := circumcircle(a, mid, b)
	if err != nil {
		return nil, err
	}
	ta := math.Atan2(a.Y-c.Y, a.X-c.X)
	tm := math.Atan2(mid.Y-c.Y, mid.X-c.X)
	tb := math.Atan2(b.Y-c.Y, b.X-c.X)

	// Sweep counter-clockwise if mid lies on the ccw path from a to b,
	// otherwise clockwise.
	sweep := normAngle(tb - ta)
	if normAngle(tm-ta) > sweep {
		sweep -= 2 * math.Pi
	}
	out := make([]geom.Vec2, 0, segs)
	for k := 0; k < segs; k++ {
		t := ta + sweep*float64(k)/float64(segs)
		s, co := math.Sincos(t)
		out = append(out, geom.Vec2{X: c.X + r*co, Y: c.Y + r*s})
	}
	return out, nil
}

// normAngle maps an angle into [0, 2pi).
func normAngle(t float64) float64 {
	t = math.Mod(t, 2*math.Pi)
	if t < 0 {
		t += 2 * math.Pi
	}
	return t
}

func circumcircle(a, b, c geom.Vec2) (geom.Vec2, float64, error) {
	ab, ac := b.Sub(a), c.Sub(a)
	d := 2 * ab.Cross(ac)
	scale := math.Max(ab.X*ab.X+ab.Y*ab.Y, ac.X*ac.X+ac.Y*ac.Y)
	if scale == 0 || math.Abs(d) <= 1e-12*scale {
		return geom.Vec2{}, 0, fmt.Errorf("%w: points %v %v %v are collinear", ErrDegenerateArc, a, b, c)
	}
	ab2 := ab.X*ab.X + ab.Y*ab.Y
	ac2 := ac.X*ac.X + ac.Y*ac.Y
	ux := (ac.Y*ab2 - ab.Y*ac2) / d
	uy := (ab.X*ac2 - ac.X*ab2) / d
	center := geom.Vec2{X: a.X + ux, Y: a.Y + uy}
	return center, math.Hypot(ux, uy), nil
}
