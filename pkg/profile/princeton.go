package profile

import (
	"fmt"
	"math"

	"github.com/chazu/paracore/pkg/geom"
)

// DefaultCurveSamples is the number of samples along each half of a D curve.
const DefaultCurveSamples = 21

// DParams describes a constant-tension (Princeton-D) toroidal field coil.
type DParams struct {
	R1                   float64 `json:"r1" yaml:"r1"`               // inner leg radius
	R2                   float64 `json:"r2" yaml:"r2"`               // outboard radius of the inner curve
	Thickness            float64 `json:"thickness" yaml:"thickness"` // radial build of the winding pack
	VerticalDisplacement float64 `json:"vertical_displacement" yaml:"vertical_displacement"`
	Samples              int     `json:"samples,omitempty" yaml:"samples,omitempty"` // per half curve, 0 = DefaultCurveSamples
}

// Curve is the solved D shape. Inner runs from the top of the inner leg over
// the crown to the outboard midplane and back under to the bottom of the
// leg. Outer is Inner offset outwards along the exact normals by the
// thickness, in the same order.
type Curve struct {
	Inner     []geom.Vec2
	Outer     []geom.Vec2
	LegTop    float64 // z of the inner leg's upper end, displacement included
	LegBottom float64
	LegInner  float64 // radius of the leg face nearest the axis (R1)
	LegOuter  float64 // R1 + thickness
}

// PrincetonD solves the D curve whose curvature is inversely proportional to
// the radius, z'' = -(1+z'^2)^(3/2) / (k r) with k = ln(R2/Ri)/2, where Ri is
// R1 + thickness. The curve is parameterized by the tangent angle psi:
//
//	r(psi) = R0 exp(k sin psi),  z(psi) = z0 - R0 k ∫0^psi sin t exp(k sin t) dt
//
// with R0 = sqrt(Ri R2) and z0 chosen so that z(pi/2) = 0. The integrals are
// evaluated with adaptive quadrature; failure to converge is reported as
// ErrNotConverged.
func PrincetonD(p DParams) (Curve, error) {
	if p.R1 <= 0 || p.R2 <= 0 || p.Thickness <= 0 {
		return Curve{}, fmt.Errorf("%w: radii and thickness must be positive (r1=%g r2=%g thickness=%g)",
			geom.ErrInvalidParameter, p.R1, p.R2, p.Thickness)
	}
	ri := p.R1 + p.Thickness
	if p.R2 <= ri {
		return Curve{}, fmt.Errorf("%w: r2 (%g) must exceed r1 + thickness (%g)",
			geom.ErrInvalidParameter, p.R2, ri)
	}
	n := p.Samples
	if n == 0 {
		n = DefaultCurveSamples
	}
	if n < 3 {
		return Curve{}, fmt.Errorf("%w: need at least 3 samples per half curve, got %d", geom.ErrInvalidParameter, n)
	}

	r0 := math.Sqrt(ri * p.R2)
	k := 0.5 * math.Log(p.R2/ri)
	g := func(t float64) float64 { return math.Sin(t) * math.Exp(k*math.Sin(t)) }

	crown, err := integrate(g, 0, math.Pi/2)
	if err != nil {
		return Curve{}, fmt.Errorf("princeton-d crown height: %w", err)
	}
	z0 := r0 * k * crown

	upperIn := make([]geom.Vec2, n)
	upperOut := make([]geom.Vec2, n)
	for j := 0; j < n; j++ {
		psi := -math.Pi/2 + math.Pi*float64(j)/float64(n-1)
		acc, err := integrate(g, 0, psi)
		if err != nil {
			return Curve{}, fmt.Errorf("princeton-d sample %d: %w", j, err)
		}
		pt := geom.Vec2{X: r0 * math.Exp(k*math.Sin(psi)), Y: z0 - r0*k*acc}
		sin, cos := math.Sincos(psi)
		upperIn[j] = pt
		upperOut[j] = pt.Add(geom.Vec2{X: sin, Y: cos}.Scale(p.Thickness))
	}
	// The end samples sit on the exact analytic values.
	upperIn[0].X = ri
	upperIn[n-1] = geom.Vec2{X: p.R2, Y: 0}
	upperOut[0].X = p.R1
	upperOut[n-1] = geom.Vec2{X: p.R2 + p.Thickness, Y: 0}

	c := Curve{
		Inner:     mirrorHalf(upperIn, p.VerticalDisplacement),
		Outer:     mirrorHalf(upperOut, p.VerticalDisplacement),
		LegTop:    upperIn[0].Y + p.VerticalDisplacement,
		LegBottom: -upperIn[0].Y + p.VerticalDisplacement,
		LegInner:  p.R1,
		LegOuter:  ri,
	}
	return c, nil
}

// mirrorHalf closes an upper half curve with its reflection in z = 0 and
// shifts the result by dz. The midplane sample is shared.
func mirrorHalf(upper []geom.Vec2, dz float64) []geom.Vec2 {
	n := len(upper)
	out := make([]geom.Vec2, 0, 2*n-1)
	for _, p := range upper {
		out = append(out, geom.Vec2{X: p.X, Y: p.Y + dz})
	}
	for j := n - 2; j >= 0; j-- {
		out = append(out, geom.Vec2{X: upper[j].X, Y: -upper[j].Y + dz})
	}
	return out
}

// CoilProfiles splits a solved curve into the straight inner-leg rectangle
// and the D-shaped ring. The ring follows Inner with spline edges, steps
// across the thickness at the bottom of the leg, returns along Outer with
// spline edges and closes across the top of the leg.
func CoilProfiles(c Curve) (leg, ring geom.Profile) {
	leg = geom.Uniform([]geom.Vec2{
		{X: c.LegInner, Y: c.LegTop},
		{X: c.LegInner, Y: c.LegBottom},
		{X: c.LegOuter, Y: c.LegBottom},
		{X: c.LegOuter, Y: c.LegTop},
	}, geom.Straight)

	ring = make(geom.Profile, 0, len(c.Inner)+len(c.Outer))
	ring = append(ring, geom.Uniform(c.Inner, geom.Spline)...)
	ring[len(ring)-1].Conn = geom.Straight
	for i := len(c.Outer) - 1; i >= 0; i-- {
		ring = append(ring, geom.Point{Vec2: c.Outer[i], Conn: geom.Spline})
	}
	ring[len(ring)-1].Conn = geom.Straight
	return leg, ring
}
