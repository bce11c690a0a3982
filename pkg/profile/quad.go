package profile

import (
	"errors"
	"math"
)

// ErrNotConverged is returned when a curve solver cannot reach its
// tolerance. It is distinct from invalid parameters and from kernel
// geometry failures.
var ErrNotConverged = errors.New("curve solver did not converge")

const (
	quadTolerance = 1e-11
	quadMaxDepth  = 40
)

// integrate computes the integral of f over [a, b] with adaptive Simpson
// quadrature. It reports ErrNotConverged when a subinterval still misses
// the tolerance at the maximum depth or the result is not finite.
func integrate(f func(float64) float64, a, b float64) (float64, error) {
	if a == b {
		return 0, nil
	}
	fa, fb := f(a), f(b)
	m := (a + b) / 2
	fm := f(m)
	whole := simpson(a, b, fa, fm, fb)
	tol := quadTolerance * math.Max(1, math.Abs(whole))
	v, err := adaptiveSimpson(f, a, b, fa, fm, fb, whole, tol, quadMaxDepth)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotConverged
	}
	return v, nil
}

func simpson(a, b, fa, fm, fb float64) float64 {
	return (b - a) / 6 * (fa + 4*fm + fb)
}

func adaptiveSimpson(f func(float64) float64, a, b, fa, fm, fb, whole, tol float64, depth int) (float64, error) {
	m := (a + b) / 2
	lm, rm := (a+m)/2, (m+b)/2
	flm, frm := f(lm), f(rm)
	left := simpson(a, m, fa, flm, fm)
	right := simpson(m, b, fm, frm, fb)
	delta := left + right - whole
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0, ErrNotConverged
	}
	if math.Abs(delta) <= 15*tol {
		return left + right + delta/15, nil
	}
	if depth <= 0 {
		return 0, ErrNotConverged
	}
	l, err := adaptiveSimpson(f, a, m, fa, flm, fm, left, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	r, err := adaptiveSimpson(f, m, b, fm, frm, fb, right, tol/2, depth-1)
	if err != nil {
		return 0, err
	}
	return l + r, nil
}
