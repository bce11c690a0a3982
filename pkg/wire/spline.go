package wire

import "github.com/chazu/paracore/pkg/geom"

// sampleOpenSpline samples the natural C2 cubic through pts. The result
// starts at pts[0] and stops one step short of the last point, which
// belongs to the next edge.
func sampleOpenSpline(pts []geom.Vec2, segs int) []geom.Vec2 {
	m := len(pts) - 1
	if m < 2 {
		return []geom.Vec2{pts[0]}
	}
	d := naturalTangents(pts)
	out := make([]geom.Vec2, 0, m*segs)
	for i := 0; i < m; i++ {
		out = appendHermite(out, pts[i], pts[i+1], d[i], d[i+1], segs)
	}
	return out
}

// sampleClosedSpline samples the periodic C2 cubic through pts.
func sampleClosedSpline(pts []geom.Vec2, segs int) []geom.Vec2 {
	n := len(pts)
	d := periodicTangents(pts)
	out := make([]geom.Vec2, 0, n*segs)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		out = appendHermite(out, pts[i], pts[j], d[i], d[j], segs)
	}
	return out
}

// appendHermite appends samples t = k/segs, k in [0, segs), of the cubic
// Hermite segment from p0 to p1 with end tangents d0 and d1.
func appendHermite(out []geom.Vec2, p0, p1, d0, d1 geom.Vec2, segs int) []geom.Vec2 {
	for k := 0; k < segs; k++ {
		t := float64(k) / float64(segs)
		t2, t3 := t*t, t*t*t
		h00 := 2*t3 - 3*t2 + 1
		h10 := t3 - 2*t2 + t
		h01 := -2*t3 + 3*t2
		h11 := t3 - t2
		out = append(out, geom.Vec2{
			X: h00*p0.X + h10*d0.X + h01*p1.X + h11*d1.X,
			Y: h00*p0.Y + h10*d0.Y + h01*p1.Y + h11*d1.Y,
		})
	}
	return out
}

// naturalTangents solves the tridiagonal system for the tangents of the
// natural cubic spline (zero second derivative at both ends) with uniform
// parameter spacing.
func naturalTangents(q []geom.Vec2) []geom.Vec2 {
	m := len(q) - 1
	sub := make([]float64, m+1)
	diag := make([]float64, m+1)
	sup := make([]float64, m+1)
	rx := make([]float64, m+1)
	ry := make([]float64, m+1)

	diag[0], sup[0] = 2, 1
	rx[0], ry[0] = 3*(q[1].X-q[0].X), 3*(q[1].Y-q[0].Y)
	for i := 1; i < m; i++ {
		sub[i], diag[i], sup[i] = 1, 4, 1
		rx[i] = 3 * (q[i+1].X - q[i-1].X)
		ry[i] = 3 * (q[i+1].Y - q[i-1].Y)
	}
	sub[m], diag[m] = 1, 2
	rx[m], ry[m] = 3*(q[m].X-q[m-1].X), 3*(q[m].Y-q[m-1].Y)

	dx := solveTridiagonal(sub, diag, sup, rx)
	dy := solveTridiagonal(sub, diag, sup, ry)
	return zipVecs(dx, dy)
}

// periodicTangents solves the cyclic system D[i-1] + 4 D[i] + D[i+1] =
// 3 (q[i+1] - q[i-1]) with indices taken modulo len(q).
func periodicTangents(q []geom.Vec2) []geom.Vec2 {
	n := len(q)
	rx := make([]float64, n)
	ry := make([]float64, n)
	for i := range q {
		next, prev := q[(i+1)%n], q[(i+n-1)%n]
		rx[i] = 3 * (next.X - prev.X)
		ry[i] = 3 * (next.Y - prev.Y)
	}
	return zipVecs(solveCyclic(n, rx), solveCyclic(n, ry))
}

func zipVecs(xs, ys []float64) []geom.Vec2 {
	out := make([]geom.Vec2, len(xs))
	for i := range xs {
		out[i] = geom.Vec2{X: xs[i], Y: ys[i]}
	}
	return out
}

// solveTridiagonal runs the Thomas algorithm. sub[0] and sup[len-1] are
// ignored. The inputs are not modified.
func solveTridiagonal(sub, diag, sup, r []float64) []float64 {
	n := len(diag)
	c := make([]float64, n)
	x := make([]float64, n)
	c[0] = sup[0] / diag[0]
	x[0] = r[0] / diag[0]
	for i := 1; i < n; i++ {
		den := diag[i] - sub[i]*c[i-1]
		if i < n-1 {
			c[i] = sup[i] / den
		}
		x[i] = (r[i] - sub[i]*x[i-1]) / den
	}
	for i := n - 2; i >= 0; i-- {
		x[i] -= c[i] * x[i+1]
	}
	return x
}

// solveCyclic solves the periodic system with unit off-diagonals and 4 on
// the diagonal (n >= 3) using the Sherman-Morrison correction of a plain
// tridiagonal solve.
func solveCyclic(n int, r []float64) []float64 {
	const alpha, beta = 1.0, 1.0 // corner entries A[n-1][0] and A[0][n-1]
	sub := make([]float64, n)
	diag := make([]float64, n)
	sup := make([]float64, n)
	for i := range diag {
		sub[i], diag[i], sup[i] = 1, 4, 1
	}
	gamma := -diag[0]
	diag[0] -= gamma
	diag[n-1] -= alpha * beta / gamma

	x := solveTridiagonal(sub, diag, sup, r)
	u := make([]float64, n)
	u[0] = gamma
	u[n-1] = alpha
	z := solveTridiagonal(sub, diag, sup, u)

	fact := (x[0] + beta*x[n-1]/gamma) / (1 + z[0] + beta*z[n-1]/gamma)
	for i := range x {
		x[i] -= fact * z[i]
	}
	return x
}
