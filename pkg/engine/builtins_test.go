package engine

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel/kerneltest"
	"github.com/chazu/paracore/pkg/kernel/sdfx"
	"github.com/chazu/paracore/pkg/shape"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(tf-coil :r1 100)`,
			expect: `(tf_coil "__kw_r1" 100)`,
		},
		{
			name:   "multiple keywords",
			input:  `(extrude-straight :points p :distance 20)`,
			expect: `(extrude_straight "__kw_points" p "__kw_distance" 20)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :x a-b`",
			expect: "`raw :x a-b`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative number preserved",
			input:  `[-5 0]`,
			expect: `[-5 0]`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen and digit in keyword preserved",
			input:  `:length-1`,
			expect: `"__kw_length-1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Shape forms
// ---------------------------------------------------------------------------

func evaluate(t *testing.T, source string, opts ...Option) *shape.Assembly {
	t.Helper()
	a, evalErrs, err := NewEngine(opts...).Evaluate(source)
	require.NoError(t, err)
	require.Empty(t, evalErrs)
	require.NotNil(t, a)
	return a
}

func lookup(t *testing.T, a *shape.Assembly, name string) *shape.Shape {
	t.Helper()
	s, ok := a.Shape(name)
	require.True(t, ok, "shape %q", name)
	return s
}

func TestRotateStraightForm(t *testing.T) {
	a := evaluate(t, `
(def inner 10)
(rotate-straight "blanket"
  :points [[inner 0] [20 0] [20 10] [inner 10]]
  :rotation-angle 180
  :color [1 0 0]
  :material-tag "eurofer")
`)
	s := lookup(t, a, "blanket")
	assert.Equal(t, shape.Rotate, s.Mode())
	assert.Equal(t, 180.0, s.RotationAngle())
	assert.Equal(t, [4]float64{1, 0, 0, 1}, s.Color())
	assert.Equal(t, "eurofer", s.MaterialTag())

	p, err := s.Points()
	require.NoError(t, err)
	assert.Equal(t, geom.Uniform([]geom.Vec2{{X: 10}, {X: 20}, {X: 20, Y: 10}, {X: 10, Y: 10}}, geom.Straight), p)

	v, err := s.Volume()
	require.NoError(t, err)
	assert.InDelta(t, math.Pi*15*100, v, 1e-6)
}

func TestSplineAndMixedForms(t *testing.T) {
	a := evaluate(t, `
(rotate-spline "s" :points [[10 0] [20 5] [10 10]])
(rotate-mixed "m" :points [[10 0 :straight] [20 0 :circle] [25 5 :circle] [20 10] [10 10 :spline]])
(extrude-mixed "e" :points [[0 0] [5 0 :spline] [5 5] [0 5]] :distance 3)
`)
	s, err := lookup(t, a, "s").Points()
	require.NoError(t, err)
	for _, pt := range s {
		assert.Equal(t, geom.Spline, pt.Conn)
	}

	m, err := lookup(t, a, "m").Points()
	require.NoError(t, err)
	conns := make([]geom.Connection, len(m))
	for i, pt := range m {
		conns[i] = pt.Conn
	}
	assert.Equal(t, []geom.Connection{geom.Straight, geom.CircularArc, geom.CircularArc, geom.Straight, geom.Spline}, conns)

	e := lookup(t, a, "e")
	assert.Equal(t, shape.Extrude, e.Mode())
	assert.Equal(t, 3.0, e.Distance())
}

func TestExtrudeStraightForm(t *testing.T) {
	a := evaluate(t, `(extrude-straight "port" :points [[25 0] [30 0] [30 5] [25 5]] :distance 2 :azimuth [0 90])`)
	s := lookup(t, a, "port")
	assert.Equal(t, shape.Extrude, s.Mode())
	angles, err := s.AzimuthPlacementAngles()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 90}, angles)

	v, err := s.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 2*25*2, v, 1e-6)
}

func TestTruncatedTriangleForm(t *testing.T) {
	a := evaluate(t, `(truncated-triangle "pf" :length-1 4 :length-2 6 :length-3 2 :pivot [30 20] :pivot-angle 15)`)
	s := lookup(t, a, "pf")
	tri, ok := s.Params().(shape.Triangle)
	require.True(t, ok)
	assert.Equal(t, 4.0, tri.Length1)
	assert.Equal(t, 6.0, tri.Length2)
	assert.Equal(t, 2.0, tri.Length3)
	assert.Equal(t, geom.Vec2{X: 30, Y: 20}, tri.Pivot)
	assert.Equal(t, 15.0, tri.PivotAngle)
	assert.Equal(t, "truncated_tri_mat", s.MaterialTag())
}

func TestTFCoilForm(t *testing.T) {
	a := evaluate(t, `
(tf-coil :r1 100 :r2 300 :thickness 20 :distance 20
         :number-of-coils 8 :vertical-displacement 5
         :azimuth-start-angle 10 :with-inner-leg true :samples 11)
`)
	s := lookup(t, a, "tf_coil")
	c, ok := s.Params().(shape.Coil)
	require.True(t, ok)
	assert.Equal(t, 100.0, c.R1)
	assert.Equal(t, 300.0, c.R2)
	assert.Equal(t, 20.0, c.Thickness)
	assert.Equal(t, 5.0, c.VerticalDisplacement)
	assert.Equal(t, 8, c.NumberOfCoils)
	assert.Equal(t, 10.0, c.AzimuthStartAngle)
	assert.Equal(t, 11, c.Samples)
	assert.True(t, c.WithInnerLeg)
	assert.Equal(t, 20.0, s.Distance())
	assert.Equal(t, shape.CoilBlue, s.Color())

	angles, err := s.AzimuthPlacementAngles()
	require.NoError(t, err)
	assert.Len(t, angles, 8)
}

func TestTFCoilInnerLegDefault(t *testing.T) {
	a := evaluate(t, `
(tf-coil "with-leg" :r1 100 :r2 300 :thickness 20 :distance 20)
(tf-coil "ring-only" :r1 100 :r2 300 :thickness 20 :distance 20 :with-inner-leg false)
`)
	withLeg, ok := lookup(t, a, "with-leg").Params().(shape.Coil)
	require.True(t, ok)
	assert.True(t, withLeg.WithInnerLeg, "the inner leg is on unless disabled")

	ringOnly, ok := lookup(t, a, "ring-only").Params().(shape.Coil)
	require.True(t, ok)
	assert.False(t, ringOnly.WithInnerLeg)
}

func TestCutForm(t *testing.T) {
	a := evaluate(t, `
(def hole (rotate-straight "hole" :points [[12 2] [18 2] [18 8] [12 8]]))
(rotate-straight "body" :points [[10 0] [20 0] [20 10] [10 10]] :cut hole)
(rotate-straight "twice" :points [[10 0] [20 0] [20 10] [10 10]]
                 :cut [(shape "hole") (shape "body")])
`)
	body := lookup(t, a, "body")
	require.Len(t, body.Cut(), 1)
	assert.Equal(t, "hole", body.Cut()[0].Name())
	assert.Len(t, lookup(t, a, "twice").Cut(), 2)

	v, err := body.Volume()
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi*(15*100-15*36), v, 0.2)
}

func TestEngineKernelOption(t *testing.T) {
	k := kerneltest.NewCounting(sdfx.New())
	a := evaluate(t, `(rotate-straight "r" :points [[10 0] [20 0] [20 10] [10 10]])`, WithKernel(k))

	_, err := a.Volume(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, k.Calls("revolve"))
}

func TestShapeFormErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"unknown shape", `(shape "nope")`, "no shape named"},
		{"missing points", `(rotate-straight "r")`, "points: required"},
		{"bad connection", `(rotate-mixed :points [[1 0 :bezier] [2 0] [2 1]])`, "bezier"},
		{"bad point", `(rotate-straight :points [[1 0 0 0] [2 0] [2 1]])`, "point 0"},
		{"bad color", `(rotate-straight :points [[1 0] [2 0] [2 1]] :color [1 0])`, "color"},
		{"bad cut", `(rotate-straight :points [[1 0] [2 0] [2 1]] :cut 3)`, "cut"},
		{"bad number", `(tf-coil :r1 "big")`, "r1"},
		{"duplicate name", `(rotate-straight "a" :points [[1 0] [2 0] [2 1]]) (rotate-straight "a" :points [[1 0] [2 0] [2 1]])`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, evalErrs, err := NewEngine().Evaluate(tt.source)
			require.NoError(t, err)
			assert.Nil(t, a)
			require.NotEmpty(t, evalErrs)
			assert.Contains(t, evalErrs[0].Error(), tt.want)
		})
	}
}

func TestShapeValuesPrint(t *testing.T) {
	v := &sexpShape{s: shape.NewRotateStraight("ring", nil)}
	assert.Equal(t, `(shape "ring")`, v.SexpString(nil))
}
