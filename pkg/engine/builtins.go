package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/profile"
	"github.com/chazu/paracore/pkg/shape"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms source code before passing it to zygomys:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal), so
//     keywords never collide with user variables.
//  2. Kebab-case to underscore: rotate-straight -> rotate_straight, since
//     zygomys reads a hyphen inside an identifier as subtraction.
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			result = append(result, b[i:j]...)
			i = j
			continue
		case b[i] == ';':
			result = append(result, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			result = append(result, ':', '=')
			i += 2
			continue
		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

// skipQuoted returns the index just past the literal starting at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	i++
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			i++
		}
		i++
	}
	if i < len(b) {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Shape values
// ---------------------------------------------------------------------------

// sexpShape carries a constructed shape between forms, e.g. into :cut.
type sexpShape struct {
	s *shape.Shape
}

func (v *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %q)", v.s.Name())
}
func (v *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Trailing keyword with no value acts as a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads an optional numeric keyword into dst.
func (pa kwArgs) float(key string, dst *float64) error {
	v, ok := pa.kw[key]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

// name returns the shape name: the first positional string, else :name.
func (pa kwArgs) name() (string, error) {
	if len(pa.positional) > 0 {
		return toString(pa.positional[0])
	}
	if v, ok := pa.kw["name"]; ok {
		return toString(v)
	}
	return "", nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts a whole number.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false; a bare trailing keyword counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toFloats accepts a single number or a list of numbers.
func toFloats(s zygo.Sexp) ([]float64, error) {
	if f, err := toFloat64(s); err == nil {
		return []float64{f}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(items))
	for i, item := range items {
		if out[i], err = toFloat64(item); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}
	return out, nil
}

// toVec2 reads an [x z] pair.
func toVec2(s zygo.Sexp) (geom.Vec2, error) {
	f, err := toFloats(s)
	if err != nil {
		return geom.Vec2{}, err
	}
	if len(f) != 2 {
		return geom.Vec2{}, fmt.Errorf("expected [x z], got %d numbers", len(f))
	}
	return geom.Vec2{X: f[0], Y: f[1]}, nil
}

// toPoint reads [x z] or [x z :connection]; def tags untagged points.
func toPoint(s zygo.Sexp, def geom.Connection) (geom.Point, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return geom.Point{}, err
	}
	if len(items) != 2 && len(items) != 3 {
		return geom.Point{}, fmt.Errorf("expected [x z connection?], got %d items", len(items))
	}
	x, err := toFloat64(items[0])
	if err != nil {
		return geom.Point{}, fmt.Errorf("x: %w", err)
	}
	z, err := toFloat64(items[1])
	if err != nil {
		return geom.Point{}, fmt.Errorf("z: %w", err)
	}
	conn := def
	if len(items) == 3 {
		name, err := toKeywordString(items[2])
		if err != nil {
			return geom.Point{}, fmt.Errorf("connection: %w", err)
		}
		if conn, err = geom.ParseConnection(name); err != nil {
			return geom.Point{}, err
		}
	}
	return geom.P(x, z, conn), nil
}

// toProfile reads a list of points.
func toProfile(s zygo.Sexp, def geom.Connection) (geom.Profile, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	p := make(geom.Profile, len(items))
	for i, item := range items {
		if p[i], err = toPoint(item, def); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return p, nil
}

// toColor reads [r g b] or [r g b a] with components in [0, 1].
func toColor(s zygo.Sexp) ([4]float64, error) {
	f, err := toFloats(s)
	if err != nil {
		return [4]float64{}, err
	}
	switch len(f) {
	case 3:
		return [4]float64{f[0], f[1], f[2], 1}, nil
	case 4:
		return [4]float64{f[0], f[1], f[2], f[3]}, nil
	}
	return [4]float64{}, fmt.Errorf("expected 3 or 4 components, got %d", len(f))
}

// toShapes accepts one shape or a list of shapes.
func toShapes(s zygo.Sexp) ([]*shape.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return []*shape.Shape{v.s}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	out := make([]*shape.Shape, len(items))
	for i, item := range items {
		v, ok := item.(*sexpShape)
		if !ok {
			return nil, fmt.Errorf("entry %d: expected shape, got %T (%s)", i, item, item.SexpString(nil))
		}
		out[i] = v.s
	}
	return out, nil
}

// commonOptions reads the keywords shared by every shape form.
func commonOptions(pa kwArgs) ([]shape.Option, error) {
	var opts []shape.Option
	if v, ok := pa.kw["rotation-angle"]; ok {
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("rotation-angle: %w", err)
		}
		opts = append(opts, shape.WithRotationAngle(f))
	}
	if v, ok := pa.kw["azimuth"]; ok {
		f, err := toFloats(v)
		if err != nil {
			return nil, fmt.Errorf("azimuth: %w", err)
		}
		opts = append(opts, shape.WithAzimuthPlacement(f...))
	}
	if v, ok := pa.kw["cut"]; ok {
		cuts, err := toShapes(v)
		if err != nil {
			return nil, fmt.Errorf("cut: %w", err)
		}
		opts = append(opts, shape.WithCut(cuts...))
	}
	if v, ok := pa.kw["color"]; ok {
		c, err := toColor(v)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		opts = append(opts, shape.WithColor(c))
	}
	if v, ok := pa.kw["material-tag"]; ok {
		tag, err := toString(v)
		if err != nil {
			return nil, fmt.Errorf("material-tag: %w", err)
		}
		opts = append(opts, shape.WithMaterialTag(tag))
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// constructor builds a shape from parsed arguments. name and opts are
// already resolved; opts ends with the source's common keywords.
type constructor func(pa kwArgs, name string, opts []shape.Option) (*shape.Shape, error)

// registerBuiltins installs the shape forms into a zygomys environment.
// Every constructed shape is added to a; base options are applied before
// those written in the source.
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens are recognizable.
func registerBuiltins(env *zygo.Zlisp, a *shape.Assembly, base []shape.Option) {
	add := func(form string, build constructor) {
		env.AddFunction(strings.ReplaceAll(form, "-", "_"), func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			name, err := pa.name()
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: name: %w", form, err)
			}
			common, err := commonOptions(pa)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			opts := append(append([]shape.Option{}, base...), common...)
			s, err := build(pa, name, opts)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			if err := a.Add(s); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			return &sexpShape{s: s}, nil
		})
	}

	// (rotate-straight "name" :points [[x z] ...] :rotation-angle 180)
	add("rotate-straight", pointsForm(geom.Straight, false))
	add("rotate-spline", pointsForm(geom.Spline, false))
	// (rotate-mixed "name" :points [[x z :straight] [x z :spline] ...])
	add("rotate-mixed", pointsForm(geom.Straight, false))
	// (extrude-straight "name" :points [...] :distance 20)
	add("extrude-straight", pointsForm(geom.Straight, true))
	add("extrude-spline", pointsForm(geom.Spline, true))
	add("extrude-mixed", pointsForm(geom.Straight, true))

	// (truncated-triangle "pf" :length-1 4 :length-2 4 :length-3 2
	//                     :pivot [30 20] :pivot-angle 0)
	add("truncated-triangle", func(pa kwArgs, name string, opts []shape.Option) (*shape.Shape, error) {
		var p profile.TriangleParams
		for key, dst := range map[string]*float64{
			"length-1":    &p.Length1,
			"length-2":    &p.Length2,
			"length-3":    &p.Length3,
			"pivot-angle": &p.PivotAngle,
		} {
			if err := pa.float(key, dst); err != nil {
				return nil, err
			}
		}
		if v, ok := pa.kw["pivot"]; ok {
			pivot, err := toVec2(v)
			if err != nil {
				return nil, fmt.Errorf("pivot: %w", err)
			}
			p.Pivot = pivot
		}
		return shape.NewTruncatedTriangle(name, p, opts...), nil
	})

	// (tf-coil "tf" :r1 100 :r2 300 :thickness 20 :distance 20
	//          :number-of-coils 8 :with-inner-leg false)
	// The inner leg is included unless :with-inner-leg is false.
	add("tf-coil", func(pa kwArgs, name string, opts []shape.Option) (*shape.Shape, error) {
		c := shape.Coil{NumberOfCoils: 1, WithInnerLeg: true}
		var distance float64
		for key, dst := range map[string]*float64{
			"r1":                    &c.R1,
			"r2":                    &c.R2,
			"thickness":             &c.Thickness,
			"vertical-displacement": &c.VerticalDisplacement,
			"azimuth-start-angle":   &c.AzimuthStartAngle,
			"distance":              &distance,
		} {
			if err := pa.float(key, dst); err != nil {
				return nil, err
			}
		}
		if v, ok := pa.kw["number-of-coils"]; ok {
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("number-of-coils: %w", err)
			}
			c.NumberOfCoils = n
		}
		if v, ok := pa.kw["samples"]; ok {
			n, err := toInt(v)
			if err != nil {
				return nil, fmt.Errorf("samples: %w", err)
			}
			c.Samples = n
		}
		if v, ok := pa.kw["with-inner-leg"]; ok {
			b, err := toBool(v)
			if err != nil {
				return nil, fmt.Errorf("with-inner-leg: %w", err)
			}
			c.WithInnerLeg = b
		}
		return shape.NewToroidalFieldCoil(name, c, distance, opts...), nil
	})

	// (shape "name") looks up an earlier shape, e.g. for :cut.
	env.AddFunction("shape", func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("shape requires a name argument")
		}
		name, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: name: %w", err)
		}
		s, ok := a.Shape(name)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("shape: no shape named %q", name)
		}
		return &sexpShape{s: s}, nil
	})
}

// pointsForm builds a Points-family shape. Untagged points get def.
func pointsForm(def geom.Connection, extrude bool) constructor {
	return func(pa kwArgs, name string, opts []shape.Option) (*shape.Shape, error) {
		v, ok := pa.kw["points"]
		if !ok {
			return nil, fmt.Errorf("points: required")
		}
		p, err := toProfile(v, def)
		if err != nil {
			return nil, fmt.Errorf("points: %w", err)
		}
		if !extrude {
			return shape.NewRotateMixed(name, p, opts...), nil
		}
		var distance float64
		if err := pa.float("distance", &distance); err != nil {
			return nil, err
		}
		return shape.NewExtrudeMixed(name, p, distance, opts...), nil
	}
}
