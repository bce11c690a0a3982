package shape

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/logging"
	"github.com/chazu/paracore/pkg/profile"
	"github.com/chazu/paracore/pkg/replicate"
	"github.com/chazu/paracore/pkg/wire"
)

func (s *Shape) solidLocked() (kernel.Solid, error) {
	family := familyOf(s.params)
	log := s.logger.With(logging.Shape(s.name, family)...)

	fp := s.digestLocked()
	if s.built && fp == s.fingerprint {
		s.metrics.CacheHit(family)
		log.Debug("solid cache hit", zap.Uint64("fingerprint", fp))
		return s.solid, nil
	}

	start := time.Now()
	solid, err := s.build()
	elapsed := time.Since(start)
	s.metrics.ObserveBuild(family, elapsed, err)
	if err != nil {
		log.Debug("build failed", zap.Error(err), zap.Duration("duration", elapsed))
		return nil, err
	}

	log.Debug("built solid",
		zap.Uint64("fingerprint", fp),
		zap.Uint64("previous", s.fingerprint),
		zap.Float64("volume", solid.Volume()),
		zap.Duration("duration", elapsed))
	s.solid, s.fingerprint, s.built = solid, fp, true
	return solid, nil
}

// fail wraps err as a BuildError of this shape. An operand's BuildError
// stays in the chain, so errors.As finds the outermost shape first.
func (s *Shape) fail(op string, err error) error {
	return &BuildError{Shape: s.name, Op: op, Err: err}
}

// build runs the pipeline: validate, profile, sweep, union, replicate, cut.
// Parameter errors, placement included, surface before any kernel call.
func (s *Shape) build() (kernel.Solid, error) {
	if err := s.validateLocked(); err != nil {
		return nil, s.fail(OpValidate, err)
	}
	angles, err := s.placementLocked()
	if err != nil {
		return nil, s.fail(OpValidate, err)
	}

	var body kernel.Solid
	if c, ok := s.params.(Coil); ok {
		curve, err := s.curveLocked()
		if err != nil {
			return nil, s.fail(OpProfile, err)
		}
		leg, ring := profile.CoilProfiles(*curve)
		if body, err = s.sweep(ring); err != nil {
			return nil, err
		}
		if c.WithInnerLeg {
			legSolid, err := s.sweep(leg)
			if err != nil {
				return nil, err
			}
			if body, err = s.kernel.Compound(body, legSolid); err != nil {
				return nil, s.fail(OpUnion, err)
			}
		}
	} else {
		pts, err := s.profileLocked()
		if err != nil {
			return nil, s.fail(OpProfile, err)
		}
		if body, err = s.sweep(pts); err != nil {
			return nil, err
		}
	}

	if len(angles) > 0 {
		if body, err = replicate.Replicate(s.kernel, body, angles); err != nil {
			return nil, s.fail(OpReplicate, err)
		}
	}

	if s.mode == Extrude && s.rotationAngle < 360 {
		if body, err = s.cutWedge(body); err != nil {
			return nil, s.fail(OpCut, err)
		}
	}

	for _, c := range s.cut {
		if c == nil {
			continue
		}
		tool, err := c.solidShared()
		if err != nil {
			return nil, s.fail(OpCut, err)
		}
		if body, err = s.kernel.Subtract(body, tool); err != nil {
			return nil, s.fail(OpCut, fmt.Errorf("subtracting %q: %w", c.Name(), err))
		}
	}
	return body, nil
}

func (s *Shape) validateLocked() error {
	if s.params == nil {
		return fmt.Errorf("%w: no shape parameters", geom.ErrInvalidParameter)
	}
	if !(s.rotationAngle > 0 && s.rotationAngle <= 360) {
		return fmt.Errorf("%w: rotation angle %g outside (0, 360]", geom.ErrInvalidParameter, s.rotationAngle)
	}
	switch s.mode {
	case Rotate:
	case Extrude:
		if !(s.distance > 0) || math.IsInf(s.distance, 0) {
			return fmt.Errorf("%w: extrusion distance %g must be positive", geom.ErrInvalidParameter, s.distance)
		}
	default:
		return fmt.Errorf("%w: unknown mode %s", geom.ErrInvalidParameter, s.mode)
	}
	for _, a := range s.azimuth {
		if math.IsNaN(a) || math.IsInf(a, 0) {
			return fmt.Errorf("%w: placement angle %g", geom.ErrInvalidParameter, a)
		}
	}
	return nil
}

// sweep turns a profile into a solid with the shape's mode.
func (s *Shape) sweep(p geom.Profile) (kernel.Solid, error) {
	w, err := wire.Connect(p)
	if err != nil {
		return nil, s.fail(OpWire, err)
	}
	f, err := s.kernel.MakeFace(w)
	if err != nil {
		return nil, s.fail(OpFace, err)
	}
	var solid kernel.Solid
	switch s.mode {
	case Extrude:
		solid, err = s.kernel.Extrude(f, s.distance)
	default:
		solid, err = s.kernel.Revolve(f, s.rotationAngle)
	}
	if err != nil {
		return nil, s.fail(OpSweep, err)
	}
	return solid, nil
}

// cutWedge removes the sector from the rotation angle to a full turn, so
// an extruded shape keeps only the copies inside [0, angle).
func (s *Shape) cutWedge(body kernel.Solid) (kernel.Solid, error) {
	min, max := body.BoundingBox()
	r := 0.0
	for _, v := range []float64{min[0], max[0], min[1], max[1]} {
		r = math.Max(r, math.Abs(v))
	}
	r = r*math.Sqrt2 + 1
	wedge := geom.Uniform([]geom.Vec2{
		{X: 0, Y: min[2] - 1},
		{X: 0, Y: max[2] + 1},
		{X: r, Y: max[2] + 1},
		{X: r, Y: min[2] - 1},
	}, geom.Straight)

	w, err := wire.Connect(wedge)
	if err != nil {
		return nil, err
	}
	f, err := s.kernel.MakeFace(w)
	if err != nil {
		return nil, err
	}
	tool, err := s.kernel.Revolve(f, 360-s.rotationAngle)
	if err != nil {
		return nil, err
	}
	return s.kernel.Subtract(body, s.kernel.RotateZ(tool, s.rotationAngle))
}

// profileLocked returns the cached profile, regenerating it when the
// parameters changed.
func (s *Shape) profileLocked() (geom.Profile, error) {
	if !s.profileDirty && s.profile != nil {
		return s.profile, nil
	}
	var (
		p   geom.Profile
		err error
	)
	switch params := s.params.(type) {
	case Points:
		p = params.Profile.Clone()
		err = p.Validate()
	case Triangle:
		p = profile.TruncatedTriangle(params.TriangleParams)
	case Coil:
		var c *profile.Curve
		if c, err = s.curveLocked(); err == nil {
			_, p = profile.CoilProfiles(*c)
		}
	default:
		err = fmt.Errorf("%w: no shape parameters", geom.ErrInvalidParameter)
	}
	if err != nil {
		return nil, err
	}
	s.profile, s.profileDirty = p, false
	return p, nil
}

// curveLocked returns the solved D curve of a coil, cached with the
// profile.
func (s *Shape) curveLocked() (*profile.Curve, error) {
	c, ok := s.params.(Coil)
	if !ok {
		return nil, fmt.Errorf("%w: %s shape %q has no D curve", geom.ErrInvalidParameter, familyOf(s.params), s.name)
	}
	if !s.profileDirty && s.curve != nil {
		return s.curve, nil
	}
	curve, err := profile.PrincetonD(c.DParams)
	if err != nil {
		return nil, err
	}
	s.curve = &curve
	_, s.profile = profile.CoilProfiles(curve)
	s.profileDirty = false
	return s.curve, nil
}
