// Package shape builds parametric solids: a family's parameters become a
// tagged profile, the profile becomes a wire and a face, the face is swept,
// copied around the machine axis and cut by other shapes. The result is
// cached against a fingerprint of everything that determines it, so asking
// for an unchanged shape's solid never calls the kernel again.
package shape

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/kernel/sdfx"
	"github.com/chazu/paracore/pkg/metrics"
	"github.com/chazu/paracore/pkg/profile"
	"github.com/chazu/paracore/pkg/replicate"
)

// Mode is how a profile is swept into a solid.
type Mode int

const (
	Rotate  Mode = iota // revolve about z by the rotation angle
	Extrude             // extrude along y by the distance
)

func (m Mode) String() string {
	switch m {
	case Rotate:
		return "rotate"
	case Extrude:
		return "extrude"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// DefaultColor is the RGBA color of shapes that do not set one.
var DefaultColor = [4]float64{0.5, 0.5, 0.5, 1}

// Shape is a parametric solid with a lazily built, cached kernel solid.
// All methods are safe for concurrent use.
type Shape struct {
	mu sync.Mutex

	name          string
	params        Params
	mode          Mode
	rotationAngle float64
	distance      float64
	azimuth       []float64
	cut           []*Shape
	color         [4]float64
	materialTag   string

	kernel  kernel.Kernel
	logger  *zap.Logger
	metrics *metrics.Collector

	// profile cache, invalidated by parameter changes
	profile      geom.Profile
	curve        *profile.Curve
	profileDirty bool

	// build cache
	solid       kernel.Solid
	fingerprint uint64
	built       bool
}

// Option configures a Shape at construction.
type Option func(*Shape)

// WithMode sets the sweep mode.
func WithMode(m Mode) Option { return func(s *Shape) { s.mode = m } }

// WithRotationAngle sets the sweep angle in degrees, in (0, 360].
func WithRotationAngle(deg float64) Option { return func(s *Shape) { s.rotationAngle = deg } }

// WithDistance sets the extrusion distance.
func WithDistance(d float64) Option { return func(s *Shape) { s.distance = d } }

// WithAzimuthPlacement places copies of the swept solid at each angle.
func WithAzimuthPlacement(deg ...float64) Option {
	return func(s *Shape) { s.azimuth = append([]float64(nil), deg...) }
}

// WithCut subtracts the solids of the given shapes. The shapes are
// referenced, not copied: later changes to them are picked up.
func WithCut(shapes ...*Shape) Option {
	return func(s *Shape) { s.cut = append([]*Shape(nil), shapes...) }
}

// WithColor sets the RGBA display color.
func WithColor(rgba [4]float64) Option { return func(s *Shape) { s.color = rgba } }

// WithMaterialTag sets the opaque material label.
func WithMaterialTag(tag string) Option { return func(s *Shape) { s.materialTag = tag } }

// WithKernel sets the geometry kernel. The default is sdfx.
func WithKernel(k kernel.Kernel) Option { return func(s *Shape) { s.kernel = k } }

// WithLogger sets the logger for build events.
func WithLogger(l *zap.Logger) Option { return func(s *Shape) { s.logger = l } }

// WithMetrics records builds and cache hits on c.
func WithMetrics(c *metrics.Collector) Option { return func(s *Shape) { s.metrics = c } }

// New creates a shape. An empty name is replaced by a generated one.
// Parameters are not checked until the solid is built.
func New(name string, params Params, opts ...Option) *Shape {
	s := &Shape{
		name:          name,
		params:        cloneParams(params),
		mode:          Rotate,
		rotationAngle: 360,
		color:         DefaultColor,
		profileDirty:  true,
	}
	for _, o := range opts {
		o(s)
	}
	if s.name == "" {
		s.name = "shape-" + uuid.New().String()[:8]
	}
	if s.kernel == nil {
		s.kernel = sdfx.New()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// Name returns the shape's name.
func (s *Shape) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Family returns the family name of the shape's parameters.
func (s *Shape) Family() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return familyOf(s.params)
}

func familyOf(p Params) string {
	if p == nil {
		return "none"
	}
	return p.Family()
}

// Params returns a copy of the family parameters.
func (s *Shape) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneParams(s.params)
}

// Mode returns the sweep mode.
func (s *Shape) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// RotationAngle returns the sweep angle in degrees.
func (s *Shape) RotationAngle() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotationAngle
}

// Distance returns the extrusion distance.
func (s *Shape) Distance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distance
}

// Color returns the RGBA display color.
func (s *Shape) Color() [4]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

// MaterialTag returns the material label.
func (s *Shape) MaterialTag() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.materialTag
}

// Cut returns the shapes subtracted from this one.
func (s *Shape) Cut() []*Shape {
	cutGraph.RLock()
	defer cutGraph.RUnlock()
	return append([]*Shape(nil), s.cut...)
}

// SetName renames the shape.
func (s *Shape) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

// SetParams replaces the family parameters.
func (s *Shape) SetParams(p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = cloneParams(p)
	s.profileDirty = true
}

// SetPoints replaces the profile of a Points shape. Other families are
// converted to Points.
func (s *Shape) SetPoints(p geom.Profile) {
	s.SetParams(Points{Profile: p})
}

// SetMode changes the sweep mode.
func (s *Shape) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// SetRotationAngle changes the sweep angle.
func (s *Shape) SetRotationAngle(deg float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotationAngle = deg
}

// SetDistance changes the extrusion distance.
func (s *Shape) SetDistance(d float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distance = d
}

// SetAzimuthPlacement replaces the explicit placement angles. With no
// angles a single unrotated solid is built.
func (s *Shape) SetAzimuthPlacement(deg ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.azimuth = append([]float64(nil), deg...)
}

// SetCut replaces the cut operands. It waits for builds in progress.
func (s *Shape) SetCut(shapes ...*Shape) {
	cutGraph.Lock()
	defer cutGraph.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cut = append([]*Shape(nil), shapes...)
}

// SetColor changes the display color. It does not invalidate the solid.
func (s *Shape) SetColor(rgba [4]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = rgba
}

// SetMaterialTag changes the material label. It does not invalidate the
// solid.
func (s *Shape) SetMaterialTag(tag string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materialTag = tag
}

// Points returns the shape's profile, generating it if the parameters
// changed since the last call. For a coil this is the D-shaped ring.
func (s *Shape) Points() (geom.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.profileLocked()
	if err != nil {
		return nil, err
	}
	return p.Clone(), nil
}

// InnerPoints returns the inner curve of a coil.
func (s *Shape) InnerPoints() ([]geom.Vec2, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.curveLocked()
	if err != nil {
		return nil, err
	}
	return append([]geom.Vec2(nil), c.Inner...), nil
}

// OuterPoints returns the outer curve of a coil, the inner curve offset by
// the coil thickness.
func (s *Shape) OuterPoints() ([]geom.Vec2, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.curveLocked()
	if err != nil {
		return nil, err
	}
	return append([]geom.Vec2(nil), c.Outer...), nil
}

// AzimuthPlacementAngles returns the angles copies are placed at. Explicit
// placement wins; otherwise a coil spreads NumberOfCoils copies evenly from
// its start angle. Other shapes without placement return nil.
func (s *Shape) AzimuthPlacementAngles() ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.placementLocked()
}

func (s *Shape) placementLocked() ([]float64, error) {
	if len(s.azimuth) > 0 {
		return append([]float64(nil), s.azimuth...), nil
	}
	if c, ok := s.params.(Coil); ok {
		return replicate.PlacementAngles(c.AzimuthStartAngle, c.NumberOfCoils)
	}
	return nil, nil
}

// Solid returns the shape's solid, building it if it was never built or if
// anything that determines it changed since the last successful build.
// A failed build returns a *BuildError and keeps the previous solid.
func (s *Shape) Solid() (kernel.Solid, error) {
	cutGraph.RLock()
	defer cutGraph.RUnlock()
	if err := checkCutCycles(s); err != nil {
		return nil, &BuildError{Shape: s.Name(), Op: OpCut, Err: err}
	}
	return s.solidShared()
}

// solidShared is Solid for a caller that already holds cutGraph.
func (s *Shape) solidShared() (kernel.Solid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.solidLocked()
}

// Volume returns the volume of the shape's solid.
func (s *Shape) Volume() (float64, error) {
	solid, err := s.Solid()
	if err != nil {
		return 0, err
	}
	return solid.Volume(), nil
}

// Fingerprint returns the fingerprint stored by the last successful build.
// It reports false if the shape has never been built.
func (s *Shape) Fingerprint() (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fingerprint, s.built
}

// Digest returns the fingerprint the shape's current parameters would
// build with, following cut operands recursively.
func (s *Shape) Digest() (uint64, error) {
	cutGraph.RLock()
	defer cutGraph.RUnlock()
	if err := checkCutCycles(s); err != nil {
		return 0, err
	}
	return s.digestShared(), nil
}

func (s *Shape) digestShared() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.digestLocked()
}

// Stale reports whether the next call to Solid will rebuild. A shape whose
// cuts form a cycle is always stale.
func (s *Shape) Stale() bool {
	cutGraph.RLock()
	defer cutGraph.RUnlock()
	if checkCutCycles(s) != nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.built || s.digestLocked() != s.fingerprint
}

func (s *Shape) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("%s(%s, %s %g)", s.name, familyOf(s.params), s.mode, s.rotationAngle)
}
