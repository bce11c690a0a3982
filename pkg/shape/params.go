package shape

import (
	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/profile"
)

// Family names used in logs and metrics.
const (
	FamilyPoints   = "points"
	FamilyTriangle = "truncated_triangle"
	FamilyCoil     = "tf_coil"
)

// Params selects a shape family and carries its parameters. The set of
// families is closed: Points, Triangle and Coil.
type Params interface {
	Family() string
	params()
}

// Points is a shape defined directly by a tagged profile.
type Points struct {
	Profile geom.Profile
}

// Triangle is a truncated triangle rotated about its pivot.
type Triangle struct {
	profile.TriangleParams
}

// Coil is a Princeton-D toroidal field coil, optionally with its straight
// inner leg, repeated NumberOfCoils times around the machine axis. The zero
// value has no inner leg; the tf-coil language form turns it on by default.
type Coil struct {
	profile.DParams
	NumberOfCoils     int
	AzimuthStartAngle float64
	WithInnerLeg      bool
}

func (Points) Family() string   { return FamilyPoints }
func (Triangle) Family() string { return FamilyTriangle }
func (Coil) Family() string     { return FamilyCoil }

func (Points) params()   {}
func (Triangle) params() {}
func (Coil) params()     {}

// cloneParams returns a copy that shares no slices with p.
func cloneParams(p Params) Params {
	if pts, ok := p.(Points); ok {
		return Points{Profile: pts.Profile.Clone()}
	}
	return p
}
