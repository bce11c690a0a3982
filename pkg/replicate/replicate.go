// Package replicate places rigid copies of a solid around the z axis.
package replicate

import (
	"fmt"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
)

// PlacementAngles returns count angles in degrees, evenly spaced over a full
// turn starting at start: start + i*360/count.
func PlacementAngles(start float64, count int) ([]float64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: number of copies must be positive, got %d", geom.ErrInvalidParameter, count)
	}
	step := 360.0 / float64(count)
	angles := make([]float64, count)
	for i := range angles {
		angles[i] = start + float64(i)*step
	}
	return angles, nil
}

// Replicate returns the compound of s rotated about z to each angle. The
// copies are not merged, so the volume is len(angles) times the volume of s.
func Replicate(k kernel.Kernel, s kernel.Solid, angles []float64) (kernel.Solid, error) {
	if len(angles) == 0 {
		return nil, fmt.Errorf("%w: no placement angles", geom.ErrInvalidParameter)
	}
	copies := make([]kernel.Solid, len(angles))
	for i, a := range angles {
		copies[i] = k.RotateZ(s, a)
	}
	return k.Compound(copies...)
}
