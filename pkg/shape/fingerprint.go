package shape

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// hasher feeds typed values into an xxhash64 digest.
type hasher struct {
	d   *xxhash.Digest
	buf [8]byte
}

func newHasher() *hasher { return &hasher{d: xxhash.New()} }

func (h *hasher) u64(v uint64) {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.d.Write(h.buf[:])
}

func (h *hasher) float(v float64) {
	if v == 0 {
		v = 0 // fold -0 into +0
	}
	h.u64(math.Float64bits(v))
}

func (h *hasher) int(v int) { h.u64(uint64(int64(v))) }

func (h *hasher) bool(v bool) {
	if v {
		h.u64(1)
	} else {
		h.u64(0)
	}
}

func (h *hasher) str(s string) {
	h.int(len(s))
	h.d.WriteString(s)
}

func (h *hasher) sum() uint64 { return h.d.Sum64() }

// digestLocked hashes everything that determines the solid: family and
// parameters, connection tags, sweep mode, angle and distance, explicit
// placement and the current digest of each cut operand. Color and material
// tag are left out. The caller holds cutGraph and s.mu and has ruled out
// cut cycles.
func (s *Shape) digestLocked() uint64 {
	h := newHasher()
	h.str(familyOf(s.params))
	switch p := s.params.(type) {
	case Points:
		h.int(len(p.Profile))
		for _, pt := range p.Profile {
			h.float(pt.X)
			h.float(pt.Y)
			h.int(int(pt.Conn))
		}
	case Triangle:
		h.float(p.Length1)
		h.float(p.Length2)
		h.float(p.Length3)
		h.float(p.Pivot.X)
		h.float(p.Pivot.Y)
		h.float(p.PivotAngle)
	case Coil:
		h.float(p.R1)
		h.float(p.R2)
		h.float(p.Thickness)
		h.float(p.VerticalDisplacement)
		h.int(p.Samples)
		h.int(p.NumberOfCoils)
		h.float(p.AzimuthStartAngle)
		h.bool(p.WithInnerLeg)
	}
	h.int(int(s.mode))
	h.float(s.rotationAngle)
	h.float(s.distance)
	h.int(len(s.azimuth))
	for _, a := range s.azimuth {
		h.float(a)
	}
	h.int(len(s.cut))
	for _, c := range s.cut {
		if c == nil {
			h.u64(0)
			continue
		}
		h.u64(c.digestShared())
	}
	return h.sum()
}
