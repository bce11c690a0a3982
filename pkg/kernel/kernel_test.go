package kernel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/wire"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Vertices: []float32{1, -2, 3, -4, 5, 0, 2, 2, 9}}
	min, max := m.Bounds()
	if min != [3]float32{-4, -2, 0} {
		t.Errorf("Bounds min = %v, want [-4 -2 0]", min)
	}
	if max != [3]float32{2, 5, 9} {
		t.Errorf("Bounds max = %v, want [2 5 9]", max)
	}

	empty := &Mesh{}
	min, max = empty.Bounds()
	if min != ([3]float32{}) || max != ([3]float32{}) {
		t.Errorf("empty Bounds = %v %v, want zeros", min, max)
	}
}

// --- GeometryError ---

func TestGeometryErrorClassification(t *testing.T) {
	cause := errors.New("sdf failure")
	err := fmt.Errorf("building blanket: %w", &GeometryError{Op: "revolve", Reason: "empty result", Err: cause})

	if !errors.Is(err, ErrGeometry) {
		t.Error("errors.Is(err, ErrGeometry) = false, want true")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	var ge *GeometryError
	if !errors.As(err, &ge) {
		t.Fatal("errors.As(*GeometryError) = false")
	}
	if ge.Op != "revolve" {
		t.Errorf("Op = %q, want revolve", ge.Op)
	}
	if errors.Is(err, geom.ErrInvalidParameter) {
		t.Error("geometry error must not match ErrInvalidParameter")
	}
}

func TestGeometryErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *GeometryError
		want string
	}{
		{"reason only", NewGeometryError("make_face", "zero area"), "geometry: make_face: zero area"},
		{"formatted", NewGeometryError("revolve", "angle %g out of range", 400.0), "geometry: revolve: angle 400 out of range"},
		{"with cause", &GeometryError{Op: "subtract", Reason: "empty result", Err: errors.New("x")}, "geometry: subtract: empty result: x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// --- Compile-time interface check with a stub kernel ---

type stubFace struct{ area float64 }

func (f stubFace) Area() float64 { return f.area }
func (f stubFace) Bounds() (min, max geom.Vec2) { return min, max }

type stubSolid struct {
	minBB, maxBB [3]float64
	vol          float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) { return s.minBB, s.maxBB }
func (s *stubSolid) Volume() float64 { return s.vol }

// stubKernel proves the interface is satisfiable. Sweeps report the face
// area as volume.
type stubKernel struct{}

func (stubKernel) MakeFace(w *wire.Wire) (Face, error) {
	if len(w.Edges) == 0 {
		return nil, NewGeometryError("make_face", "empty wire")
	}
	return stubFace{area: 1}, nil
}
func (stubKernel) Revolve(f Face, _ float64) (Solid, error) { return &stubSolid{vol: f.Area()}, nil }
func (stubKernel) Extrude(f Face, d float64) (Solid, error) {
	return &stubSolid{vol: f.Area() * d}, nil
}
func (stubKernel) Compound(solids ...Solid) (Solid, error) {
	v := 0.0
	for _, s := range solids {
		v += s.Volume()
	}
	return &stubSolid{vol: v}, nil
}
func (stubKernel) Subtract(a, _ Solid) (Solid, error) { return a, nil }
func (stubKernel) RotateZ(s Solid, _ float64) Solid { return s }
func (stubKernel) ToMesh(Solid) (*Mesh, error) { return &Mesh{}, nil }

var (
	_ Face   = stubFace{}
	_ Solid  = (*stubSolid)(nil)
	_ Kernel = stubKernel{}
)

func TestStubKernelThroughInterface(t *testing.T) {
	var k Kernel = stubKernel{}
	w, err := wire.Connect(geom.Uniform([]geom.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, geom.Straight))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	f, err := k.MakeFace(w)
	if err != nil {
		t.Fatalf("MakeFace() error = %v", err)
	}
	s, err := k.Extrude(f, 4)
	if err != nil {
		t.Fatalf("Extrude() error = %v", err)
	}
	c, err := k.Compound(s, k.RotateZ(s, 90))
	if err != nil {
		t.Fatalf("Compound() error = %v", err)
	}
	if got := c.Volume(); got != 8 {
		t.Errorf("compound volume = %v, want 8", got)
	}
	if _, err := k.MakeFace(&wire.Wire{}); !errors.Is(err, ErrGeometry) {
		t.Errorf("MakeFace(empty) error = %v, want ErrGeometry", err)
	}
}
