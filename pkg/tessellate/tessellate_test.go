package tessellate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/chazu/paracore/pkg/geom"
	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/kernel/sdfx"
	"github.com/chazu/paracore/pkg/shape"
	"github.com/chazu/paracore/pkg/tessellate"
)

// newKernel returns a coarse sdfx kernel so meshing stays fast.
func newKernel() kernel.Kernel {
	return sdfx.New(sdfx.WithOptions(sdfx.Options{
		MeshCells: 32, SplineSegments: 8, ArcSegments: 16, VolumeSamples: 16,
	}))
}

func square(x0, z0, x1, z1 float64) []geom.Vec2 {
	return []geom.Vec2{{X: x0, Y: z0}, {X: x1, Y: z0}, {X: x1, Y: z1}, {X: x0, Y: z1}}
}

func TestSingleShape(t *testing.T) {
	k := newKernel()
	a := shape.NewAssembly(nil)
	red := [4]float64{1, 0, 0, 1}
	if err := a.Add(shape.NewRotateStraight("ring", square(10, 0, 20, 10),
		shape.WithKernel(k), shape.WithColor(red))); err != nil {
		t.Fatal(err)
	}

	meshes, err := tessellate.Assembly(context.Background(), a, k)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "ring" {
		t.Errorf("expected PartName %q, got %q", "ring", m.PartName)
	}
	if m.Color != red {
		t.Errorf("expected color %v, got %v", red, m.Color)
	}
	if m.TriangleCount() == 0 {
		t.Error("mesh should have triangles")
	}
}

func TestMeshesFollowInsertionOrder(t *testing.T) {
	k := newKernel()
	a := shape.NewAssembly(nil)
	names := []string{"port", "blanket", "coil"}
	shapes := []*shape.Shape{
		shape.NewExtrudeStraight("port", square(25, 0, 30, 5), 2, shape.WithKernel(k)),
		shape.NewRotateStraight("blanket", square(10, 0, 20, 10), shape.WithKernel(k)),
		shape.NewRotateSpline("coil", []geom.Vec2{{X: 30, Y: 0}, {X: 40, Y: 5}, {X: 30, Y: 10}}, shape.WithKernel(k)),
	}
	for _, s := range shapes {
		if err := a.Add(s); err != nil {
			t.Fatal(err)
		}
	}

	meshes, err := tessellate.Assembly(context.Background(), a, k)
	if err != nil {
		t.Fatalf("Assembly failed: %v", err)
	}
	if len(meshes) != len(names) {
		t.Fatalf("expected %d meshes, got %d", len(names), len(meshes))
	}
	for i, m := range meshes {
		if m.PartName != names[i] {
			t.Errorf("mesh %d: PartName %q, want %q", i, m.PartName, names[i])
		}
		if m.IsEmpty() {
			t.Errorf("mesh %d is empty", i)
		}
	}
}

func TestMeshBoundsFollowRotationAngle(t *testing.T) {
	k := newKernel()
	s := shape.NewRotateStraight("half", square(10, 0, 20, 10),
		shape.WithKernel(k), shape.WithRotationAngle(180))

	m, err := tessellate.Shape(s, k)
	if err != nil {
		t.Fatalf("Shape failed: %v", err)
	}
	min, max := m.Bounds()
	if max[0] > 21 || min[0] < -21 || max[2] > 11 || min[2] < -1 {
		t.Errorf("mesh bounds %v %v exceed the solid", min, max)
	}
}

func TestEmptyAssembly(t *testing.T) {
	meshes, err := tessellate.Assembly(context.Background(), shape.NewAssembly(nil), newKernel())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meshes) != 0 {
		t.Errorf("expected no meshes, got %d", len(meshes))
	}

	meshes, err = tessellate.Assembly(context.Background(), nil, newKernel())
	if err != nil || meshes != nil {
		t.Errorf("nil assembly: got %v, %v", meshes, err)
	}
}

func TestBuildFailureSurfaces(t *testing.T) {
	k := newKernel()
	a := shape.NewAssembly(nil)
	// Crosses the revolve axis.
	bad := shape.NewRotateStraight("bad", square(-5, 0, 5, 10), shape.WithKernel(k))
	if err := a.Add(bad); err != nil {
		t.Fatal(err)
	}

	_, err := tessellate.Assembly(context.Background(), a, k)
	if err == nil {
		t.Fatal("expected build error")
	}
	var be *shape.BuildError
	if !errors.As(err, &be) || be.Shape != "bad" {
		t.Errorf("expected BuildError for %q, got %v", "bad", err)
	}
	if !errors.Is(err, kernel.ErrGeometry) {
		t.Errorf("expected geometry error, got %v", err)
	}
}
