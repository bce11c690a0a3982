// Package tessellate builds the shapes of an assembly and produces
// triangle meshes using a geometry kernel. One mesh is produced per shape.
package tessellate

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/shape"
)

// Assembly builds every shape of a and meshes it with k, returning the
// meshes in insertion order. k must be the kernel the shapes build with.
// The tessellator never mutates a shape's parameters.
func Assembly(ctx context.Context, a *shape.Assembly, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if a == nil {
		return nil, nil
	}
	limit := runtime.GOMAXPROCS(0)
	if err := a.BuildAll(ctx, limit); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	shapes := a.Shapes()
	meshes := make([]*kernel.Mesh, len(shapes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, s := range shapes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := Shape(s, k)
			if err != nil {
				return err
			}
			meshes[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return meshes, nil
}

// Shape builds s if needed and meshes it, naming and coloring the mesh
// after the shape.
func Shape(s *shape.Shape, k kernel.Kernel) (*kernel.Mesh, error) {
	solid, err := s.Solid()
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for shape %q: %w", s.Name(), err)
	}
	mesh.PartName = s.Name()
	mesh.Color = s.Color()
	return mesh, nil
}
