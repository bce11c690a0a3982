package shape

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Assembly is a named collection of shapes, such as the components of a
// reactor.
type Assembly struct {
	mu     sync.RWMutex
	shapes map[string]*Shape
	order  []string
	logger *zap.Logger
}

// NewAssembly returns an empty assembly.
func NewAssembly(logger *zap.Logger) *Assembly {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Assembly{shapes: make(map[string]*Shape), logger: logger}
}

// Add registers a shape under its name.
func (a *Assembly) Add(s *Shape) error {
	name := s.Name()
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.shapes[name]; ok {
		return fmt.Errorf("assembly already has a shape named %q", name)
	}
	a.shapes[name] = s
	a.order = append(a.order, name)
	return nil
}

// Shape returns the shape registered under name.
func (a *Assembly) Shape(name string) (*Shape, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.shapes[name]
	return s, ok
}

// Shapes returns the shapes in the order they were added.
func (a *Assembly) Shapes() []*Shape {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Shape, len(a.order))
	for i, n := range a.order {
		out[i] = a.shapes[n]
	}
	return out
}

// Names returns the shape names sorted alphabetically.
func (a *Assembly) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := append([]string(nil), a.order...)
	sort.Strings(names)
	return names
}

// Len returns the number of shapes.
func (a *Assembly) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.order)
}

// Validate checks every shape's cut references for cycles without
// building anything.
func (a *Assembly) Validate() error {
	shapes := a.Shapes()
	cutGraph.RLock()
	defer cutGraph.RUnlock()
	for _, s := range shapes {
		if err := checkCutCycles(s); err != nil {
			return &BuildError{Shape: s.Name(), Op: OpCut, Err: err}
		}
	}
	return nil
}

// BuildAll builds every shape, at most limit at a time (no limit if
// limit <= 0). It returns the first error; shapes that built keep their
// solids.
func (a *Assembly) BuildAll(ctx context.Context, limit int) error {
	if err := a.Validate(); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, s := range a.Shapes() {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := s.Solid()
			return err
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("assembly build failed", zap.Error(err))
		return err
	}
	a.logger.Debug("assembly built", zap.Int("shapes", a.Len()))
	return nil
}

// Volume builds the assembly and returns the summed volume of its shapes.
func (a *Assembly) Volume(ctx context.Context, limit int) (float64, error) {
	if err := a.BuildAll(ctx, limit); err != nil {
		return 0, err
	}
	total := 0.0
	for _, s := range a.Shapes() {
		v, err := s.Volume()
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}
