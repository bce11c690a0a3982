// Package kerneltest provides kernel wrappers for tests that need to
// observe or break kernel calls.
package kerneltest

import (
	"sync"

	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/wire"
)

// Counting wraps a kernel and counts every call by operation name. It can
// be told to fail an operation to exercise error paths.
type Counting struct {
	Inner kernel.Kernel

	mu     sync.Mutex
	calls  map[string]int
	failOn map[string]error
}

var _ kernel.Kernel = (*Counting)(nil)

// NewCounting wraps k.
func NewCounting(k kernel.Kernel) *Counting {
	return &Counting{Inner: k, calls: make(map[string]int), failOn: make(map[string]error)}
}

// Calls returns how many times op was called.
func (c *Counting) Calls(op string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[op]
}

// Total returns the number of calls across all operations.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

// Reset clears the counters.
func (c *Counting) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = make(map[string]int)
}

// FailOn makes op return err until cleared with a nil err.
func (c *Counting) FailOn(op string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failOn, op)
		return
	}
	c.failOn[op] = err
}

func (c *Counting) record(op string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[op]++
	return c.failOn[op]
}

func (c *Counting) MakeFace(w *wire.Wire) (kernel.Face, error) {
	if err := c.record("make_face"); err != nil {
		return nil, err
	}
	return c.Inner.MakeFace(w)
}

func (c *Counting) Revolve(f kernel.Face, angle float64) (kernel.Solid, error) {
	if err := c.record("revolve"); err != nil {
		return nil, err
	}
	return c.Inner.Revolve(f, angle)
}

func (c *Counting) Extrude(f kernel.Face, distance float64) (kernel.Solid, error) {
	if err := c.record("extrude"); err != nil {
		return nil, err
	}
	return c.Inner.Extrude(f, distance)
}

func (c *Counting) Compound(solids ...kernel.Solid) (kernel.Solid, error) {
	if err := c.record("compound"); err != nil {
		return nil, err
	}
	return c.Inner.Compound(solids...)
}

func (c *Counting) Subtract(a, b kernel.Solid) (kernel.Solid, error) {
	if err := c.record("subtract"); err != nil {
		return nil, err
	}
	return c.Inner.Subtract(a, b)
}

func (c *Counting) RotateZ(s kernel.Solid, angle float64) kernel.Solid {
	c.record("rotate_z")
	return c.Inner.RotateZ(s, angle)
}

func (c *Counting) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if err := c.record("to_mesh"); err != nil {
		return nil, err
	}
	return c.Inner.ToMesh(s)
}
