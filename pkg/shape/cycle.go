package shape

import (
	"fmt"
	"sync"
)

// cutGraph guards every shape's cut list. Solid, Digest, Stale and
// Validate hold it for reading across their whole walk of the operands and
// SetCut holds it for writing, so the cut references a cycle check saw are
// the ones the locked recursion follows. Lock order is cutGraph, then a
// shape's mu, then its operands' mu.
var cutGraph sync.RWMutex

// checkCutCycles walks the cut references reachable from root and reports
// ErrCutCycle if any shape is reached from itself. The caller holds
// cutGraph for reading; no shape lock is taken.
func checkCutCycles(root *Shape) error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[*Shape]int) // default zero = white
	var cycleAt *Shape

	var visit func(s *Shape) bool // returns true if cycle found
	visit = func(s *Shape) bool {
		switch color[s] {
		case black:
			return false
		case gray:
			cycleAt = s
			return true
		}

		color[s] = gray
		for _, c := range s.cut {
			if c == nil {
				continue
			}
			if visit(c) {
				return true
			}
		}
		color[s] = black
		return false
	}

	if visit(root) {
		return fmt.Errorf("%w: %q is cut by itself", ErrCutCycle, cycleAt.Name())
	}
	return nil
}
