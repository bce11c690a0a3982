package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chazu/paracore/pkg/shape"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

var (
	// ErrTimeout is returned when an evaluation runs past the engine's limit.
	ErrTimeout = errors.New("evaluation timed out")
	// ErrSuperseded is returned to a caller whose evaluation finished after
	// a newer one had started on the same engine.
	ErrSuperseded = errors.New("evaluation superseded by newer request")
)

// evalResult passes an evaluation outcome back from the worker goroutine.
type evalResult struct {
	assembly *shape.Assembly
	errors   []EvalError
	err      error
}

// await blocks until the worker for generation gen reports, the engine's
// timeout elapses or ctx is done. A worker left running after a timeout
// still sends on its buffered channel and is then garbage.
func (e *Engine) await(ctx context.Context, ch <-chan evalResult, gen uint64) (*shape.Assembly, []EvalError, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	select {
	case res := <-ch:
		if current := e.generation.Load(); gen != current {
			e.logger.Debug("discarding stale evaluation")
			return nil, nil, ErrSuperseded
		}
		return res.assembly, res.errors, res.err

	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, nil, fmt.Errorf("%w after %s", ErrTimeout, e.timeout)
		}
		return nil, nil, ctx.Err()
	}
}
