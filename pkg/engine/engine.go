// Package engine evaluates the shape construction language. It wraps
// zygomys in a sandboxed environment and produces a shape.Assembly from
// user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/metrics"
	"github.com/chazu/paracore/pkg/shape"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Engine wraps the zygomys interpreter for shape construction.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	generation atomic.Uint64
	timeout    time.Duration

	kernel  kernel.Kernel
	logger  *zap.Logger
	metrics *metrics.Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithKernel sets the kernel every constructed shape builds with.
func WithKernel(k kernel.Kernel) Option { return func(e *Engine) { e.kernel = k } }

// WithLogger sets the logger handed to the assembly and its shapes.
func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithMetrics sets the collector handed to every constructed shape.
func WithMetrics(c *metrics.Collector) Option { return func(e *Engine) { e.metrics = c } }

// WithTimeout bounds each evaluation. Non-positive values keep EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: zap.NewNop(), timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// shapeOptions are applied to every shape before the options written in
// the source.
func (e *Engine) shapeOptions() []shape.Option {
	opts := []shape.Option{shape.WithLogger(e.logger)}
	if e.kernel != nil {
		opts = append(opts, shape.WithKernel(e.kernel))
	}
	if e.metrics != nil {
		opts = append(opts, shape.WithMetrics(e.metrics))
	}
	return opts
}

// Evaluate takes Lisp source code and produces a new Assembly. Shapes are
// constructed but not built.
//
// Return semantics:
//   - On success: returns assembly + nil errors + nil error
//   - On parse/eval failure: returns nil assembly + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*shape.Assembly, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate bounded by ctx as well as the engine timeout.
// A result that arrives after a newer evaluation started is reported as
// ErrSuperseded.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*shape.Assembly, []EvalError, error) {
	gen := e.generation.Add(1)

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		a, evalErrs, err := e.evaluate(source)
		ch <- evalResult{assembly: a, errors: evalErrs, err: err}
	}()

	return e.await(ctx, ch, gen)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*shape.Assembly, []EvalError, error) {
	a := shape.NewAssembly(e.logger)

	// Empty source is a valid program that produces an empty assembly.
	if strings.TrimSpace(source) == "" {
		return a, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, a, e.shapeOptions())

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if err := a.Validate(); err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}

	e.logger.Debug("source evaluated", zap.Int("shapes", a.Len()))
	return a, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
