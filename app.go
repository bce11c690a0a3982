// Package paracore runs parametric reactor component source through the
// whole pipeline: evaluation, solid builds and meshing.
package paracore

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/config"
	"github.com/chazu/paracore/pkg/engine"
	"github.com/chazu/paracore/pkg/kernel"
	"github.com/chazu/paracore/pkg/kernel/sdfx"
	"github.com/chazu/paracore/pkg/metrics"
	"github.com/chazu/paracore/pkg/shape"
	"github.com/chazu/paracore/pkg/tessellate"
)

// colorPalette replaces the default gray so that uncolored shapes stay
// distinguishable.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the source -> assembly -> solids -> meshes pipeline.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	logger *zap.Logger
	cfg    *config.Config
}

// MeshData is the JSON-serializable mesh format handed to viewers.
type MeshData struct {
	Vertices []float32 `json:"vertices,omitempty"`
	Normals  []float32 `json:"normals,omitempty"`
	Indices  []uint32  `json:"indices,omitempty"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
	Material string    `json:"material,omitempty"`
	Volume   float64   `json:"volume"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes []MeshData      `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

// NewApp creates an App with the default configuration and no logging.
func NewApp() *App {
	return NewAppWithConfig(config.Default(), zap.NewNop(), nil)
}

// NewAppWithConfig creates an App whose kernel resolution and build
// parallelism come from cfg. m may be nil.
func NewAppWithConfig(cfg *config.Config, logger *zap.Logger, m *metrics.Collector) *App {
	k := sdfx.NewFromConfig(cfg.Kernel, sdfx.WithMetrics(m))
	return &App{
		engine: engine.NewEngine(engine.WithKernel(k), engine.WithLogger(logger), engine.WithMetrics(m)),
		kernel: k,
		logger: logger,
		cfg:    cfg,
	}
}

// Assemble evaluates source into an assembly and builds every shape.
// Eval errors are returned in the slice; build failures as the error.
func (a *App) Assemble(ctx context.Context, source string) (*shape.Assembly, []EvalErrorData, error) {
	asm, evalErrs, err := a.engine.EvaluateContext(ctx, source)
	if err != nil {
		a.logger.Error("evaluate fatal error", zap.Error(err))
		return nil, []EvalErrorData{{Message: err.Error()}}, nil
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			out[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return nil, out, nil
	}
	if err := asm.BuildAll(ctx, a.cfg.Build.Limit()); err != nil {
		return nil, nil, err
	}
	return asm, nil, nil
}

// Evaluate takes Lisp source and returns mesh data + errors. With
// geometry false the meshes carry names, colors and volumes only.
func (a *App) Evaluate(ctx context.Context, source string, geometry bool) EvalResult {
	result := EvalResult{
		Meshes: []MeshData{},
		Errors: []EvalErrorData{},
	}

	asm, evalErrs, err := a.Assemble(ctx, source)
	if len(evalErrs) > 0 {
		result.Errors = append(result.Errors, evalErrs...)
		return result
	}
	if err != nil {
		a.logger.Warn("build failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: "build failed: " + err.Error()})
		return result
	}

	var meshes []*kernel.Mesh
	if geometry {
		meshes, err = tessellate.Assembly(ctx, asm, a.kernel)
		if err != nil {
			a.logger.Warn("tessellate failed", zap.Error(err))
			result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
			return result
		}
	}

	for i, s := range asm.Shapes() {
		v, err := s.Volume()
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			continue
		}
		md := MeshData{
			PartName: s.Name(),
			Color:    hexColor(s.Color(), i),
			Material: s.MaterialTag(),
			Volume:   v,
		}
		if meshes != nil {
			md.Vertices = meshes[i].Vertices
			md.Normals = meshes[i].Normals
			md.Indices = meshes[i].Indices
		}
		result.Meshes = append(result.Meshes, md)
	}
	return result
}

// hexColor formats rgba as #RRGGBB; the default gray takes a palette entry.
func hexColor(rgba [4]float64, i int) string {
	if rgba == shape.DefaultColor {
		return colorPalette[i%len(colorPalette)]
	}
	c := func(f float64) int { return int(math.Round(math.Max(0, math.Min(1, f)) * 255)) }
	return fmt.Sprintf("#%02X%02X%02X", c(rgba[0]), c(rgba[1]), c(rgba[2]))
}
