package paracore

import (
	"context"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chazu/paracore/pkg/config"
	"github.com/chazu/paracore/pkg/metrics"
	"github.com/chazu/paracore/pkg/shape"
)

// testConfig keeps meshing coarse so the end-to-end tests stay fast.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Kernel.MeshCells = 32
	cfg.Kernel.SplineSegments = 8
	cfg.Kernel.ArcSegments = 16
	cfg.Kernel.VolumeSamples = 24
	return cfg
}

func newTestApp() *App {
	return NewAppWithConfig(testConfig(), zap.NewNop(), nil)
}

// TestE2EReactorExample exercises the full pipeline: source -> engine ->
// assembly -> solids, the path every caller of Evaluate takes.
func TestE2EReactorExample(t *testing.T) {
	app := newTestApp()

	source, err := os.ReadFile("examples/reactor.paracore")
	require.NoError(t, err)

	result := app.Evaluate(context.Background(), string(source), false)
	require.Empty(t, result.Errors)

	want := []string{"port", "blanket", "pf-upper", "pf-lower", "tf"}
	require.Len(t, result.Meshes, len(want))
	for i, m := range result.Meshes {
		assert.Equal(t, want[i], m.PartName)
		assert.Greater(t, m.Volume, 0.0, m.PartName)
		assert.Empty(t, m.Vertices, "volume-only results carry no geometry")
	}

	assert.Equal(t, "#4A90D9", result.Meshes[0].Color)
	assert.Equal(t, "#33CC66", result.Meshes[1].Color)
	assert.Equal(t, "eurofer", result.Meshes[1].Material)
	assert.Equal(t, "#2ECC71", result.Meshes[2].Color)
	assert.Equal(t, "truncated_tri_mat", result.Meshes[2].Material)
	assert.Equal(t, "#0000FF", result.Meshes[4].Color)

	// Two ports of 40 x 20 x 30.
	assert.InDelta(t, 2*40*20*30, result.Meshes[0].Volume, 1e-6)
}

// TestE2EPortCutRemovesPortVolume checks that the port, lying wholly inside
// the blanket, removes exactly its own volume.
func TestE2EPortCutRemovesPortVolume(t *testing.T) {
	app := newTestApp()
	const blanket = `
(rotate-mixed "blanket"
  :points [[120 -60 :straight] [160 -60 :spline] [175 0 :spline] [160 60] [120 60]])
`
	const port = `(extrude-straight "port" :points [[130 -10] [170 -10] [170 10] [130 10]] :distance 30 :azimuth [0 180])`

	whole := app.Evaluate(context.Background(), blanket, false)
	require.Empty(t, whole.Errors)
	cut := app.Evaluate(context.Background(), port+`
(rotate-mixed "blanket"
  :points [[120 -60 :straight] [160 -60 :spline] [175 0 :spline] [160 60] [120 60]]
  :cut (shape "port"))
`, false)
	require.Empty(t, cut.Errors)

	assert.InDelta(t, whole.Meshes[0].Volume-2*40*20*30, cut.Meshes[1].Volume, 1e-3)
}

// TestE2EMeshes tessellates a small assembly.
func TestE2EMeshes(t *testing.T) {
	app := newTestApp()
	source := `
(rotate-straight "ring" :points [[10 0] [20 0] [20 10] [10 10]] :color [1 0 0])
(extrude-straight "block" :points [[25 0] [30 0] [30 5] [25 5]] :distance 2)
`
	result := app.Evaluate(context.Background(), source, true)
	require.Empty(t, result.Errors)
	require.Len(t, result.Meshes, 2)

	for _, m := range result.Meshes {
		assert.NotEmpty(t, m.Vertices, m.PartName)
		assert.Len(t, m.Normals, len(m.Vertices), m.PartName)
		assert.Len(t, m.Indices, len(m.Vertices)/3, m.PartName)
	}
	assert.Equal(t, "ring", result.Meshes[0].PartName)
	assert.Equal(t, "#FF0000", result.Meshes[0].Color)
	assert.InDelta(t, 2*3.141592653589793*15*100, result.Meshes[0].Volume, 1e-6)
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), "", true)

	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Meshes, "JSON should serialize as [] not null")
	assert.NotNil(t, result.Errors)
	assert.Empty(t, result.Meshes)
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	result := newTestApp().Evaluate(context.Background(), `(rotate-straight "test"`, false)

	require.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Meshes)
}

func TestAppRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)
	app := NewAppWithConfig(testConfig(), zap.NewNop(), collector)

	const source = `(rotate-straight "ring" :points [[10 0] [20 0] [20 10] [10 10]])`
	for i := 0; i < 2; i++ {
		result := app.Evaluate(context.Background(), source, false)
		require.Empty(t, result.Errors)
		require.Len(t, result.Meshes, 1)
	}

	// Each evaluation creates fresh shapes, so each one builds once.
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.BuildsTotal.WithLabelValues(shape.FamilyPoints, metrics.ResultOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(collector.KernelCalls.WithLabelValues("revolve")))
}
