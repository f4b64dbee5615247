package impulse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorldConfig(t *testing.T) {
	cfg := DefaultWorldConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, [3]float64{0, 0, -9.82}, cfg.Gravity)
	assert.Equal(t, BroadphaseNaive, cfg.Broadphase.Kind)
	assert.Equal(t, 0.3, cfg.DefaultContactMaterial.Friction)
	assert.Zero(t, cfg.DefaultContactMaterial.Restitution)
	assert.Equal(t, 1e7, cfg.DefaultContactMaterial.ContactEquationStiffness)
	assert.Equal(t, 3.0, cfg.DefaultContactMaterial.FrictionEquationRelaxation)
}

func TestParseWorldConfig_OverridesDefaults(t *testing.T) {
	cfg, err := ParseWorldConfig([]byte(`
gravity: [0, -9.81, 0]
allowSleep: true
broadphase:
  kind: grid
  cellSize: 2
solver:
  iterations: 20
defaultContactMaterial:
  friction: 0.5
`))
	require.NoError(t, err)

	assert.Equal(t, [3]float64{0, -9.81, 0}, cfg.Gravity)
	assert.True(t, cfg.AllowSleep)
	assert.Equal(t, 20, cfg.Solver.Iterations)
	assert.Equal(t, 1e-7, cfg.Solver.Tolerance)
	assert.Equal(t, BroadphaseGrid, cfg.Broadphase.Kind)
	assert.Equal(t, 0.5, cfg.DefaultContactMaterial.Friction)
	assert.Equal(t, 1e7, cfg.DefaultContactMaterial.ContactEquationStiffness)
	assert.Equal(t, "impulse", cfg.Logging.Prefix)
}

func TestParseWorldConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown broadphase", "broadphase:\n  kind: octree\n"},
		{"zero iterations", "solver:\n  iterations: 0\n"},
		{"negative tolerance", "solver:\n  tolerance: -1\n"},
		{"grid without cells", "broadphase:\n  kind: grid\n  cellSize: 0\n"},
		{"negative skip", "quatNormalizeSkip: -2\n"},
		{"zero stiffness", "defaultContactMaterial:\n  contactEquationStiffness: 0\n"},
		{"zero relaxation", "defaultContactMaterial:\n  frictionEquationRelaxation: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseWorldConfig([]byte(tt.yaml))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	_, err := ParseWorldConfig([]byte("gravity: [1, 2"))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadWorldConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profiling: true\nquatNormalizeSkip: 2\n"), 0o644))

	cfg, err := LoadWorldConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Profiling)
	assert.Equal(t, 2, cfg.QuatNormalizeSkip)

	_, err = LoadWorldConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewWorldFromConfig(t *testing.T) {
	cfg := DefaultWorldConfig()
	cfg.Gravity = [3]float64{0, -10, 0}
	cfg.AllowSleep = true
	cfg.FrictionReduction = true
	cfg.Solver.Iterations = 7
	cfg.Broadphase.Kind = BroadphaseGrid
	cfg.Broadphase.CellSize = 3
	cfg.Broadphase.UseBoundingBoxes = true
	cfg.DefaultContactMaterial.Friction = 0.7

	w, err := NewWorldFromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, mgl64.Vec3{0, -10, 0}, w.Gravity)
	assert.True(t, w.AllowSleep)
	assert.True(t, w.Narrowphase.EnableFrictionReduction)
	solver, ok := w.Solver.(*GSSolver)
	require.True(t, ok)
	assert.Equal(t, 7, solver.Iterations)
	grid, ok := w.Broadphase.(*GridBroadphase)
	require.True(t, ok)
	assert.True(t, grid.UseBoundingBoxes)
	assert.Equal(t, 3.0, grid.grid.CellSize())
	assert.Equal(t, 0.7, w.DefaultContactMaterial.Friction)
	assert.Equal(t, 1e7, w.DefaultContactMaterial.ContactEquationStiffness)

	cfg.Solver.Iterations = 0
	_, err = NewWorldFromConfig(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
