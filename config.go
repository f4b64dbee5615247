package impulse

import (
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/impulse/material"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jinzhu/copier"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid world config")

const (
	BroadphaseNaive = "naive"
	BroadphaseGrid  = "grid"
)

// ContactMaterialConfig mirrors material.ContactMaterialOptions.
type ContactMaterialConfig struct {
	Friction                   float64 `yaml:"friction"`
	Restitution                float64 `yaml:"restitution"`
	ContactEquationStiffness   float64 `yaml:"contactEquationStiffness"`
	ContactEquationRelaxation  float64 `yaml:"contactEquationRelaxation"`
	FrictionEquationStiffness  float64 `yaml:"frictionEquationStiffness"`
	FrictionEquationRelaxation float64 `yaml:"frictionEquationRelaxation"`
}

type SolverConfig struct {
	Iterations int     `yaml:"iterations"`
	Tolerance  float64 `yaml:"tolerance"`
}

type BroadphaseConfig struct {
	Kind             string  `yaml:"kind"`
	CellSize         float64 `yaml:"cellSize"`
	UseBoundingBoxes bool    `yaml:"useBoundingBoxes"`
}

type LoggingConfig struct {
	Prefix string `yaml:"prefix"`
	Debug  bool   `yaml:"debug"`
}

// WorldConfig is the file form of the world settings.
type WorldConfig struct {
	Gravity                [3]float64            `yaml:"gravity"`
	AllowSleep             bool                  `yaml:"allowSleep"`
	QuatNormalizeSkip      int                   `yaml:"quatNormalizeSkip"`
	QuatNormalizeFast      bool                  `yaml:"quatNormalizeFast"`
	FrictionReduction      bool                  `yaml:"frictionReduction"`
	Solver                 SolverConfig          `yaml:"solver"`
	Broadphase             BroadphaseConfig      `yaml:"broadphase"`
	DefaultContactMaterial ContactMaterialConfig `yaml:"defaultContactMaterial"`
	Logging                LoggingConfig         `yaml:"logging"`
	Profiling              bool                  `yaml:"profiling"`
}

func DefaultWorldConfig() WorldConfig {
	cm := material.DefaultContactMaterialOptions()
	cfg := WorldConfig{
		Gravity: [3]float64{0, 0, -9.82},
		Solver: SolverConfig{
			Iterations: 10,
			Tolerance:  1e-7,
		},
		Broadphase: BroadphaseConfig{
			Kind:     BroadphaseNaive,
			CellSize: 4,
		},
		Logging: LoggingConfig{
			Prefix: "impulse",
		},
	}
	// Field names match, so the library defaults carry over as is.
	if err := copier.Copy(&cfg.DefaultContactMaterial, &cm); err != nil {
		panic(err)
	}
	cfg.DefaultContactMaterial.Restitution = 0
	return cfg
}

// ParseWorldConfig reads YAML on top of the defaults and validates the result.
func ParseWorldConfig(data []byte) (WorldConfig, error) {
	cfg := DefaultWorldConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse world config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadWorldConfig(path string) (WorldConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return WorldConfig{}, fmt.Errorf("load world config %s: %w", path, err)
	}
	cfg, err := ParseWorldConfig(data)
	if err != nil {
		return cfg, fmt.Errorf("load world config %s: %w", path, err)
	}
	return cfg, nil
}

func (c WorldConfig) Validate() error {
	if c.Solver.Iterations <= 0 {
		return fmt.Errorf("%w: solver iterations must be positive, got %d", ErrInvalidConfig, c.Solver.Iterations)
	}
	if c.Solver.Tolerance < 0 {
		return fmt.Errorf("%w: solver tolerance must not be negative", ErrInvalidConfig)
	}
	if c.QuatNormalizeSkip < 0 {
		return fmt.Errorf("%w: quatNormalizeSkip must not be negative", ErrInvalidConfig)
	}
	switch c.Broadphase.Kind {
	case BroadphaseNaive:
	case BroadphaseGrid:
		if c.Broadphase.CellSize <= 0 {
			return fmt.Errorf("%w: grid cell size must be positive, got %g", ErrInvalidConfig, c.Broadphase.CellSize)
		}
	default:
		return fmt.Errorf("%w: unknown broadphase %q", ErrInvalidConfig, c.Broadphase.Kind)
	}
	cm := c.DefaultContactMaterial
	if cm.ContactEquationStiffness <= 0 || cm.FrictionEquationStiffness <= 0 {
		return fmt.Errorf("%w: equation stiffness must be positive", ErrInvalidConfig)
	}
	if cm.ContactEquationRelaxation <= 0 || cm.FrictionEquationRelaxation <= 0 {
		return fmt.Errorf("%w: equation relaxation must be positive", ErrInvalidConfig)
	}
	return nil
}

// NewWorldFromConfig validates cfg and builds a world from it.
func NewWorldFromConfig(cfg WorldConfig) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := NewWorld()
	w.SetLogger(NewDefaultLogger(cfg.Logging.Prefix+" "+w.UUID.String()[:8], cfg.Logging.Debug))
	w.Gravity = mgl64.Vec3(cfg.Gravity)
	w.AllowSleep = cfg.AllowSleep
	w.QuatNormalizeSkip = cfg.QuatNormalizeSkip
	w.QuatNormalizeFast = cfg.QuatNormalizeFast
	w.DoProfiling = cfg.Profiling
	w.Narrowphase.EnableFrictionReduction = cfg.FrictionReduction

	solver := NewGSSolver()
	solver.Iterations = cfg.Solver.Iterations
	solver.Tolerance = cfg.Solver.Tolerance
	w.Solver = solver

	switch cfg.Broadphase.Kind {
	case BroadphaseGrid:
		bp := NewGridBroadphase(cfg.Broadphase.CellSize)
		bp.UseBoundingBoxes = cfg.Broadphase.UseBoundingBoxes
		w.Broadphase = bp
	default:
		bp := NewNaiveBroadphase()
		bp.UseBoundingBoxes = cfg.Broadphase.UseBoundingBoxes
		w.Broadphase = bp
	}

	var opts material.ContactMaterialOptions
	if err := copier.Copy(&opts, &cfg.DefaultContactMaterial); err != nil {
		return nil, fmt.Errorf("default contact material: %w", err)
	}
	w.DefaultContactMaterial = material.NewContactMaterial(w.DefaultMaterial, w.DefaultMaterial, opts)

	w.Logger.Debugf("world created from config: broadphase=%s gravity=%v sleep=%v", cfg.Broadphase.Kind, cfg.Gravity, cfg.AllowSleep)
	return w, nil
}
