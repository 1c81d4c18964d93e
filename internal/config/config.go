package config

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/integrators"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

const (
	DefaultPreset  = "chaos"
	DefaultSamples = 2000
	DefaultTheta   = 0.5
)

// Config is a scenario file: initial conditions, sampling and solver
// settings. Vectors are written as [x, y, z].
type Config struct {
	Name      string       `yaml:"name,omitempty"`
	Bodies    []BodyConfig `yaml:"bodies"`
	TStart    float64      `yaml:"t_start"`
	TEnd      float64      `yaml:"t_end"`
	Samples   int          `yaml:"samples"`
	G         float64      `yaml:"g"`
	Softening float64      `yaml:"softening,omitempty"`
	Field     string       `yaml:"field,omitempty"`
	Theta     float64      `yaml:"theta,omitempty"`
	Solver    SolverConfig `yaml:"solver"`
}

type BodyConfig struct {
	Mass     float64   `yaml:"mass"`
	Position []float64 `yaml:"position,flow"`
	Velocity []float64 `yaml:"velocity,flow"`
}

type SolverConfig struct {
	RTol        float64 `yaml:"rtol"`
	ATol        float64 `yaml:"atol"`
	InitialStep float64 `yaml:"initial_step,omitempty"`
	MaxStep     float64 `yaml:"max_step,omitempty"`
	MinStep     float64 `yaml:"min_step,omitempty"`
	MaxSteps    int     `yaml:"max_steps,omitempty"`
}

// DefaultConfig returns the default preset.
func DefaultConfig() *Config {
	return GetPreset(DefaultPreset)
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Name = ""
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Problem converts the scenario into a simulation problem sampled on
// Samples evenly spaced times spanning [TStart, TEnd].
func (c *Config) Problem() (sim.Problem, error) {
	bodies := make([]sim.Body, len(c.Bodies))
	for i, b := range c.Bodies {
		pos, err := vec(b.Position)
		if err != nil {
			return sim.Problem{}, fmt.Errorf("body %d position: %w", i, err)
		}
		vel, err := vec(b.Velocity)
		if err != nil {
			return sim.Problem{}, fmt.Errorf("body %d velocity: %w", i, err)
		}
		bodies[i] = sim.Body{Mass: b.Mass, Position: pos, Velocity: vel}
	}

	return sim.Problem{
		Bodies: bodies,
		TStart: c.TStart,
		TEnd:   c.TEnd,
		Grid:   sim.Linspace(c.TStart, c.TEnd, c.Samples),
	}, nil
}

// SimConfig returns the solver and field settings. Zero solver fields fall
// back to the library defaults.
func (c *Config) SimConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.G = c.G
	cfg.Softening = c.Softening
	if c.Field != "" {
		cfg.Field = sim.FieldKind(c.Field)
	}
	if c.Theta > 0 {
		cfg.Theta = c.Theta
	}

	tol := integrators.Tolerances{Abs: c.Solver.ATol, Rel: c.Solver.RTol}
	if tol.Abs > 0 {
		cfg.Tolerances.Abs = tol.Abs
	}
	if tol.Rel > 0 {
		cfg.Tolerances.Rel = tol.Rel
	}
	cfg.InitialStep = c.Solver.InitialStep
	cfg.MaxStep = c.Solver.MaxStep
	cfg.MinStep = c.Solver.MinStep
	if c.Solver.MaxSteps > 0 {
		cfg.MaxSteps = c.Solver.MaxSteps
	}
	return cfg
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Bodies = make([]BodyConfig, len(c.Bodies))
	for i, b := range c.Bodies {
		out.Bodies[i] = BodyConfig{
			Mass:     b.Mass,
			Position: append([]float64(nil), b.Position...),
			Velocity: append([]float64(nil), b.Velocity...),
		}
	}
	return &out
}

func vec(v []float64) (r3.Vec, error) {
	if len(v) != 3 {
		return r3.Vec{}, fmt.Errorf("%w: want 3 components, got %d", dynamo.ErrInvalidInput, len(v))
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
