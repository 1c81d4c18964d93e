package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/integrators"
	"github.com/rbrnka/three-body-problem/internal/physics"
)

// Body is a point mass with its initial conditions.
type Body struct {
	Mass     float64
	Position r3.Vec
	Velocity r3.Vec
}

// Problem is one initial value problem: bodies at TStart, integrated to
// TEnd and sampled at every Grid time.
type Problem struct {
	Bodies []Body
	TStart float64
	TEnd   float64
	Grid   []float64
}

// String summarizes a problem for diagnostics.
func (p Problem) String() string {
	return fmt.Sprintf("%d bodies, t=[%g, %g], %d samples", len(p.Bodies), p.TStart, p.TEnd, len(p.Grid))
}

func (p Problem) masses() []float64 {
	m := make([]float64, len(p.Bodies))
	for i, b := range p.Bodies {
		m[i] = b.Mass
	}
	return m
}

func (p Problem) initialState() dynamo.State {
	x := dynamo.NewState(len(p.Bodies))
	for i, b := range p.Bodies {
		x.SetPosition(i, b.Position)
		x.SetVelocity(i, b.Velocity)
	}
	return x
}

// FieldKind selects the acceleration model.
type FieldKind string

const (
	FieldDirect    FieldKind = "direct"
	FieldBarnesHut FieldKind = "barneshut"
)

type Config struct {
	G         float64
	Softening float64
	Field     FieldKind
	Theta     float64 // Barnes-Hut opening angle

	// Accel, if set, replaces the model selected by Field.
	Accel physics.AccelFunc

	Tolerances  integrators.Tolerances
	InitialStep float64
	MaxStep     float64
	MinStep     float64
	MaxSteps    int

	// MaxSamples, if > 0, rejects problems whose trajectory would hold more
	// than this many per-body samples.
	MaxSamples int
}

func DefaultConfig() Config {
	opts := integrators.DefaultOptions()
	return Config{
		G:          1.0,
		Field:      FieldDirect,
		Theta:      0.5,
		Tolerances: opts.Tolerances,
		MaxSteps:   opts.MaxSteps,
	}
}

func (c Config) accel() physics.AccelFunc {
	if c.Accel != nil {
		return c.Accel
	}
	if c.Field == FieldBarnesHut {
		return physics.NewBarnesHut(c.G, c.Theta, c.Softening).Accelerations
	}
	return physics.Field{G: c.G, Softening: c.Softening}.Accelerations
}

func (c Config) solverOptions() integrators.Options {
	return integrators.Options{
		Tolerances:  c.Tolerances,
		InitialStep: c.InitialStep,
		MaxStep:     c.MaxStep,
		MinStep:     c.MinStep,
		MaxSteps:    c.MaxSteps,
	}
}
