package experiment

import (
	"context"
	"time"

	"github.com/rbrnka/three-body-problem/internal/config"
	"github.com/rbrnka/three-body-problem/internal/metrics"
	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// Result is a finished run with its diagnostics. Trajectory may be partial
// when Run also returns an error.
type Result struct {
	Trajectory *sim.Trajectory
	Metrics    map[string]float64
	Elapsed    time.Duration
}

// Experiment runs one scenario and evaluates the standard metrics on it.
type Experiment struct {
	problem sim.Problem
	simCfg  sim.Config
}

func New(cfg *config.Config) (*Experiment, error) {
	p, err := cfg.Problem()
	if err != nil {
		return nil, err
	}
	return &Experiment{problem: p, simCfg: cfg.SimConfig()}, nil
}

func (e *Experiment) Problem() sim.Problem  { return e.problem }
func (e *Experiment) SimConfig() sim.Config { return e.simCfg }

// Run integrates the scenario. A cancelled ctx prevents the run from
// starting; a run in progress always completes.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	tr, runErr := sim.Run(e.problem, e.simCfg)
	if tr == nil {
		return nil, runErr
	}

	field := physics.Field{G: e.simCfg.G, Softening: e.simCfg.Softening}
	return &Result{
		Trajectory: tr,
		Metrics:    metrics.Evaluate(tr, metrics.Defaults(field, tr.Masses())...),
		Elapsed:    time.Since(start),
	}, runErr
}
