package analysis

import (
	"fmt"
	"math"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// LyapunovResult holds the running exponent estimate after each window.
type LyapunovResult struct {
	Exponent  float64
	Times     []float64
	Estimates []float64
}

// Lyapunov estimates the largest Lyapunov exponent of p by integrating a
// reference and a perturbed copy side by side.
//
// The span [TStart, TEnd] is split into equal windows. After each window the
// phase-space separation is measured, its log growth accumulated and the
// perturbed state pulled back to the initial distance along the same
// direction:
//
//	lambda = (1/T) * sum ln(|dx_k| / d0)
//
// The first coordinate of the first body carries the initial perturbation.
// p.Grid is ignored.
func Lyapunov(p sim.Problem, cfg sim.Config, perturbation float64, windows int) (*LyapunovResult, error) {
	if perturbation <= 0 || math.IsInf(perturbation, 0) || math.IsNaN(perturbation) {
		return nil, fmt.Errorf("%w: perturbation must be positive, got %g", dynamo.ErrInvalidInput, perturbation)
	}
	if windows <= 0 {
		return nil, fmt.Errorf("%w: need at least one window, got %d", dynamo.ErrInvalidInput, windows)
	}
	if len(p.Bodies) == 0 {
		return nil, fmt.Errorf("%w: no bodies", dynamo.ErrInvalidInput)
	}

	masses := make([]float64, len(p.Bodies))
	x := dynamo.NewState(len(p.Bodies))
	for i, b := range p.Bodies {
		masses[i] = b.Mass
		x.SetPosition(i, b.Position)
		x.SetVelocity(i, b.Velocity)
	}
	xp := x.Clone()
	xp[0] += perturbation

	span := p.TEnd - p.TStart
	dt := span / float64(windows)
	res := &LyapunovResult{
		Times:     make([]float64, 0, windows),
		Estimates: make([]float64, 0, windows),
	}

	sumLog := 0.0
	for w := 0; w < windows; w++ {
		t0 := p.TStart + float64(w)*dt
		t1 := p.TStart + float64(w+1)*dt
		if w == windows-1 {
			t1 = p.TEnd
		}

		var err error
		if x, err = advance(masses, x, t0, t1, cfg); err != nil {
			return res, err
		}
		if xp, err = advance(masses, xp, t0, t1, cfg); err != nil {
			return res, err
		}

		diff := make(dynamo.State, len(x))
		for i := range x {
			diff[i] = xp[i] - x[i]
		}
		sep := diff.Norm()

		if sep > 0 {
			sumLog += math.Log(sep / perturbation)
			scale := perturbation / sep
			for i := range xp {
				xp[i] = x[i] + (xp[i]-x[i])*scale
			}
		}

		res.Times = append(res.Times, t1)
		res.Estimates = append(res.Estimates, sumLog/(t1-p.TStart))
	}

	res.Exponent = res.Estimates[len(res.Estimates)-1]
	return res, nil
}

// advance integrates x from t0 to t1 and returns the end state.
func advance(masses []float64, x dynamo.State, t0, t1 float64, cfg sim.Config) (dynamo.State, error) {
	bodies := make([]sim.Body, len(masses))
	for i := range bodies {
		bodies[i] = sim.Body{Mass: masses[i], Position: x.Position(i), Velocity: x.Velocity(i)}
	}

	tr, err := sim.Run(sim.Problem{Bodies: bodies, TStart: t0, TEnd: t1, Grid: []float64{t1}}, cfg)
	if err != nil {
		return nil, fmt.Errorf("lyapunov window [%g, %g]: %w", t0, t1, err)
	}
	return tr.State(0), nil
}
