package metrics

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// Metric accumulates a scalar over the samples of a trajectory.
type Metric interface {
	Name() string
	Observe(positions, velocities []r3.Vec, t float64)
	Value() float64
	Reset()
}

// Evaluate resets every metric, feeds it each sample of tr in time order and
// collects the results by name.
func Evaluate(tr *sim.Trajectory, ms ...Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for k, t := range tr.Times {
		pos, vel := tr.Positions(k), tr.Velocities(k)
		for _, m := range ms {
			m.Observe(pos, vel, t)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

// Defaults returns the standard diagnostics for a gravitational run.
func Defaults(field physics.Field, masses []float64) []Metric {
	return []Metric{
		NewEnergyDrift(field, masses),
		NewMomentumDrift(masses),
		NewAngularMomentumDrift(masses),
		NewMinSeparation(),
		NewContainment(masses, 3.0),
	}
}
