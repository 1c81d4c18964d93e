package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/physics"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

// EnergyDrift tracks the largest relative deviation of total energy from its
// value at the first sample.
type EnergyDrift struct {
	name          string
	field         physics.Field
	masses        []float64
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(field physics.Field, masses []float64) *EnergyDrift {
	return &EnergyDrift{
		name:   "energy_drift",
		field:  field,
		masses: masses,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(positions, velocities []r3.Vec, t float64) {
	energy := e.field.Energy(e.masses, positions, velocities)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	e.maxDrift = math.Max(e.maxDrift, relative(energy, e.initialEnergy))
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// relative is |v-ref|/|ref|, falling back to the absolute difference when
// ref is zero.
func relative(v, ref float64) float64 {
	if ref == 0 {
		return math.Abs(v)
	}
	return math.Abs(v-ref) / math.Abs(ref)
}

// EnergyError returns the relative energy error at every sample, for plotting.
func EnergyError(tr *sim.Trajectory, field physics.Field) []float64 {
	masses := tr.Masses()
	out := make([]float64, tr.Len())
	if tr.Len() == 0 {
		return out
	}

	e0 := field.Energy(masses, tr.Positions(0), tr.Velocities(0))
	for k := range out {
		e := field.Energy(masses, tr.Positions(k), tr.Velocities(k))
		out[k] = relative(e, e0)
	}
	return out
}
