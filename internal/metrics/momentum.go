package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/physics"
)

// MomentumDrift is the largest |P(t) - P(0)| over the run.
type MomentumDrift struct {
	masses   []float64
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewMomentumDrift(masses []float64) *MomentumDrift {
	return &MomentumDrift{masses: masses}
}

func (m *MomentumDrift) Name() string { return "momentum_drift" }

func (m *MomentumDrift) Observe(_, velocities []r3.Vec, _ float64) {
	p := physics.Momentum(m.masses, velocities)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, r3.Norm(r3.Sub(p, m.initial)))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = r3.Vec{}
	m.maxDrift = 0
	m.samples = 0
}

// AngularMomentumDrift is the largest |L(t) - L(0)| relative to |L(0)|.
type AngularMomentumDrift struct {
	masses   []float64
	initial  r3.Vec
	maxDrift float64
	samples  int
}

func NewAngularMomentumDrift(masses []float64) *AngularMomentumDrift {
	return &AngularMomentumDrift{masses: masses}
}

func (a *AngularMomentumDrift) Name() string { return "angular_momentum_drift" }

func (a *AngularMomentumDrift) Observe(positions, velocities []r3.Vec, _ float64) {
	l := physics.AngularMomentum(a.masses, positions, velocities)
	if a.samples == 0 {
		a.initial = l
	}
	a.samples++

	diff := r3.Norm(r3.Sub(l, a.initial))
	if ref := r3.Norm(a.initial); ref > 0 {
		diff /= ref
	}
	a.maxDrift = math.Max(a.maxDrift, diff)
}

func (a *AngularMomentumDrift) Value() float64 { return a.maxDrift }

func (a *AngularMomentumDrift) Reset() {
	a.initial = r3.Vec{}
	a.maxDrift = 0
	a.samples = 0
}
