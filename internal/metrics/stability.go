package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/physics"
)

// Containment is the fraction of samples in which every body lies within
// radius of the centre of mass.
type Containment struct {
	name       string
	masses     []float64
	radius     float64
	violations int
	samples    int
}

func NewContainment(masses []float64, radius float64) *Containment {
	return &Containment{
		name:   "containment",
		masses: masses,
		radius: radius,
	}
}

func (c *Containment) Name() string {
	return c.name
}

func (c *Containment) Observe(positions, _ []r3.Vec, _ float64) {
	c.samples++
	com := physics.CenterOfMass(c.masses, positions)
	for _, p := range positions {
		if r3.Norm(r3.Sub(p, com)) > c.radius {
			c.violations++
			break
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.violations)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.violations = 0
	c.samples = 0
}

// MinSeparation is the closest any pair of bodies came at a sampled time.
// Close encounters between samples are not seen.
type MinSeparation struct {
	min float64
}

func NewMinSeparation() *MinSeparation {
	return &MinSeparation{min: math.Inf(1)}
}

func (m *MinSeparation) Name() string { return "min_separation" }

func (m *MinSeparation) Observe(positions, _ []r3.Vec, _ float64) {
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			m.min = math.Min(m.min, r3.Norm(r3.Sub(positions[j], positions[i])))
		}
	}
}

func (m *MinSeparation) Value() float64 { return m.min }

func (m *MinSeparation) Reset() { m.min = math.Inf(1) }
