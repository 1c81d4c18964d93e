package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

func KineticEnergy(masses []float64, velocities []r3.Vec) float64 {
	ke := 0.0
	for i, v := range velocities {
		ke += 0.5 * masses[i] * r3.Norm2(v)
	}
	return ke
}

// PotentialEnergy sums -G m_i m_j / r_ij over unordered pairs, using the
// field's softening so it stays consistent with [Field.Accelerations].
func (f Field) PotentialEnergy(masses []float64, positions []r3.Vec) float64 {
	pe := 0.0
	eps2 := f.Softening * f.Softening
	for i := range positions {
		for j := i + 1; j < len(positions); j++ {
			r := math.Sqrt(r3.Norm2(r3.Sub(positions[j], positions[i])) + eps2)
			pe -= f.G * masses[i] * masses[j] / r
		}
	}
	return pe
}

// Energy is the total mechanical energy of the system.
func (f Field) Energy(masses []float64, positions, velocities []r3.Vec) float64 {
	return KineticEnergy(masses, velocities) + f.PotentialEnergy(masses, positions)
}

// Momentum returns the total linear momentum.
func Momentum(masses []float64, velocities []r3.Vec) r3.Vec {
	var p r3.Vec
	for i, v := range velocities {
		p = r3.Add(p, r3.Scale(masses[i], v))
	}
	return p
}

// AngularMomentum returns sum m_i (r_i x v_i) about the origin.
func AngularMomentum(masses []float64, positions, velocities []r3.Vec) r3.Vec {
	var l r3.Vec
	for i := range positions {
		l = r3.Add(l, r3.Scale(masses[i], r3.Cross(positions[i], velocities[i])))
	}
	return l
}

func CenterOfMass(masses []float64, positions []r3.Vec) r3.Vec {
	var c r3.Vec
	total := 0.0
	for i, p := range positions {
		c = r3.Add(c, r3.Scale(masses[i], p))
		total += masses[i]
	}
	if total == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/total, c)
}
