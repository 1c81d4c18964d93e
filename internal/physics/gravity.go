package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// GravitationalConstantSI is G in m^3 kg^-1 s^-2.
const GravitationalConstantSI = 6.6743e-11

// AccelFunc returns the acceleration of every body given masses and positions.
// Implementations must be pure.
type AccelFunc func(masses []float64, positions []r3.Vec) []r3.Vec

// Field is direct-summation Newtonian gravity.
type Field struct {
	G         float64 // Gravitational constant
	Softening float64 // Plummer length, 0 for exact 1/r^2
}

// NewField returns a dimensionless field with G = 1 and no softening.
func NewField() Field {
	return Field{G: 1.0}
}

// Accelerations computes a_i = G * sum_{j!=i} m_j (r_j - r_i) / |r_j - r_i|^3.
// Each unordered pair is visited once and the reaction is applied to both bodies.
func (f Field) Accelerations(masses []float64, positions []r3.Vec) []r3.Vec {
	n := len(positions)
	acc := make([]r3.Vec, n)
	eps2 := f.Softening * f.Softening

	for i := 0; i < n; i++ {
		ri := positions[i]

		for j := i + 1; j < n; j++ {
			d := r3.Sub(positions[j], ri)
			r2 := r3.Norm2(d) + eps2

			r3Inv := 1.0 / (r2 * math.Sqrt(r2))

			acc[i] = r3.Add(acc[i], r3.Scale(f.G*masses[j]*r3Inv, d))
			acc[j] = r3.Sub(acc[j], r3.Scale(f.G*masses[i]*r3Inv, d))
		}
	}

	return acc
}

// Accelerations is the unsoftened field with gravitational constant g.
func Accelerations(g float64, masses []float64, positions []r3.Vec) []r3.Vec {
	return Field{G: g}.Accelerations(masses, positions)
}
