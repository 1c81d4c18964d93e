package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// State is the packed position/velocity buffer described in the package doc.
type State []float64

// NewState returns a zeroed State sized for numBodies bodies.
func NewState(numBodies int) State {
	return make(State, 6*numBodies)
}

// Pack builds a State from per-body positions and velocities.
func Pack(positions, velocities []r3.Vec) State {
	s := NewState(len(positions))
	for i := range positions {
		s.SetPosition(i, positions[i])
		s.SetVelocity(i, velocities[i])
	}
	return s
}

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Norm is the Euclidean length of the whole buffer.
func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// NumBodies reports how many bodies the buffer describes.
func (s State) NumBodies() int { return len(s) / 6 }

// PositionBlock returns the position half of the buffer. It aliases s.
func (s State) PositionBlock() State { return s[:len(s)/2] }

// VelocityBlock returns the velocity half of the buffer. It aliases s.
func (s State) VelocityBlock() State { return s[len(s)/2:] }

func (s State) Position(i int) r3.Vec {
	o := 3 * i
	return r3.Vec{X: s[o], Y: s[o+1], Z: s[o+2]}
}

func (s State) Velocity(i int) r3.Vec {
	o := len(s)/2 + 3*i
	return r3.Vec{X: s[o], Y: s[o+1], Z: s[o+2]}
}

func (s State) SetPosition(i int, v r3.Vec) {
	o := 3 * i
	s[o], s[o+1], s[o+2] = v.X, v.Y, v.Z
}

func (s State) SetVelocity(i int, v r3.Vec) {
	o := len(s)/2 + 3*i
	s[o], s[o+1], s[o+2] = v.X, v.Y, v.Z
}

// Positions unpacks the position block into vectors.
func (s State) Positions() []r3.Vec {
	out := make([]r3.Vec, s.NumBodies())
	for i := range out {
		out[i] = s.Position(i)
	}
	return out
}

// Velocities unpacks the velocity block into vectors.
func (s State) Velocities() []r3.Vec {
	out := make([]r3.Vec, s.NumBodies())
	for i := range out {
		out[i] = s.Velocity(i)
	}
	return out
}

// DerivFunc returns dX/dt at time t. Implementations must not modify x and
// must return a fresh buffer of the same length.
type DerivFunc func(t float64, x State) State

// Stats records the work done by an adaptive solver during one run.
type Stats struct {
	Steps       int     `json:"steps"`
	Rejected    int     `json:"rejected"`
	Evaluations int     `json:"evaluations"`
	LastStep    float64 `json:"last_step"`
}
