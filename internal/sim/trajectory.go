package sim

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
)

// BodyTrack is the sampled motion of one body.
type BodyTrack struct {
	Mass       float64
	Positions  []r3.Vec
	Velocities []r3.Vec
}

// Trajectory is the output of a run. Every track has len(Times) samples and
// sample k of every track belongs to Times[k]. Consumers must treat it as
// read-only.
type Trajectory struct {
	Times  []float64
	Bodies []BodyTrack
	Stats  dynamo.Stats
}

// Assemble reshapes flat per-sample states into per-body tracks. It neither
// resamples nor interpolates.
func Assemble(times []float64, states []dynamo.State, masses []float64) (*Trajectory, error) {
	if len(times) != len(states) {
		return nil, fmt.Errorf("%w: %d times but %d states", dynamo.ErrInvalidInput, len(times), len(states))
	}

	n := len(masses)
	tr := &Trajectory{
		Times:  make([]float64, len(times)),
		Bodies: make([]BodyTrack, n),
	}
	copy(tr.Times, times)

	for i := range tr.Bodies {
		tr.Bodies[i] = BodyTrack{
			Mass:       masses[i],
			Positions:  make([]r3.Vec, len(states)),
			Velocities: make([]r3.Vec, len(states)),
		}
	}

	for k, x := range states {
		if len(x) != 6*n {
			return nil, fmt.Errorf("%w: sample %d has %d values, want %d", dynamo.ErrInvalidInput, k, len(x), 6*n)
		}
		for i := range tr.Bodies {
			tr.Bodies[i].Positions[k] = x.Position(i)
			tr.Bodies[i].Velocities[k] = x.Velocity(i)
		}
	}

	return tr, nil
}

func (tr *Trajectory) Len() int       { return len(tr.Times) }
func (tr *Trajectory) NumBodies() int { return len(tr.Bodies) }

func (tr *Trajectory) Masses() []float64 {
	m := make([]float64, len(tr.Bodies))
	for i, b := range tr.Bodies {
		m[i] = b.Mass
	}
	return m
}

// Positions returns every body's position at sample k.
func (tr *Trajectory) Positions(k int) []r3.Vec {
	out := make([]r3.Vec, len(tr.Bodies))
	for i, b := range tr.Bodies {
		out[i] = b.Positions[k]
	}
	return out
}

// Velocities returns every body's velocity at sample k.
func (tr *Trajectory) Velocities(k int) []r3.Vec {
	out := make([]r3.Vec, len(tr.Bodies))
	for i, b := range tr.Bodies {
		out[i] = b.Velocities[k]
	}
	return out
}

// State packs sample k back into the flat layout.
func (tr *Trajectory) State(k int) dynamo.State {
	return dynamo.Pack(tr.Positions(k), tr.Velocities(k))
}

// Size describes the memory a trajectory will occupy.
type Size struct {
	Samples int   // per-body samples, numBodies * gridLen
	Bytes   int64 // approximate payload: times plus position and velocity vectors
}

// ExpectedSize reports how large a trajectory for the given body count and
// grid length will be, so callers can refuse oversize runs up front.
func ExpectedSize(numBodies, gridLen int) Size {
	samples := numBodies * gridLen
	return Size{
		Samples: samples,
		Bytes:   int64(gridLen)*8 + int64(samples)*2*24,
	}
}
