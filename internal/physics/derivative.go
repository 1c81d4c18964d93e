package physics

import (
	"github.com/rbrnka/three-body-problem/internal/dynamo"
)

// NewDerivative turns an acceleration model into the first-order system
// required by the solver: d(position)/dt = velocity, d(velocity)/dt = accel.
//
// masses is copied, so the returned function shares no mutable state and is
// safe to call concurrently and out of time order.
func NewDerivative(accel AccelFunc, masses []float64) dynamo.DerivFunc {
	m := make([]float64, len(masses))
	copy(m, masses)

	return func(_ float64, x dynamo.State) dynamo.State {
		dx := make(dynamo.State, len(x))
		copy(dx.PositionBlock(), x.VelocityBlock())

		for i, a := range accel(m, x.Positions()) {
			dx.SetVelocity(i, a)
		}
		return dx
	}
}
