package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidInput indicates the run was rejected before integration began.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrIntegrationDivergence indicates the adaptive step fell below the minimum step size.
	ErrIntegrationDivergence = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudgetExceeded indicates the solver ran out of internal steps.
	ErrStepBudgetExceeded = errors.New("dynamo: maximum number of steps exceeded")

	// ErrNumericalBlowup indicates a NaN or Inf appeared in the state.
	ErrNumericalBlowup = errors.New("dynamo: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an integration failure with the solver position at
// which it happened. State is the last accepted state.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
