package sim

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rbrnka/three-body-problem/internal/integrators"
	"github.com/rbrnka/three-body-problem/internal/physics"
)

// Run validates p and integrates it. Invalid input returns a nil trajectory
// and an error wrapping dynamo.ErrInvalidInput. If integration fails, the
// samples produced before the failure are returned together with a
// *dynamo.SimulationError.
//
// Run is synchronous and keeps all solver state local to the call.
func Run(p Problem, cfg Config) (*Trajectory, error) {
	if err := Validate(p, cfg); err != nil {
		return nil, err
	}

	masses := p.masses()
	f := physics.NewDerivative(cfg.accel(), masses)
	solver := integrators.NewDormandPrince(cfg.solverOptions())

	sol, solveErr := solver.Solve(f, p.initialState(), p.TStart, p.TEnd, p.Grid)

	tr, err := Assemble(sol.Times, sol.States, masses)
	if err != nil {
		return nil, err
	}
	tr.Stats = sol.Stats

	return tr, solveErr
}

// Simulate is Run with the bodies given as parallel slices.
func Simulate(masses []float64, positions, velocities []r3.Vec, tStart, tEnd float64, grid []float64, cfg Config) (*Trajectory, error) {
	if len(positions) != len(masses) || len(velocities) != len(masses) {
		return nil, invalid("got %d masses, %d positions and %d velocities", len(masses), len(positions), len(velocities))
	}

	bodies := make([]Body, len(masses))
	for i := range bodies {
		bodies[i] = Body{Mass: masses[i], Position: positions[i], Velocity: velocities[i]}
	}

	return Run(Problem{Bodies: bodies, TStart: tStart, TEnd: tEnd, Grid: grid}, cfg)
}
