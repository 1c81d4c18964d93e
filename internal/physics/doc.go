// Package physics provides the Newtonian gravity model for point masses.
//
// The model is expressed as plain functions rather than stateful objects:
//
//   - [Field]: exact pairwise gravity, optionally Plummer-softened
//   - [BarnesHut]: tree-approximated gravity for large body counts
//   - [NewDerivative]: adapts an [AccelFunc] into a [dynamo.DerivFunc]
//
// Conserved quantities ([Field.Energy], [Momentum], [AngularMomentum]) are
// provided for checking a run after the fact.
//
// # Singularities
//
// With zero softening, two bodies at exactly the same position produce a
// division by zero. The resulting Inf/NaN is not trapped here; the solver
// reports it as [dynamo.ErrNumericalBlowup].
//
//	field := physics.NewField()
//	f := physics.NewDerivative(field.Accelerations, masses)
//	dx := f(0, x)
package physics
