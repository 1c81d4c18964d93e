// Package dynamo provides the core primitives shared by the simulation packages.
//
// The package defines the flat state representation and the function types
// used to integrate gravitational systems:
//
//   - [State]: packed positions and velocities of every body
//   - [DerivFunc]: right-hand side of the first-order system dX/dt = f(t, X)
//   - [Stats]: solver bookkeeping reported after a run
//
// # State Layout
//
// A State for n bodies has length 6n. The first 3n entries hold the
// positions (x, y, z of body 0, then body 1, ...), the last 3n entries hold
// the velocities in the same body order:
//
//	[x0 y0 z0 x1 y1 z1 ... | vx0 vy0 vz0 vx1 vy1 vz1 ...]
//
// The layout is fixed for the lifetime of a run. Reordering bodies requires
// building a new State.
package dynamo
