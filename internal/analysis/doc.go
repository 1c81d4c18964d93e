// Package analysis provides post-processing for simulated trajectories.
//
//   - [Lyapunov]: largest Lyapunov exponent via renormalised trajectory separation
//   - [DominantPeriod]: strongest period of a sampled coordinate
//   - [Centroid]: centre of mass at every sample
//   - [OrbitASCII]: projection of all bodies onto a coordinate plane
//
// # Chaos Detection
//
// A clearly positive largest Lyapunov exponent indicates chaotic motion:
//
//	res, err := analysis.Lyapunov(problem, cfg, 1e-8, 40)
//	if err == nil && res.Exponent > 0.3 {
//	    // nearby initial conditions separate exponentially
//	}
package analysis
