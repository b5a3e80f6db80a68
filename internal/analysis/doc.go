// Package analysis measures how sensitive an ensemble is to its initial
// conditions.
//
// [LyapunovExponent] steps a reference ensemble and a displaced twin side by
// side and renormalizes their phase-space separation after every step
// (Benettin's method). A positive value indicates chaotic dynamics:
//
//	lambda, err := analysis.LyapunovExponent(build, bodies, dt, steps, 1e-8)
//	if lambda > 0 {
//	    // nearby trajectories diverge exponentially
//	}
package analysis
