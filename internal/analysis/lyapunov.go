package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Factory builds a fresh ensemble holding bodies.
type Factory func(bodies []dynamo.Body) dynamo.Ensemble

// LyapunovExponent estimates the largest Lyapunov exponent of the system
// started from bodies. The twin is displaced by perturbation along x of
// body 0; after each step its separation from the reference is measured over
// all positions and velocities and scaled back to perturbation.
func LyapunovExponent(build Factory, bodies []dynamo.Body, dt float64, steps int, perturbation float64) (float64, error) {
	if len(bodies) == 0 {
		return 0, dynamo.ErrEmptyEnsemble
	}
	if dt <= 0 || steps <= 0 || perturbation <= 0 {
		return 0, fmt.Errorf("%w: dt, steps and perturbation must be positive", dynamo.ErrInvalidConfig)
	}

	ref := build(bodies)
	twin := build(bodies)
	b := twin.Body(0)
	b.Position.X += perturbation
	twin.SetBody(0, b)

	d0 := Separation(ref, twin)
	if d0 == 0 {
		return 0, fmt.Errorf("%w: perturbation %g vanishes at x=%g", dynamo.ErrInvalidConfig, perturbation, bodies[0].Position.X)
	}

	sumLog := 0.0
	for i := 1; i <= steps; i++ {
		ref.Move(dt)
		twin.Move(dt)

		sep := Separation(ref, twin)
		if math.IsNaN(sep) || math.IsInf(sep, 0) {
			return 0, &dynamo.SimulationError{Step: i, Time: float64(i) * dt, Wrapped: dynamo.ErrInvalidState}
		}
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)
		renormalize(ref, twin, d0/sep)
	}

	return sumLog / (float64(steps) * dt), nil
}

// Separation is the phase-space distance between two ensembles of the same
// size. Components are accumulated with math.Hypot, so offsets far below
// 1e-154 do not underflow to zero.
func Separation(a, b dynamo.Ensemble) float64 {
	sep := 0.0
	for i := 0; i < a.Len(); i++ {
		ba, bb := a.Body(i), b.Body(i)
		dp := bb.Position.Sub(ba.Position)
		dv := bb.Velocity.Sub(ba.Velocity)
		for _, c := range [6]float64{dp.X, dp.Y, dp.Z, dv.X, dv.Y, dv.Z} {
			sep = math.Hypot(sep, c)
		}
	}
	return sep
}

// renormalize pulls twin toward ref so that every offset is multiplied by
// scale.
func renormalize(ref, twin dynamo.Ensemble, scale float64) {
	for i := 0; i < ref.Len(); i++ {
		r, t := ref.Body(i), twin.Body(i)
		t.Position = r.Position.Add(t.Position.Sub(r.Position).Scale(scale))
		t.Velocity = r.Velocity.Add(t.Velocity.Sub(r.Velocity).Scale(scale))
		twin.SetBody(i, t)
	}
}
