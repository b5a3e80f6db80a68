// Package physics implements the all-pairs Newtonian force kernel and the
// step driver for two ensemble layouts.
//
//   - [Direct]: array of bodies, full ordered double loop, exact square roots.
//     This is the reference strategy.
//   - [Packed]: structure of arrays padded to a multiple of the lane width,
//     symmetric half sweep in lane batches with diagonal and tail masks.
//
// Both implement [dynamo.Ensemble] and agree up to floating-point summation
// order and, for Packed, the reciprocal square root approximation.
//
// # Accuracy
//
// By default Packed replaces 1/sqrt(r²) with an approximation refined by a
// fixed number of Newton steps. Its relative error is below [RsqrtErrorBound],
// comparable to the 28-bit hardware reciprocal square root, so trajectories
// differ from Direct by a small relative error rather than bit for bit. Use
// [WithExactRsqrt] to trade speed for the exact reciprocal.
//
// # Hazards
//
// Nothing here guards against two bodies at the same position: the pair
// force divides by zero and the resulting Inf or NaN spreads to every body
// within a few steps. Zero or negative masses are likewise undefined. Use
// dynamo.Config.ValidateState to stop a run once the state is no longer
// finite.
package physics
