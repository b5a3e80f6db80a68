// Package dynamo provides the core types shared by every gravity simulation.
//
// The package defines the vocabulary the rest of gravsim is written in:
//
//   - [Vec3]: three-component vector algebra
//   - [Body]: one point mass (mass, position, velocity)
//   - [Ensemble]: a fixed population of bodies advanced one tick at a time
//   - [Simulator]: drives an ensemble for many ticks and records snapshots
//
// # Example
//
//	ens := physics.NewPacked(models.RandomCube(250, 1000, 1, rng))
//	sim := dynamo.New()
//	result, _ := sim.Run(ctx, ens, dynamo.Config{Dt: 0.1, Steps: 100})
//
// # Thread Safety
//
// Ensembles and Simulator instances are NOT thread-safe. A single Move call
// runs to completion before any other operation on the same ensemble. For
// concurrent simulations use [RunIndependent], which gives every job its own
// ensemble and shares nothing between them.
package dynamo
