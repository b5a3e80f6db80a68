package integrators

import "github.com/san-kum/gravsim/internal/dynamo"

// Kinematic returns the displacement and velocity change of one component
// under constant force f acting on mass m for dt:
//
//	dv = f/m * dt
//	ds = (v + dv/2) * dt
//
// Position is exact for constant acceleration; velocity is a forward Euler
// update using the force sampled at the start of the step. m must be nonzero.
func Kinematic(m, f, v, dt float64) (ds, dv float64) {
	dv = f / m * dt
	ds = (v + dv/2) * dt
	return ds, dv
}

// Advance applies Kinematic to every component of b in place.
func Advance(b *dynamo.Body, f dynamo.Vec3, dt float64) {
	dsx, dvx := Kinematic(b.Mass, f.X, b.Velocity.X, dt)
	dsy, dvy := Kinematic(b.Mass, f.Y, b.Velocity.Y, dt)
	dsz, dvz := Kinematic(b.Mass, f.Z, b.Velocity.Z, dt)

	b.Position = b.Position.Add(dynamo.Vec3{X: dsx, Y: dsy, Z: dsz})
	b.Velocity = b.Velocity.Add(dynamo.Vec3{X: dvx, Y: dvy, Z: dvz})
}

// AdvanceAll advances bodies[i] under forces[i] for every i.
func AdvanceAll(bodies []dynamo.Body, forces []dynamo.Vec3, dt float64) {
	for i := range bodies {
		Advance(&bodies[i], forces[i], dt)
	}
}

// Lanes is a structure-of-arrays view over bodies and their net forces.
// Every slice has the same length (the padded stride).
type Lanes struct {
	Mass       []float64
	SX, SY, SZ []float64
	VX, VY, VZ []float64
	FX, FY, FZ []float64
}

// AdvanceLanes advances the first n entries of l. The update has no
// cross-lane terms, so it runs as one scalar pass rather than in lane
// batches. It stops at n, so padding slots keep their zero values: with a
// zero mass they would otherwise turn into NaN (0/0) and leak into the next
// force pass.
func AdvanceLanes(l Lanes, n int, dt float64) {
	for i := 0; i < n; i++ {
		scale := dt / l.Mass[i]

		dvx := l.FX[i] * scale
		dvy := l.FY[i] * scale
		dvz := l.FZ[i] * scale

		l.SX[i] += (l.VX[i] + 0.5*dvx) * dt
		l.SY[i] += (l.VY[i] + 0.5*dvy) * dt
		l.SZ[i] += (l.VZ[i] + 0.5*dvz) * dt

		l.VX[i] += dvx
		l.VY[i] += dvy
		l.VZ[i] += dvz
	}
}
