package integrators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestKinematic(t *testing.T) {
	tests := []struct {
		name        string
		m, f, v, dt float64
		wantDs      float64
		wantDv      float64
	}{
		{"at rest, no force", 1, 0, 0, 1, 0, 0},
		{"coasting", 2, 0, 3, 0.5, 1.5, 0},
		{"unit mass unit force", 1, 1, 0, 1, 0.5, 1},
		{"heavy body", 4, 8, 1, 2, 2 + 4, 4},
		{"opposing force", 1, -2, 1, 1, 0, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, dv := Kinematic(tt.m, tt.f, tt.v, tt.dt)
			assert.InDelta(t, tt.wantDs, ds, 1e-15)
			assert.InDelta(t, tt.wantDv, dv, 1e-15)
		})
	}
}

func TestKinematicZeroMass(t *testing.T) {
	ds, dv := Kinematic(0, 0, 0, 1)
	assert.True(t, math.IsNaN(ds))
	assert.True(t, math.IsNaN(dv))
}

func TestAdvance(t *testing.T) {
	b := dynamo.Body{
		Mass:     2,
		Position: dynamo.Vec3{X: 1, Y: 2, Z: 3},
		Velocity: dynamo.Vec3{X: 1},
	}
	Advance(&b, dynamo.Vec3{Y: 4, Z: -2}, 1)

	assert.Equal(t, dynamo.Vec3{X: 2, Y: 3, Z: 2.5}, b.Position)
	assert.Equal(t, dynamo.Vec3{X: 1, Y: 2, Z: -1}, b.Velocity)
	assert.Equal(t, 2.0, b.Mass)
}

func TestAdvanceAll(t *testing.T) {
	bodies := []dynamo.Body{
		{Mass: 1},
		{Mass: 1, Position: dynamo.Vec3{X: 1}},
	}
	forces := []dynamo.Vec3{{X: 1}, {X: -1}}

	AdvanceAll(bodies, forces, 1)

	assert.Equal(t, 0.5, bodies[0].Position.X)
	assert.Equal(t, 0.5, bodies[1].Position.X)
	assert.Equal(t, 1.0, bodies[0].Velocity.X)
	assert.Equal(t, -1.0, bodies[1].Velocity.X)
}

func newLanes(stride int) Lanes {
	mk := func() []float64 { return make([]float64, stride) }
	return Lanes{
		Mass: mk(),
		SX:   mk(), SY: mk(), SZ: mk(),
		VX: mk(), VY: mk(), VZ: mk(),
		FX: mk(), FY: mk(), FZ: mk(),
	}
}

func TestAdvanceLanesMatchesAdvance(t *testing.T) {
	const n = 5
	l := newLanes(8)
	bodies := make([]dynamo.Body, n)
	forces := make([]dynamo.Vec3, n)

	for i := 0; i < n; i++ {
		fi := float64(i + 1)
		bodies[i] = dynamo.Body{
			Mass:     fi,
			Position: dynamo.Vec3{X: fi, Y: -fi, Z: 2 * fi},
			Velocity: dynamo.Vec3{X: 0.1 * fi, Y: 0.2, Z: -0.3},
		}
		forces[i] = dynamo.Vec3{X: 3, Y: -fi, Z: 0.5 * fi}

		l.Mass[i] = bodies[i].Mass
		l.SX[i], l.SY[i], l.SZ[i] = bodies[i].Position.X, bodies[i].Position.Y, bodies[i].Position.Z
		l.VX[i], l.VY[i], l.VZ[i] = bodies[i].Velocity.X, bodies[i].Velocity.Y, bodies[i].Velocity.Z
		l.FX[i], l.FY[i], l.FZ[i] = forces[i].X, forces[i].Y, forces[i].Z
	}

	AdvanceAll(bodies, forces, 0.25)
	AdvanceLanes(l, n, 0.25)

	for i := 0; i < n; i++ {
		assert.InDelta(t, bodies[i].Position.X, l.SX[i], 1e-14, "sx[%d]", i)
		assert.InDelta(t, bodies[i].Position.Y, l.SY[i], 1e-14, "sy[%d]", i)
		assert.InDelta(t, bodies[i].Position.Z, l.SZ[i], 1e-14, "sz[%d]", i)
		assert.InDelta(t, bodies[i].Velocity.X, l.VX[i], 1e-14, "vx[%d]", i)
		assert.InDelta(t, bodies[i].Velocity.Y, l.VY[i], 1e-14, "vy[%d]", i)
		assert.InDelta(t, bodies[i].Velocity.Z, l.VZ[i], 1e-14, "vz[%d]", i)
	}
}

func TestAdvanceLanesLeavesPadding(t *testing.T) {
	const n, stride = 3, 4
	l := newLanes(stride)
	for i := 0; i < n; i++ {
		l.Mass[i] = 1
		l.FX[i] = 1
	}

	AdvanceLanes(l, n, 1)

	require.Len(t, l.SX, stride)
	for _, s := range [][]float64{l.SX, l.SY, l.SZ, l.VX, l.VY, l.VZ} {
		assert.Zero(t, s[n], "padding slot must stay zero")
		assert.False(t, math.IsNaN(s[n]))
	}
	assert.Equal(t, 0.5, l.SX[0])
	assert.Equal(t, 1.0, l.VX[n-1])
}

func TestAdvanceLanesZeroCount(t *testing.T) {
	l := newLanes(4)
	for i := range l.Mass {
		l.VX[i] = 1
	}

	AdvanceLanes(l, 0, 1)

	assert.Equal(t, []float64{0, 0, 0, 0}, l.SX, "no slot may move when n is zero")
}

func BenchmarkAdvanceLanes(b *testing.B) {
	const n = 1024
	l := newLanes(n)
	for i := range l.Mass {
		l.Mass[i] = 1
		l.FX[i] = 1e-3
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AdvanceLanes(l, n, 1e-3)
	}
}

func BenchmarkAdvanceAll(b *testing.B) {
	const n = 1024
	bodies := make([]dynamo.Body, n)
	forces := make([]dynamo.Vec3, n)
	for i := range bodies {
		bodies[i].Mass = 1
		forces[i].X = 1e-3
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		AdvanceAll(bodies, forces, 1e-3)
	}
}
