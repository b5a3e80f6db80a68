package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

func movingPair() *physics.Direct {
	return physics.NewDirect([]dynamo.Body{
		{Mass: 1},
		{Mass: 2, Position: dynamo.Vec3{X: 2}, Velocity: dynamo.Vec3{X: 1}},
	})
}

func TestEnergyDrift(t *testing.T) {
	ens := movingPair()
	m := NewEnergyDrift()

	m.Observe(ens, 0)
	assert.Zero(t, m.Value())

	b := ens.Body(1)
	b.Velocity = dynamo.Vec3{X: 2}
	ens.SetBody(1, b)
	m.Observe(ens, 1)

	assert.InDelta(t, 3/(1-physics.G), m.Value(), 1e-12)

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestMomentumDrift(t *testing.T) {
	ens := movingPair()
	m := NewMomentumDrift()

	m.Observe(ens, 0)
	assert.Zero(t, m.Value())

	b := ens.Body(1)
	b.Velocity = dynamo.Vec3{X: 2}
	ens.SetBody(1, b)
	m.Observe(ens, 1)
	assert.InDelta(t, 2.0, m.Value(), 1e-15)

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestMomentumDriftConservedBySimulation(t *testing.T) {
	ens := physics.NewDirect([]dynamo.Body{
		{Mass: 1e6},
		{Mass: 3e6, Position: dynamo.Vec3{X: 1, Y: 0.5}},
		{Mass: 2e6, Position: dynamo.Vec3{Z: -1}},
	})
	m := NewMomentumDrift()

	sim := dynamo.New()
	sim.AddMetric(m)
	cfg := dynamo.DefaultConfig()
	cfg.Steps = 50

	result, err := sim.Run(t.Context(), ens, cfg)
	require.NoError(t, err)
	assert.Contains(t, result.Metrics, "momentum_drift")
	assert.Less(t, result.Metrics["momentum_drift"], 1e-9)
}

func TestMeanForce(t *testing.T) {
	ens := physics.NewDirect([]dynamo.Body{
		{Mass: 1},
		{Mass: 1, Position: dynamo.Vec3{X: 1}},
	})
	m := NewMeanForce()

	m.Observe(ens, 0)
	assert.InEpsilon(t, physics.G, m.Value(), 1e-12)

	m.Reset()
	assert.Zero(t, m.Value())
}

func TestStability(t *testing.T) {
	ens := physics.NewDirect([]dynamo.Body{
		{Mass: 1},
		{Mass: 1, Position: dynamo.Vec3{X: 1}},
	})
	m := NewStability(1)
	assert.Equal(t, 1.0, m.Value())

	m.Observe(ens, 0)
	assert.Equal(t, 1.0, m.Value())

	ens.SetBody(1, dynamo.Body{Mass: 1, Position: dynamo.Vec3{X: 4}})
	m.Observe(ens, 1)
	assert.Equal(t, 0.5, m.Value())

	m.Reset()
	assert.Equal(t, 1.0, m.Value())
}

func TestFinite(t *testing.T) {
	ens := movingPair()
	m := NewFinite()

	m.Observe(ens, 0)
	assert.Equal(t, 1.0, m.Value())

	ens.SetBody(0, dynamo.Body{Mass: 1, Position: dynamo.Vec3{X: math.NaN()}})
	m.Observe(ens, 1)
	assert.Equal(t, 0.5, m.Value())

	m.Reset()
	assert.Equal(t, 1.0, m.Value())
}
