package metrics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// MomentumDrift tracks max |P(t) - P(0)| across observed states.
type MomentumDrift struct {
	name     string
	initial  dynamo.Vec3
	maxDrift float64
	samples  int
}

func NewMomentumDrift() *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift"}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(ens dynamo.Ensemble, t float64) {
	p := physics.Momentum(ens)
	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, p.Sub(m.initial).Norm())
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = dynamo.Vec3{}
	m.maxDrift = 0
	m.samples = 0
}

// MeanForce is the mean net force magnitude per body, averaged over observed
// states. Observing costs one extra force evaluation.
type MeanForce struct {
	name    string
	sum     float64
	samples int
}

func NewMeanForce() *MeanForce {
	return &MeanForce{name: "mean_force"}
}

func (f *MeanForce) Name() string { return f.name }

func (f *MeanForce) Observe(ens dynamo.Ensemble, t float64) {
	forces := ens.Forces()
	if len(forces) == 0 {
		return
	}
	total := 0.0
	for _, fv := range forces {
		total += fv.Norm()
	}
	f.sum += total / float64(len(forces))
	f.samples++
}

func (f *MeanForce) Value() float64 {
	if f.samples == 0 {
		return 0
	}
	return f.sum / float64(f.samples)
}

func (f *MeanForce) Reset() {
	f.sum = 0
	f.samples = 0
}
