package metrics

import (
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/physics"
)

// Stability is the fraction of observed states in which every body stays
// within threshold of the centre of mass.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(ens dynamo.Ensemble, t float64) {
	s.samples++
	com := physics.CenterOfMass(ens)
	limit := s.threshold * s.threshold
	for i := 0; i < ens.Len(); i++ {
		if ens.Body(i).Position.Sub(com).Norm2() > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// Finite is the fraction of observed states with no NaN or Inf component.
type Finite struct {
	name    string
	bad     int
	samples int
}

func NewFinite() *Finite {
	return &Finite{name: "finite"}
}

func (f *Finite) Name() string { return f.name }

func (f *Finite) Observe(ens dynamo.Ensemble, t float64) {
	f.samples++
	if !dynamo.IsFinite(ens) {
		f.bad++
	}
}

func (f *Finite) Value() float64 {
	if f.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(f.bad)/float64(f.samples)
}

func (f *Finite) Reset() {
	f.bad = 0
	f.samples = 0
}
