package dynamo

import "fmt"

type Metric interface {
	Name() string
	Observe(ens Ensemble, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(ens Ensemble, step int, t float64)
}

type Config struct {
	Dt    float64
	Steps int
	// RecordEvery controls how often a snapshot is kept. Zero records only
	// the initial and final states.
	RecordEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Steps:         100,
		RecordEvery:   1,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	}
	if c.RecordEvery < 0 {
		return fmt.Errorf("%w: record interval must not be negative, got %d", ErrInvalidConfig, c.RecordEvery)
	}
	return nil
}

// Snapshot is a copy of every body at one recorded step.
type Snapshot struct {
	Step   int
	Time   float64
	Bodies []Body
}

type Result struct {
	Snapshots  []Snapshot
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Final returns the last recorded snapshot, or the zero Snapshot if nothing
// was recorded.
func (r *Result) Final() Snapshot {
	if len(r.Snapshots) == 0 {
		return Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}
