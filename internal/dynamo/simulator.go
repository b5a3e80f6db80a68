package dynamo

import "context"

// Simulator advances an ensemble for a fixed number of ticks.
type Simulator struct {
	metrics   []Metric
	observers []Observer
}

func New() *Simulator {
	return &Simulator{
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run calls ens.Move(cfg.Dt) cfg.Steps times. The ensemble is mutated in
// place. On cancellation the partial result is returned together with
// ctx.Err().
func (s *Simulator) Run(ctx context.Context, ens Ensemble, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ens.Len() == 0 {
		return nil, ErrEmptyEnsemble
	}

	capacity := 2
	if cfg.RecordEvery > 0 {
		capacity = cfg.Steps/cfg.RecordEvery + 2
	}
	result := &Result{
		Snapshots: make([]Snapshot, 0, capacity),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	t := 0.0
	result.Snapshots = append(result.Snapshots, Snapshot{Step: 0, Time: t, Bodies: Bodies(ens)})
	s.observe(ens, 0, t)

	lastRecorded := 0
	for i := 1; i <= cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		ens.Move(cfg.Dt)
		t = float64(i) * cfg.Dt
		result.StepsTaken++

		if cfg.ValidateState && !IsFinite(ens) {
			result.Errors = append(result.Errors, &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState})
			result.Snapshots = append(result.Snapshots, Snapshot{Step: i, Time: t, Bodies: Bodies(ens)})
			lastRecorded = i
			break
		}

		s.observe(ens, i, t)

		if cfg.RecordEvery > 0 && i%cfg.RecordEvery == 0 {
			result.Snapshots = append(result.Snapshots, Snapshot{Step: i, Time: t, Bodies: Bodies(ens)})
			lastRecorded = i
		}
	}

	if lastRecorded != result.StepsTaken {
		result.Snapshots = append(result.Snapshots, Snapshot{
			Step:   result.StepsTaken,
			Time:   float64(result.StepsTaken) * cfg.Dt,
			Bodies: Bodies(ens),
		})
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback steps ens until the callback returns false or cfg.Steps
// ticks have elapsed. Nothing is recorded.
func (s *Simulator) RunWithCallback(ctx context.Context, ens Ensemble, cfg Config, callback func(ens Ensemble, step int, t float64) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(ens, i, t) {
			return nil
		}

		ens.Move(cfg.Dt)

		if cfg.ValidateState && !IsFinite(ens) {
			return &SimulationError{Step: i + 1, Time: t + cfg.Dt, Wrapped: ErrInvalidState}
		}
	}

	return nil
}

func (s *Simulator) observe(ens Ensemble, step int, t float64) {
	for _, m := range s.metrics {
		m.Observe(ens, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(ens, step, t)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
