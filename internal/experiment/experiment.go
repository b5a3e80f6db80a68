package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

type Experiment struct {
	cfg       *config.Config
	ensemble  dynamo.Ensemble
	simulator *dynamo.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Build validates cfg and sets up an experiment with the registry's strategy
// and default metrics.
func Build(r *Registry, cfg *config.Config) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ens, err := r.GetStrategy(cfg.Strategy, cfg.InitialBodies(), StrategyOptions{
		Lanes:      cfg.Lanes,
		ExactRsqrt: cfg.ExactRsqrt,
	})
	if err != nil {
		return nil, err
	}

	e := New(cfg)
	if err := e.Setup(ens, r.DefaultMetrics()); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Setup(ens dynamo.Ensemble, metrics []dynamo.Metric) error {
	if ens == nil {
		return fmt.Errorf("experiment needs an ensemble")
	}
	e.ensemble = ens
	e.simulator = dynamo.New()
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.ensemble, e.cfg.RunConfig())
}

// Job packages the experiment for dynamo.RunIndependent.
func (e *Experiment) Job() dynamo.Job {
	return dynamo.Job{Ensemble: e.ensemble, Simulator: e.simulator, Config: e.cfg.RunConfig()}
}

func (e *Experiment) Config() *config.Config { return e.cfg }

func (e *Experiment) Ensemble() dynamo.Ensemble { return e.ensemble }
