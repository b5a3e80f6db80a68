package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/physics"
)

// EscapeRadius is the default stability threshold, in the same length unit as
// body positions.
const EscapeRadius = 1e3

// StrategyOptions tune the packed strategy and are ignored by direct.
type StrategyOptions struct {
	Lanes      int
	ExactRsqrt bool
}

type Registry struct {
	strategies map[string]func([]dynamo.Body, StrategyOptions) dynamo.Ensemble
}

func NewRegistry() *Registry {
	r := &Registry{
		strategies: make(map[string]func([]dynamo.Body, StrategyOptions) dynamo.Ensemble),
	}

	r.strategies["direct"] = func(bodies []dynamo.Body, _ StrategyOptions) dynamo.Ensemble {
		return physics.NewDirect(bodies)
	}
	r.strategies["packed"] = func(bodies []dynamo.Body, o StrategyOptions) dynamo.Ensemble {
		var opts []physics.Option
		if o.Lanes > 0 {
			opts = append(opts, physics.WithLanes(o.Lanes))
		}
		if o.ExactRsqrt {
			opts = append(opts, physics.WithExactRsqrt())
		}
		return physics.NewPacked(bodies, opts...)
	}

	return r
}

// GetStrategy builds an ensemble for bodies with the named force strategy.
func (r *Registry) GetStrategy(name string, bodies []dynamo.Body, opts StrategyOptions) (dynamo.Ensemble, error) {
	fn, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy: %s", name)
	}
	if opts.Lanes > physics.MaxLanes {
		return nil, fmt.Errorf("%w: lanes %d exceeds %d", dynamo.ErrInvalidConfig, opts.Lanes, physics.MaxLanes)
	}
	return fn(bodies, opts), nil
}

func (r *Registry) ListStrategies() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return []dynamo.Metric{
		metrics.NewEnergyDrift(),
		metrics.NewMomentumDrift(),
		metrics.NewMeanForce(),
		metrics.NewStability(EscapeRadius),
		metrics.NewFinite(),
	}
}
