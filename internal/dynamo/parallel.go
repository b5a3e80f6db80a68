package dynamo

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Job is one independent simulation: its own ensemble, simulator and config.
type Job struct {
	Ensemble  Ensemble
	Simulator *Simulator
	Config    Config
}

// RunIndependent runs every job on its own goroutine, at most workers at a
// time (workers <= 0 means GOMAXPROCS). Jobs must not share ensembles or
// metrics. The first error cancels the remaining jobs.
func RunIndependent(ctx context.Context, jobs []Job, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, job := range jobs {
		g.Go(func() error {
			sim := job.Simulator
			if sim == nil {
				sim = New()
			}
			res, err := sim.Run(ctx, job.Ensemble, job.Config)
			results[idx] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
