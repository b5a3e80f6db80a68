package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
)

const benchLabelWidth = 40

// benchStrategies times batches of independent ensembles, first one after
// another and then through dynamo.RunIndependent, and prints a markdown table
// per strategy.
func benchStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", dynamo.ErrInvalidConfig, workers)
	}
	if benchRuns <= 0 {
		return fmt.Errorf("%w: repeat must be positive, got %d", dynamo.ErrInvalidConfig, benchRuns)
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListStrategies()
	}

	if profileOut != "" {
		var mode func(*profile.Profile)
		switch profileOut {
		case "cpu":
			mode = profile.CPUProfile
		case "mem":
			mode = profile.MemProfileAllocs
		default:
			return fmt.Errorf("unknown profile mode: %s (cpu, mem)", profileOut)
		}
		p := profile.Start(mode, profile.ProfilePath(profileDir), profile.NoShutdownHook, profile.Quiet)
		defer p.Stop()
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		c := cfg.Clone()
		c.Strategy = name
		c.RecordEvery = 0
		b := &bencher{registry: registry, cfg: c, workers: workers}
		if err := b.table(out); err != nil {
			return err
		}
	}
	return nil
}

type bencher struct {
	registry *experiment.Registry
	cfg      *config.Config
	workers  int
}

// batch builds workers fresh experiments from the same initial bodies. They
// carry no metrics, so only Move is timed.
func (b *bencher) batch() ([]dynamo.Job, error) {
	bodies := b.cfg.InitialBodies()
	opts := experiment.StrategyOptions{Lanes: b.cfg.Lanes, ExactRsqrt: b.cfg.ExactRsqrt}
	jobs := make([]dynamo.Job, b.workers)
	for i := range jobs {
		ens, err := b.registry.GetStrategy(b.cfg.Strategy, bodies, opts)
		if err != nil {
			return nil, err
		}
		exp := experiment.New(b.cfg)
		if err := exp.Setup(ens, nil); err != nil {
			return nil, err
		}
		jobs[i] = exp.Job()
	}
	return jobs, nil
}

func (b *bencher) table(out io.Writer) error {
	label := fmt.Sprintf("%s: %d bodies, dt=%g, %d steps x %d ensembles",
		b.cfg.Strategy, b.cfg.Init.NumBodies, b.cfg.Dt, b.cfg.Steps, b.workers)
	fmt.Fprintln(out, label)
	fmt.Fprintln(out, strings.Repeat("-", len(label)))
	fmt.Fprintf(out, "%-*s|%-10s|%-10s|%s\n", benchLabelWidth, "Method", "Warm", "Cold", "Steps/sec")
	fmt.Fprintf(out, "%s|----------|----------|----------\n", strings.Repeat("-", benchLabelWidth))

	serial, err := b.measure(func(jobs []dynamo.Job) error {
		for _, job := range jobs {
			if _, err := job.Simulator.Run(context.Background(), job.Ensemble, job.Config); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	b.row(out, "Serial", serial)

	setup := make([]time.Duration, benchRuns)
	for r := range setup {
		start := time.Now()
		for i := 0; i < 2; i++ {
			if _, err := b.batch(); err != nil {
				return err
			}
		}
		setup[r] = time.Since(start)
	}
	b.row(out, "Ensemble setup (x2)", timings{warm: setup[len(setup)-1], cold: setup[0]})

	limits := []int{1}
	if b.workers > 1 {
		limits = append(limits, b.workers)
	}
	for _, limit := range limits {
		t, err := b.measure(func(jobs []dynamo.Job) error {
			_, err := dynamo.RunIndependent(context.Background(), jobs, limit)
			return err
		})
		if err != nil {
			return err
		}
		b.row(out, fmt.Sprintf("RunIndependent(workers=%d)", limit), t)
	}

	fmt.Fprintln(out)
	return nil
}

type timings struct {
	warm, cold time.Duration
	steps      int
}

// measure runs fn on a fresh batch benchRuns times. The first run is reported
// as cold, the fastest of the rest as warm.
func (b *bencher) measure(fn func([]dynamo.Job) error) (timings, error) {
	var t timings
	for r := 0; r < benchRuns; r++ {
		jobs, err := b.batch()
		if err != nil {
			return t, err
		}
		start := time.Now()
		if err := fn(jobs); err != nil {
			return t, err
		}
		elapsed := time.Since(start)
		if r == 0 {
			t.cold = elapsed
		}
		if r == 0 && benchRuns > 1 {
			continue
		}
		if t.warm == 0 || elapsed < t.warm {
			t.warm = elapsed
		}
	}
	t.steps = b.cfg.Steps * b.workers
	return t, nil
}

func (b *bencher) row(out io.Writer, method string, t timings) {
	rate := ""
	if t.steps > 0 && t.warm > 0 {
		rate = fmt.Sprintf("%.0f", float64(t.steps)/t.warm.Seconds())
	}
	fmt.Fprintf(out, "%-*s|%-10.6f|%-10.6f|%s\n", benchLabelWidth, method, t.warm.Seconds(), t.cold.Seconds(), rate)
}
