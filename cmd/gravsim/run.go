package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/analysis"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/metrics"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.Build(experiment.NewRegistry(), cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "running %s on %d bodies (%s)...\n", cfg.Strategy, exp.Ensemble().Len(), cfg.Init.Distribution)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		if result == nil || !errors.Is(err, context.Canceled) {
			return err
		}
		fmt.Fprintf(out, "interrupted after %d steps\n", result.StepsTaken)
	}
	elapsed := time.Since(start)

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "completed in %v\n", elapsed)
	fmt.Fprintf(out, "run id: %s\n", runID)
	fmt.Fprintf(out, "steps: %d (%d snapshots)\n", result.StepsTaken, len(result.Snapshots))
	for _, e := range result.Errors {
		fmt.Fprintf(out, "error: %v\n", e)
	}
	fmt.Fprintln(out, "\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6g\n", name, result.Metrics[name])
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ens, err := experiment.NewRegistry().GetStrategy(cfg.Strategy, cfg.InitialBodies(), experiment.StrategyOptions{
		Lanes:      cfg.Lanes,
		ExactRsqrt: cfg.ExactRsqrt,
	})
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s/%s", cfg.Init.Distribution, cfg.Strategy)
	return viz.Run(ens, cfg.Dt, name, stepsPerFrame)
}

type comparison struct {
	name      string
	deviation float64
	drift     float64
	elapsed   time.Duration
	err       error
}

// compareStrategies runs the same initial bodies through direct and through
// packed at each requested width, and reports how far each final state is
// from the direct one.
func compareStrategies(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()
	bodies := cfg.InitialBodies()
	runCfg := cfg.RunConfig()
	runCfg.RecordEvery = 0

	run := func(name string, opts experiment.StrategyOptions) (comparison, []dynamo.Body) {
		c := comparison{name: name}
		ens, err := registry.GetStrategy(name, bodies, opts)
		if err != nil {
			c.err = err
			return c, nil
		}
		drift := metrics.NewEnergyDrift()
		sim := dynamo.New()
		sim.AddMetric(drift)

		start := time.Now()
		result, err := sim.Run(context.Background(), ens, runCfg)
		c.elapsed = time.Since(start)
		if err != nil {
			c.err = err
			return c, nil
		}
		if len(result.Errors) > 0 {
			c.err = result.Errors[0]
		}
		c.drift = drift.Value()
		return c, result.Final().Bodies
	}

	ref, refBodies := run("direct", experiment.StrategyOptions{})
	if ref.err != nil {
		return fmt.Errorf("direct reference: %w", ref.err)
	}
	rows := []comparison{ref}
	for _, w := range laneWidths {
		c, final := run("packed", experiment.StrategyOptions{Lanes: w, ExactRsqrt: cfg.ExactRsqrt})
		c.name = fmt.Sprintf("packed/%d", w)
		if final != nil {
			c.deviation = maxDeviation(refBodies, final)
		}
		rows = append(rows, c)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "comparing strategies on %d bodies (dt=%g, steps=%d)\n\n", len(bodies), cfg.Dt, cfg.Steps)
	fmt.Fprintf(out, "%-12s  %-12s  %-12s  %-12s\n", "strategy", "max_dev", "energy_drift", "time_ms")
	fmt.Fprintln(out, strings.Repeat("-", 54))
	for _, c := range rows {
		if c.err != nil {
			fmt.Fprintf(out, "%-12s  error: %v\n", c.name, c.err)
			continue
		}
		fmt.Fprintf(out, "%-12s  %-12.4g  %-12.4g  %-12.2f\n",
			c.name, c.deviation, c.drift, float64(c.elapsed.Microseconds())/1000)
	}
	return nil
}

// maxDeviation is the largest position distance between matching bodies.
func maxDeviation(a, b []dynamo.Body) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	worst := 0.0
	for i := range a {
		if d := a[i].Position.Sub(b[i].Position).Norm(); d > worst || math.IsNaN(d) {
			worst = d
		}
	}
	return worst
}

func analyzeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	opts := experiment.StrategyOptions{Lanes: cfg.Lanes, ExactRsqrt: cfg.ExactRsqrt}
	bodies := cfg.InitialBodies()
	if _, err := registry.GetStrategy(cfg.Strategy, bodies, opts); err != nil {
		return err
	}
	build := func(bodies []dynamo.Body) dynamo.Ensemble {
		ens, _ := registry.GetStrategy(cfg.Strategy, bodies, opts)
		return ens
	}

	lambda, err := analysis.LyapunovExponent(build, bodies, cfg.Dt, cfg.Steps, perturbation)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "strategy: %s, bodies: %d, dt=%g, steps=%d\n", cfg.Strategy, len(bodies), cfg.Dt, cfg.Steps)
	fmt.Fprintf(out, "lyapunov exponent: %.6g\n", lambda)
	if lambda > 0 {
		fmt.Fprintf(out, "e-folding time: %.4g\n", 1/lambda)
	}
	return nil
}
