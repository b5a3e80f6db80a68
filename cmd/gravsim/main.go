package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir     string
	strategy    string
	dist        string
	numBodies   int
	dt          float64
	steps       int
	recordEvery int
	seed        int64
	lanes       int
	exactRsqrt  bool
	noValidate  bool
	configFile  string
	preset      string
	// live view
	stepsPerFrame int
	// bench
	workers    int
	benchRuns  int
	profileOut string
	profileDir string
	// compare
	laneWidths []int
	// export-json
	outFile string
	// plot
	plotBody int
	// export-svg
	svgWidth  int
	svgHeight int
	// analyze
	perturbation float64
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "gravsim",
		Short:        "all-pairs gravitational n-body simulator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive(experiment.NewRegistry())
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store the result",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy drift, momentum drift and a body trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotBody, "body", 0, "body index for the trajectory plot (-1 to skip)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw body trajectories of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 800, "image height")

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "estimate the largest lyapunov exponent of a configuration",
		Args:  cobra.NoArgs,
		RunE:  analyzeConfig,
	}
	addSimFlags(analyzeCmd)
	analyzeCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-8, "initial offset of the twin ensemble")

	benchCmd := &cobra.Command{
		Use:   "bench [strategy...]",
		Short: "time serial and concurrent runs of independent ensembles",
		RunE:  benchStrategies,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&workers, "workers", 4, "independent ensembles per batch")
	benchCmd.Flags().IntVar(&benchRuns, "repeat", 2, "timed repetitions per method")
	benchCmd.Flags().StringVar(&profileOut, "profile", "", "write a cpu or mem profile")
	benchCmd.Flags().StringVar(&profileDir, "profile-dir", ".", "profile output directory")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare packed lane widths against the direct strategy",
		Args:  cobra.NoArgs,
		RunE:  compareStrategies,
	}
	addSimFlags(compareCmd)
	compareCmd.Flags().IntSliceVar(&laneWidths, "widths", []int{1, 2, 4, 8}, "packed lane widths to compare")

	presetsCmd := &cobra.Command{
		Use:   "presets [distribution]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "steps advanced per frame")

	configCmd := &cobra.Command{
		Use:   "config [path]",
		Short: "write the effective configuration as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeConfig,
	}
	addSimFlags(configCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, benchCmd, compareCmd, presetsCmd, liveCmd, configCmd)
	return rootCmd
}

func addSimFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&strategy, "strategy", def.Strategy, "force strategy (direct, packed)")
	cmd.Flags().StringVar(&dist, "dist", def.Init.Distribution, "initial distribution (cube, ring, binary)")
	cmd.Flags().IntVar(&numBodies, "bodies", def.Init.NumBodies, "number of bodies")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep")
	cmd.Flags().IntVar(&steps, "steps", def.Steps, "number of steps")
	cmd.Flags().IntVar(&recordEvery, "record-every", def.RecordEvery, "snapshot interval in steps (0: first and last only)")
	cmd.Flags().Int64Var(&seed, "seed", def.Seed, "random seed")
	cmd.Flags().IntVar(&lanes, "lanes", def.Lanes, "packed lane width (0: detect)")
	cmd.Flags().BoolVar(&exactRsqrt, "exact-rsqrt", def.ExactRsqrt, "use 1/sqrt instead of the refined approximation")
	cmd.Flags().BoolVar(&noValidate, "no-validate", !def.ValidateState, "keep stepping after a non-finite state")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration (distribution/name)")
}

// resolveConfig layers defaults, preset, config file and explicitly set flags,
// in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		d, name, ok := splitPreset(preset)
		if !ok {
			return nil, fmt.Errorf("preset must be distribution/name, got %q", preset)
		}
		cfg = config.GetPreset(d, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(d))
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Strategy = strategy
	}
	if flags.Changed("dist") {
		cfg.Init.Distribution = dist
		applyDistDefaults(cfg)
	}
	if flags.Changed("bodies") {
		cfg.Init.NumBodies = numBodies
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("lanes") {
		cfg.Lanes = lanes
	}
	if flags.Changed("exact-rsqrt") {
		cfg.ExactRsqrt = exactRsqrt
	}
	if flags.Changed("no-validate") {
		cfg.ValidateState = !noValidate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDistDefaults fills the parameters a distribution needs when it was
// picked on the command line without a preset.
func applyDistDefaults(cfg *config.Config) {
	in := &cfg.Init
	switch in.Distribution {
	case config.DistRing:
		if in.Radius == 0 {
			in.Radius = 1
		}
		if in.Mass == 0 {
			in.Mass = 1e6
		}
	case config.DistBinary:
		if in.Mass == 0 {
			in.Mass = 1
		}
		if in.Mass2 == 0 {
			in.Mass2 = 1
		}
		if in.Separation == 0 {
			in.Separation = 1
		}
	}
}

func splitPreset(s string) (string, string, bool) {
	dist, name, ok := strings.Cut(s, "/")
	return dist, name, ok && dist != "" && name != ""
}

func listPresets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dists := []string{config.DistBinary, config.DistCube, config.DistRing}
	if len(args) == 1 {
		dists = args
	}
	for _, d := range dists {
		presets := config.ListPresets(d)
		if len(presets) == 0 {
			fmt.Fprintf(out, "no presets for distribution: %s\n", d)
			continue
		}
		fmt.Fprintf(out, "presets for %s:\n", d)
		for _, p := range presets {
			cfg := config.Presets[d][p]
			fmt.Fprintf(out, "  %s/%s\t%s, dt=%g, steps=%d\n", d, p, cfg.Strategy, cfg.Dt, cfg.Steps)
		}
	}
	return nil
}

func writeConfig(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		if err := config.Save(args[0], cfg); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
