package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/export"
	"github.com/san-kum/gravsim/internal/physics"
	"github.com/san-kum/gravsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTRATEGY\tDIST\tTIME\tBODIES\tSTEPS\tDT\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%g\t%.3g\n",
			run.ID,
			run.Strategy,
			run.Distribution,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Bodies,
			run.StepsTaken,
			run.Steps,
			run.Dt,
			run.Metrics["energy_drift"],
		)
	}

	return w.Flush()
}

// series holds per-snapshot values up to the first non-finite one.
type series struct {
	caption string
	data    []float64
}

func (s *series) add(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	s.data = append(s.data, v)
	return true
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	if len(snaps) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if plotBody >= len(snaps[0].Bodies) {
		return fmt.Errorf("%w: body %d of %d", dynamo.ErrIndexOutOfRange, plotBody, len(snaps[0].Bodies))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "strategy: %s, bodies: %d\n", meta.Strategy, meta.Bodies)
	fmt.Fprintf(out, "snapshots: %d\n\n", len(snaps))

	for _, s := range snapshotSeries(snaps, plotBody) {
		if len(s.data) == 0 {
			fmt.Fprintf(out, "%s: no finite samples\n\n", s.caption)
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Fprintln(out, graph)
		fmt.Fprintln(out)
	}

	return nil
}

// snapshotSeries derives energy drift, momentum drift and, for body >= 0,
// that body's coordinates from stored snapshots.
func snapshotSeries(snaps []dynamo.Snapshot, body int) []series {
	energy := series{caption: "relative energy drift"}
	momentum := series{caption: "momentum drift |P - P0|"}
	out := []*series{&energy, &momentum}

	var coords [3]series
	if body >= 0 {
		for k, axis := range []string{"x", "y", "z"} {
			coords[k].caption = fmt.Sprintf("body %d %s", body, axis)
			out = append(out, &coords[k])
		}
	}

	var e0 float64
	var p0 dynamo.Vec3
	energyOK, momentumOK := true, true
	for i, snap := range snaps {
		ens := physics.NewDirect(snap.Bodies)
		e := physics.TotalEnergy(ens)
		p := physics.Momentum(ens)
		if i == 0 {
			e0, p0 = e, p
		}
		if energyOK {
			drift := 0.0
			if e0 != 0 {
				drift = math.Abs(e-e0) / math.Abs(e0)
			}
			energyOK = energy.add(drift)
		}
		if momentumOK {
			momentumOK = momentum.add(p.Sub(p0).Norm())
		}
		if body >= 0 {
			pos := snap.Bodies[body].Position
			coords[0].add(pos.X)
			coords[1].add(pos.Y)
			coords[2].add(pos.Z)
		}
	}

	result := make([]series, len(out))
	for i, s := range out {
		result[i] = *s
	}
	return result
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.WriteJSON(cmd.OutOrStdout(), meta, snaps)
	}

	if err := storage.ExportJSON(outFile, meta, snaps); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", runID, outFile)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	snaps, err := st.LoadSnapshots(runID)
	if err != nil {
		return err
	}

	if outFile == "" {
		return export.TrajectoriesSVG(cmd.OutOrStdout(), snaps, svgWidth, svgHeight)
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := export.TrajectoriesSVG(f, snaps, svgWidth, svgHeight); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %s to %s\n", runID, outFile)
	return nil
}
