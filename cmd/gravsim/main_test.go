package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func runID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "run id: "); ok {
			return strings.TrimSpace(id)
		}
	}
	t.Fatalf("no run id in output:\n%s", out)
	return ""
}

func TestRunListExport(t *testing.T) {
	data := t.TempDir()

	out, err := execute(t, "run", "--data", data, "--preset", "binary/unit")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	id := runID(t, out)
	if !strings.Contains(out, "energy_drift") {
		t.Errorf("run output missing metrics:\n%s", out)
	}

	out, err = execute(t, "list", "--data", data)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("list does not show %s:\n%s", id, out)
	}

	out, err = execute(t, "export", id, "--data", data)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var meta struct {
		Strategy string `json:"strategy"`
		Bodies   int    `json:"bodies"`
	}
	if err := json.Unmarshal([]byte(out), &meta); err != nil {
		t.Fatalf("export is not json: %v\n%s", err, out)
	}
	if meta.Strategy != "direct" || meta.Bodies != 2 {
		t.Errorf("unexpected metadata: %+v", meta)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if _, err := execute(t, "export-json", id, "--data", data, "--out", path); err != nil {
		t.Fatalf("export-json failed: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported struct {
		Snapshots []json.RawMessage `json:"snapshots"`
	}
	if err := json.Unmarshal(raw, &exported); err != nil {
		t.Fatal(err)
	}
	if len(exported.Snapshots) != 2 {
		t.Errorf("expected 2 snapshots, got %d", len(exported.Snapshots))
	}

	out, err = execute(t, "plot", id, "--data", data)
	if err != nil {
		t.Fatalf("plot failed: %v", err)
	}
	for _, caption := range []string{"relative energy drift", "momentum drift", "body 0 x"} {
		if !strings.Contains(out, caption) {
			t.Errorf("plot output missing %q", caption)
		}
	}

	if _, err := execute(t, "plot", id, "--data", data, "--body", "5"); !errors.Is(err, dynamo.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange for body 5, got %v", err)
	}
}

func TestListEmpty(t *testing.T) {
	out, err := execute(t, "list", "--data", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no runs found") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestConfigPrecedence(t *testing.T) {
	out, err := execute(t, "config", "--preset", "cube/small", "--steps", "3")
	if err != nil {
		t.Fatalf("config failed: %v", err)
	}
	for _, want := range []string{"steps: 3", "num_bodies: 32"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	path := filepath.Join(t.TempDir(), "sim.yaml")
	if _, err := execute(t, "config", path, "--dist", "binary", "--dt", "0.5"); err != nil {
		t.Fatalf("config write failed: %v", err)
	}

	out, err = execute(t, "config", "--config", path)
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	for _, want := range []string{"dt: 0.5", "distribution: binary", "separation: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	out, err = execute(t, "config", "--config", path, "--dt", "0.25")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "dt: 0.25") {
		t.Errorf("flag did not override file:\n%s", out)
	}
}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad preset format", []string{"config", "--preset", "cube"}},
		{"empty preset name", []string{"config", "--preset", "cube/"}},
		{"unknown preset", []string{"config", "--preset", "cube/huge"}},
		{"negative dt", []string{"config", "--dt=-1"}},
		{"missing file", []string{"config", "--config", "/nonexistent/gravsim.yaml"}},
		{"unknown strategy", []string{"run", "--data", "", "--strategy", "tree", "--bodies", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := tt.args
			if args[0] == "run" {
				args[2] = t.TempDir()
			}
			if _, err := execute(t, args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestInvalidRunIsReported(t *testing.T) {
	if _, err := execute(t, "run", "--data", t.TempDir(), "--bodies", "4", "--dt", "0"); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestCompare(t *testing.T) {
	out, err := execute(t, "compare", "--dist", "binary", "--steps", "5", "--widths", "1,4")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	for _, want := range []string{"direct", "packed/1", "packed/4"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "error:") {
		t.Errorf("unexpected error row:\n%s", out)
	}
}

func TestBench(t *testing.T) {
	out, err := execute(t, "bench", "direct", "--bodies", "8", "--steps", "2", "--workers", "2", "--repeat", "1")
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	for _, want := range []string{"Serial", "Ensemble setup", "RunIndependent(workers=1)", "RunIndependent(workers=2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "packed:") {
		t.Error("bench ran a strategy that was not requested")
	}

	if _, err := execute(t, "bench", "--bodies", "8", "--workers", "0"); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for zero workers, got %v", err)
	}
	if _, err := execute(t, "bench", "--bodies", "8", "--profile", "block"); err == nil {
		t.Error("expected error for unknown profile mode")
	}
}

func TestPresets(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"binary/unit", "cube/bench", "ring/stable"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	out, err = execute(t, "presets", "galaxy")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "no presets") {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestSplitPreset(t *testing.T) {
	tests := []struct {
		in         string
		dist, name string
		ok         bool
	}{
		{"cube/small", "cube", "small", true},
		{"cube/", "cube", "", false},
		{"/small", "", "small", false},
		{"cube", "", "", false},
		{"", "", "", false},
		{"cube/small/x", "cube", "small/x", true},
	}

	for _, tt := range tests {
		dist, name, ok := splitPreset(tt.in)
		if ok != tt.ok || (ok && (dist != tt.dist || name != tt.name)) {
			t.Errorf("splitPreset(%q) = %q, %q, %v", tt.in, dist, name, ok)
		}
	}
}

func TestSnapshotSeries(t *testing.T) {
	bodies := func(x float64) []dynamo.Body {
		return []dynamo.Body{
			{Mass: 1},
			{Mass: 1, Position: dynamo.Vec3{X: x}},
		}
	}
	snaps := []dynamo.Snapshot{
		{Step: 0, Bodies: bodies(1)},
		{Step: 1, Bodies: bodies(2)},
		{Step: 2, Bodies: bodies(math.NaN())},
		{Step: 3, Bodies: bodies(3)},
	}

	got := snapshotSeries(snaps, 1)
	if len(got) != 5 {
		t.Fatalf("expected 5 series, got %d", len(got))
	}
	if n := len(got[0].data); n != 2 {
		t.Errorf("energy series should stop at the NaN state, got %d samples", n)
	}
	if got[0].data[0] != 0 {
		t.Errorf("initial drift should be zero, got %g", got[0].data[0])
	}
	if x := got[2].data; len(x) < 2 || x[1] != 2 {
		t.Errorf("unexpected x series: %v", x)
	}

	if got := snapshotSeries(snaps, -1); len(got) != 2 {
		t.Errorf("expected only drift series without a body, got %d", len(got))
	}
}

func TestMaxDeviation(t *testing.T) {
	a := []dynamo.Body{{Position: dynamo.Vec3{X: 1}}, {Position: dynamo.Vec3{Y: 2}}}
	b := []dynamo.Body{{Position: dynamo.Vec3{X: 1}}, {Position: dynamo.Vec3{Y: 2.5}}}

	if d := maxDeviation(a, b); math.Abs(d-0.5) > 1e-15 {
		t.Errorf("expected 0.5, got %g", d)
	}
	if d := maxDeviation(a, b[:1]); !math.IsInf(d, 1) {
		t.Errorf("length mismatch should be +Inf, got %g", d)
	}
}

func TestExportSVG(t *testing.T) {
	data := t.TempDir()
	out, err := execute(t, "run", "--data", data, "--preset", "binary/unit")
	if err != nil {
		t.Fatal(err)
	}
	id := runID(t, out)

	out, err = execute(t, "export-svg", id, "--data", data, "--width", "120", "--height", "90")
	if err != nil {
		t.Fatalf("export-svg failed: %v", err)
	}
	if !strings.Contains(out, "<svg") || !strings.Contains(out, `width="120" height="90"`) {
		t.Errorf("unexpected svg:\n%s", out)
	}

	if _, err := execute(t, "export-svg", "missing", "--data", data); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestAnalyze(t *testing.T) {
	out, err := execute(t, "analyze", "--preset", "binary/infall", "--steps", "40", "--perturbation", "1e-9")
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}
	if !strings.Contains(out, "lyapunov exponent:") || !strings.Contains(out, "e-folding time") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "analyze", "--bodies", "4", "--strategy", "tree"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
