package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

var statesHeader = []string{"step", "time", "body", "mass", "x", "y", "z", "vx", "vy", "vz"}

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Strategy     string             `json:"strategy"`
	Distribution string             `json:"distribution"`
	Timestamp    time.Time          `json:"timestamp"`
	Seed         int64              `json:"seed"`
	Dt           float64            `json:"dt"`
	Steps        int                `json:"steps"`
	StepsTaken   int                `json:"steps_taken"`
	Bodies       int                `json:"bodies"`
	Lanes        int                `json:"lanes,omitempty"`
	ExactRsqrt   bool               `json:"exact_rsqrt,omitempty"`
	Metrics      map[string]float64 `json:"metrics"`
	Errors       []string           `json:"errors,omitempty"`
}

// Save writes the run configuration, metrics and every recorded snapshot to a
// new run directory and returns its ID.
func (s *Store) Save(cfg *config.Config, result *dynamo.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Strategy, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:           runID,
		Strategy:     cfg.Strategy,
		Distribution: cfg.Init.Distribution,
		Timestamp:    now,
		Seed:         cfg.Seed,
		Dt:           cfg.Dt,
		Steps:        cfg.Steps,
		StepsTaken:   result.StepsTaken,
		Bodies:       len(result.Final().Bodies),
		Lanes:        cfg.Lanes,
		ExactRsqrt:   cfg.ExactRsqrt,
		Metrics:      result.Metrics,
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}
	if err := writeStates(filepath.Join(runDir, statesFile), result.Snapshots); err != nil {
		return "", err
	}
	return runID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, snapshots []dynamo.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statesHeader); err != nil {
		return err
	}

	row := make([]string, len(statesHeader))
	for _, snap := range snapshots {
		for i, b := range snap.Bodies {
			row[0] = strconv.Itoa(snap.Step)
			row[1] = formatFloat(snap.Time)
			row[2] = strconv.Itoa(i)
			row[3] = formatFloat(b.Mass)
			row[4] = formatFloat(b.Position.X)
			row[5] = formatFloat(b.Position.Y)
			row[6] = formatFloat(b.Position.Z)
			row[7] = formatFloat(b.Velocity.X)
			row[8] = formatFloat(b.Velocity.Y)
			row[9] = formatFloat(b.Velocity.Z)
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// formatFloat uses the shortest representation that parses back exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every run, newest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSnapshots reads states.csv back into snapshots ordered by step.
func (s *Store) LoadSnapshots(runID string) ([]dynamo.Snapshot, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return readStates(file)
}

func readStates(src io.Reader) ([]dynamo.Snapshot, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = len(statesHeader)

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return []dynamo.Snapshot{}, nil
		}
		return nil, err
	}

	snapshots := make([]dynamo.Snapshot, 0)
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		step, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: step: %w", line, err)
		}
		vals := make([]float64, len(record))
		for j := 1; j < len(record); j++ {
			if j == 2 {
				continue
			}
			if vals[j], err = strconv.ParseFloat(record[j], 64); err != nil {
				return nil, fmt.Errorf("line %d: %s: %w", line, statesHeader[j], err)
			}
		}

		if n := len(snapshots); n == 0 || snapshots[n-1].Step != step {
			snapshots = append(snapshots, dynamo.Snapshot{Step: step, Time: vals[1]})
		}
		snap := &snapshots[len(snapshots)-1]
		snap.Bodies = append(snap.Bodies, dynamo.Body{
			Mass:     vals[3],
			Position: dynamo.Vec3{X: vals[4], Y: vals[5], Z: vals[6]},
			Velocity: dynamo.Vec3{X: vals[7], Y: vals[8], Z: vals[9]},
		})
	}

	return snapshots, nil
}
