package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type ExportData struct {
	RunMetadata
	Snapshots []ExportSnapshot `json:"snapshots"`
}

type ExportSnapshot struct {
	Step   int          `json:"step"`
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportBody struct {
	Mass     float64    `json:"mass"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

func newExportData(meta *RunMetadata, snapshots []dynamo.Snapshot) ExportData {
	data := ExportData{
		RunMetadata: *meta,
		Snapshots:   make([]ExportSnapshot, len(snapshots)),
	}
	for i, snap := range snapshots {
		bodies := make([]ExportBody, len(snap.Bodies))
		for j, b := range snap.Bodies {
			bodies[j] = ExportBody{
				Mass:     b.Mass,
				Position: [3]float64{b.Position.X, b.Position.Y, b.Position.Z},
				Velocity: [3]float64{b.Velocity.X, b.Velocity.Y, b.Velocity.Z},
			}
		}
		data.Snapshots[i] = ExportSnapshot{Step: snap.Step, Time: snap.Time, Bodies: bodies}
	}
	return data
}

func ExportJSON(path string, meta *RunMetadata, snapshots []dynamo.Snapshot) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, snapshots)
}

func WriteJSON(w io.Writer, meta *RunMetadata, snapshots []dynamo.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(meta, snapshots))
}
