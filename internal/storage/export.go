package storage

import (
	"encoding/json"
	"io"

	"github.com/rbrnka/three-body-problem/internal/sim"
)

type ExportBody struct {
	Mass       float64      `json:"mass"`
	Positions  [][3]float64 `json:"positions"`
	Velocities [][3]float64 `json:"velocities"`
}

// ExportData is the JSON document consumed by external renderers.
type ExportData struct {
	Run    *RunMetadata `json:"run,omitempty"`
	Times  []float64    `json:"times"`
	Bodies []ExportBody `json:"bodies"`
}

// ExportJSON writes tr with optional run metadata to w.
func ExportJSON(w io.Writer, meta *RunMetadata, tr *sim.Trajectory) error {
	data := ExportData{
		Run:    meta,
		Times:  tr.Times,
		Bodies: make([]ExportBody, len(tr.Bodies)),
	}

	for i, b := range tr.Bodies {
		eb := ExportBody{
			Mass:       b.Mass,
			Positions:  make([][3]float64, len(b.Positions)),
			Velocities: make([][3]float64, len(b.Velocities)),
		}
		for k, p := range b.Positions {
			eb.Positions[k] = [3]float64{p.X, p.Y, p.Z}
		}
		for k, v := range b.Velocities {
			eb.Velocities[k] = [3]float64{v.X, v.Y, v.Z}
		}
		data.Bodies[i] = eb
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
