package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/kinsim/internal/sim"
)

type ExportData struct {
	ID             string             `json:"id,omitempty"`
	Scenario       string             `json:"scenario,omitempty"`
	Method         string             `json:"method"`
	Steps          int                `json:"steps"`
	Species        []string           `json:"species"`
	Times          []float64          `json:"times"`
	Concentrations [][]float64        `json:"concentrations"`
	Metrics        map[string]float64 `json:"metrics,omitempty"`
}

// ExportJSON writes the trajectory and its run metadata as one indented
// JSON document. meta may be nil.
func ExportJSON(w io.Writer, meta *RunMetadata, traj *sim.Trajectory) error {
	data := ExportData{
		Method:         traj.Stats.Method,
		Steps:          traj.Stats.Steps,
		Species:        traj.Species,
		Times:          traj.Times,
		Concentrations: traj.Concentrations,
	}
	if meta != nil {
		data.ID = meta.ID
		data.Scenario = meta.Scenario
		data.Metrics = meta.Metrics
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
