package sim

import (
	"fmt"

	"github.com/san-kum/kinsim/internal/kinetics"
)

// Stats describes the work an integration did.
type Stats struct {
	Method        string
	Steps         int
	Rejected      int
	Evaluations   int
	JacobianEvals int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d steps, %d rejected, %d evaluations", s.Method, s.Steps, s.Rejected, s.Evaluations)
}

// Trajectory holds concentrations sampled at Times.
// Concentrations[i][j] is species Species[j] at Times[i]. Values are raw
// solver output and may dip slightly below zero.
type Trajectory struct {
	Times          []float64
	Concentrations [][]float64
	Species        []string
	Stats          Stats
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

func (tr *Trajectory) column(name string) int {
	for j, s := range tr.Species {
		if s == name {
			return j
		}
	}
	return -1
}

// Series returns the concentration of one species over time.
func (tr *Trajectory) Series(name string) ([]float64, bool) {
	j := tr.column(name)
	if j < 0 {
		return nil, false
	}
	out := make([]float64, len(tr.Concentrations))
	for i, row := range tr.Concentrations {
		out[i] = row[j]
	}
	return out, true
}

// Select returns a trajectory restricted to the named species, in the
// given order. Times and Stats are shared with the receiver.
func (tr *Trajectory) Select(names ...string) (*Trajectory, error) {
	cols := make([]int, len(names))
	cfgErr := &kinetics.ConfigurationError{}
	for i, name := range names {
		cols[i] = tr.column(name)
		if cols[i] < 0 {
			cfgErr.Add("unknown species %q", name)
		}
	}
	if cfgErr.HasIssues() {
		return nil, cfgErr
	}

	out := &Trajectory{
		Times:          tr.Times,
		Concentrations: make([][]float64, len(tr.Concentrations)),
		Species:        append([]string(nil), names...),
		Stats:          tr.Stats,
	}
	for i, row := range tr.Concentrations {
		sel := make([]float64, len(cols))
		for k, j := range cols {
			sel[k] = row[j]
		}
		out.Concentrations[i] = sel
	}
	return out, nil
}

// Final returns the last sample keyed by species.
func (tr *Trajectory) Final() map[string]float64 {
	out := make(map[string]float64, len(tr.Species))
	if len(tr.Concentrations) == 0 {
		return out
	}
	last := tr.Concentrations[len(tr.Concentrations)-1]
	for j, name := range tr.Species {
		out[name] = last[j]
	}
	return out
}
