package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/kinsim/internal/sim"
)

// MassBalance returns sum_s weights[s]*c_s at every sample. A conserved
// moiety (A+B in A -> B, or 2*X2 + X in 2X <=> X2) stays constant.
func MassBalance(traj *sim.Trajectory, weights map[string]float64) ([]float64, error) {
	cols := make(map[int]float64, len(weights))
	for name, w := range weights {
		j := -1
		for k, s := range traj.Species {
			if s == name {
				j = k
				break
			}
		}
		if j < 0 {
			return nil, fmt.Errorf("analysis: unknown species %q", name)
		}
		cols[j] = w
	}

	totals := make([]float64, len(traj.Concentrations))
	for i, row := range traj.Concentrations {
		for j, w := range cols {
			totals[i] += w * row[j]
		}
	}
	return totals, nil
}

// MaxDrift is the largest absolute deviation of totals from totals[0].
func MaxDrift(totals []float64) float64 {
	drift := 0.0
	for _, v := range totals {
		drift = math.Max(drift, math.Abs(v-totals[0]))
	}
	return drift
}
