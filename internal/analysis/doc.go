// Package analysis inspects simulated concentration trajectories.
//
// The package includes tools for characterizing oscillatory kinetics:
//
//   - [Peaks]: local maxima of a series, filtered by prominence
//   - [Oscillates]: sanity check that a series keeps oscillating
//   - [DominantPeriod]: period of the strongest spectral component
//   - [MassBalance]: weighted totals for checking conservation laws
//   - [PhasePortrait]: one species against another
//
// # Oscillation Detection
//
// A Lotka-Volterra or Belousov-Zhabotinsky run should show repeated
// maxima in its intermediates:
//
//	x, _ := traj.Series("X")
//	if analysis.Oscillates(x, 2, 1e-3) {
//	    period := analysis.DominantPeriod(x, traj.Times)
//	}
package analysis
