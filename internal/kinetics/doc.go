// Package kinetics models networks of elementary reactions under
// mass-action kinetics and turns them into an ODE right-hand side.
//
//   - [Reaction]: immutable stoichiometry plus forward (and optional
//     reverse) rate constants
//   - [Registry]: stable species-name to state-index mapping
//   - [Network]: ordered reactions compiled into index-aligned terms;
//     implements [dynamo.System] and [dynamo.JacobianSystem]
//
// # Example
//
//	r1, _ := kinetics.NewReaction(map[string]int{"A": 1, "X": 1}, map[string]int{"X": 2}, 0.06)
//	r2, _ := kinetics.NewReaction(map[string]int{"X": 1, "Y": 1}, map[string]int{"Y": 2}, 0.6)
//	r3, _ := kinetics.NewReaction(map[string]int{"Y": 1}, map[string]int{"B": 1}, 0.06)
//	net, _ := kinetics.NewNetwork(r1, r2, r3)
//	dc := net.RHS(0, []float64{8, 0.1, 0.05, 0})
//
// Species indices follow first-seen order: reactants before products,
// names sorted within each side. Identical input order always yields the
// same indices.
//
// # Thread Safety
//
// A Network must not be modified (AddReaction, Hold) while it is being
// evaluated. Once built it is read-only and may back any number of
// concurrent integrations.
package kinetics
