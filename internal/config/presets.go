package config

import "sort"

var Presets = map[string]*Scenario{
	"lotka_volterra": {
		Name:        "lotka_volterra",
		Description: "autocatalytic predator-prey network",
		Reactions: []ReactionConfig{
			{Reactants: map[string]int{"A": 1, "X": 1}, Products: map[string]int{"X": 2}, K: 0.06},
			{Reactants: map[string]int{"X": 1, "Y": 1}, Products: map[string]int{"Y": 2}, K: 0.6},
			{Reactants: map[string]int{"Y": 1}, Products: map[string]int{"B": 1}, K: 0.06},
		},
		Initial:    map[string]float64{"A": 8, "X": 0.1, "Y": 0.05},
		Span:       [2]float64{0, 1000},
		Resolution: 2000,
		Solver:     SolverConfig{Method: "rk45", RelTol: 1e-6, AbsTol: 1e-9},
	},
	"lotka_volterra_buffered": {
		Name:        "lotka_volterra_buffered",
		Description: "predator-prey network with the food supply A held constant",
		Reactions: []ReactionConfig{
			{Reactants: map[string]int{"A": 1, "X": 1}, Products: map[string]int{"X": 2}, K: 0.06},
			{Reactants: map[string]int{"X": 1, "Y": 1}, Products: map[string]int{"Y": 2}, K: 0.6},
			{Reactants: map[string]int{"Y": 1}, Products: map[string]int{"B": 1}, K: 0.06},
		},
		Initial:    map[string]float64{"A": 8, "X": 0.1, "Y": 0.05},
		Hold:       []string{"A"},
		Span:       [2]float64{0, 1000},
		Resolution: 2000,
		Solver:     SolverConfig{Method: "rk45", RelTol: 1e-6, AbsTol: 1e-9},
		Plot:       []string{"X", "Y"},
	},
	"belousov_zhabotinsky": {
		Name:        "belousov_zhabotinsky",
		Description: "Oregonator model of the Belousov-Zhabotinsky reaction",
		Reactions: []ReactionConfig{
			{Reactants: map[string]int{"A": 1, "Y": 1}, Products: map[string]int{"X": 1, "P": 1}, K: 1.28},
			{Reactants: map[string]int{"X": 1, "Y": 1}, Products: map[string]int{"P": 2}, K: 8e5},
			{Reactants: map[string]int{"A": 1, "X": 1}, Products: map[string]int{"X": 2, "Z": 2}, K: 8},
			{Reactants: map[string]int{"X": 2}, Products: map[string]int{"A": 1, "P": 1}, K: 2e3},
			{Reactants: map[string]int{"Z": 1, "B": 1}, Products: map[string]int{"Y": 1}, K: 1},
		},
		Initial:    map[string]float64{"A": 0.06, "Z": 2e-5, "B": 0.06},
		Span:       [2]float64{0, 600},
		Resolution: 6000,
		Solver:     SolverConfig{Method: "rosenbrock23", RelTol: 1e-6, AbsTol: 1e-12},
		Plot:       []string{"X", "Y", "Z"},
	},
	"bray_liebhafsky": {
		Name:        "bray_liebhafsky",
		Description: "iodate/hydrogen peroxide oscillator",
		Reactions: []ReactionConfig{
			{Reactants: map[string]int{"A": 1, "Y": 1}, Products: map[string]int{"X": 1, "P": 1}, K: 3.5e-3},
			{Reactants: map[string]int{"X": 1, "Y": 1}, Products: map[string]int{"P": 2}, K: 10},
			{Reactants: map[string]int{"B": 1, "X": 1}, Products: map[string]int{"X": 2, "Z": 1}, K: 4e-3},
			{Reactants: map[string]int{"X": 2}, Products: map[string]int{"P": 1, "A": 1}, K: 0.1},
			{Reactants: map[string]int{"Z": 1}, Products: map[string]int{"Y": 1}, K: 1e-2},
			{Reactants: map[string]int{"Z": 1}, Products: map[string]int{"Q": 1}, K: 1e-4},
		},
		Initial:    map[string]float64{"A": 10, "B": 10, "X": 0.001, "Y": 0.001, "Z": 0.001},
		Span:       [2]float64{0, 1500},
		Resolution: 3000,
		Solver:     SolverConfig{Method: "rosenbrock23", RelTol: 1e-6, AbsTol: 1e-10},
		Plot:       []string{"X", "Y", "Z"},
	},
	"decay": {
		Name:        "decay",
		Description: "first-order decay A -> B",
		Reactions: []ReactionConfig{
			{Reactants: map[string]int{"A": 1}, Products: map[string]int{"B": 1}, K: 1},
		},
		Initial:    map[string]float64{"A": 1},
		Span:       [2]float64{0, 5},
		Resolution: 50,
		Solver:     SolverConfig{Method: "rk45"},
	},
}

// GetPreset returns a copy of the named scenario, or nil.
func GetPreset(name string) *Scenario {
	s, ok := Presets[name]
	if !ok {
		return nil
	}
	return s.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
