package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kinsim/internal/kinetics"
	"github.com/san-kum/kinsim/internal/plot"
	"github.com/san-kum/kinsim/internal/sim"
)

const (
	DefaultResolution = 1000
	DefaultMethod     = sim.DefaultMethod
)

type ReactionConfig struct {
	Reactants map[string]int `yaml:"reactants"`
	Products  map[string]int `yaml:"products"`
	K         float64        `yaml:"k"`
	Kr        float64        `yaml:"kr,omitempty"`
}

type SolverConfig struct {
	Method   string  `yaml:"method"`
	RelTol   float64 `yaml:"rtol,omitempty"`
	AbsTol   float64 `yaml:"atol,omitempty"`
	Dt       float64 `yaml:"dt,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty"`
}

// UnitsConfig names the units shown on chart axes. Empty fields mean
// seconds and molar.
type UnitsConfig struct {
	Time          string `yaml:"time,omitempty"`
	Concentration string `yaml:"concentration,omitempty"`
}

// Scenario is a reaction network plus everything needed to run it.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Reactions   []ReactionConfig   `yaml:"reactions"`
	Initial     map[string]float64 `yaml:"initial"`
	Hold        []string           `yaml:"hold,omitempty"`
	Span        [2]float64         `yaml:"span"`
	Resolution  int                `yaml:"resolution"`
	Solver      SolverConfig       `yaml:"solver"`
	Plot        []string           `yaml:"plot,omitempty"`
	Units       UnitsConfig        `yaml:"units,omitempty"`
}

func DefaultScenario() *Scenario {
	return &Scenario{
		Initial:    map[string]float64{},
		Span:       [2]float64{0, 1000},
		Resolution: DefaultResolution,
		Solver:     SolverConfig{Method: DefaultMethod},
	}
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScenario()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildReactions converts the reaction list, reporting every invalid
// entry at once.
func (s *Scenario) BuildReactions() ([]*kinetics.Reaction, error) {
	cfgErr := &kinetics.ConfigurationError{}
	reactions := make([]*kinetics.Reaction, 0, len(s.Reactions))

	for i, rc := range s.Reactions {
		var opts []kinetics.ReactionOption
		if rc.Kr != 0 {
			opts = append(opts, kinetics.Reversible(rc.Kr))
		}
		r, err := kinetics.NewReaction(rc.Reactants, rc.Products, rc.K, opts...)
		if err != nil {
			cfgErr.Add("reaction %d: %v", i, err)
			continue
		}
		reactions = append(reactions, r)
	}

	if cfgErr.HasIssues() {
		return nil, cfgErr
	}
	return reactions, nil
}

// Build returns the network with held species applied.
func (s *Scenario) Build() (*kinetics.Network, error) {
	reactions, err := s.BuildReactions()
	if err != nil {
		return nil, err
	}
	net, err := kinetics.NewNetwork(reactions...)
	if err != nil {
		return nil, err
	}
	if len(s.Hold) > 0 {
		if err := net.Hold(s.Hold...); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Options translates the solver section. Zero fields keep the
// simulator defaults.
func (s *Scenario) Options() []sim.Option {
	var opts []sim.Option
	if s.Solver.Method != "" {
		opts = append(opts, sim.WithMethod(s.Solver.Method))
	}
	if s.Solver.RelTol != 0 || s.Solver.AbsTol != 0 {
		opts = append(opts, sim.WithTolerance(s.Solver.RelTol, s.Solver.AbsTol))
	}
	if s.Solver.Dt != 0 {
		opts = append(opts, sim.WithStep(s.Solver.Dt))
	}
	if s.Solver.MaxSteps != 0 {
		opts = append(opts, sim.WithMaxSteps(s.Solver.MaxSteps))
	}
	return opts
}

// PlotOptions carries the scenario name and units to the plot package.
func (s *Scenario) PlotOptions() plot.Options {
	return plot.Options{
		Title:             s.Name,
		TimeUnit:          s.Units.Time,
		ConcentrationUnit: s.Units.Concentration,
	}
}

// Run builds the network and simulates it. Extra options are applied
// after the scenario's own.
func (s *Scenario) Run(extra ...sim.Option) (*sim.Trajectory, error) {
	net, err := s.Build()
	if err != nil {
		return nil, err
	}
	opts := append(s.Options(), extra...)
	return sim.Simulate(net, s.Initial, s.Span, s.Resolution, opts...)
}

// Clone returns a deep copy, safe to modify.
func (s *Scenario) Clone() *Scenario {
	c := *s
	c.Reactions = make([]ReactionConfig, len(s.Reactions))
	for i, rc := range s.Reactions {
		c.Reactions[i] = ReactionConfig{
			Reactants: copyInts(rc.Reactants),
			Products:  copyInts(rc.Products),
			K:         rc.K,
			Kr:        rc.Kr,
		}
	}
	c.Initial = make(map[string]float64, len(s.Initial))
	for k, v := range s.Initial {
		c.Initial[k] = v
	}
	c.Hold = append([]string(nil), s.Hold...)
	c.Plot = append([]string(nil), s.Plot...)
	return &c
}

func copyInts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
