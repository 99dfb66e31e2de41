package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/kinsim/internal/kinetics"
)

func TestDefaultScenario(t *testing.T) {
	s := DefaultScenario()

	if s.Solver.Method != "rk45" {
		t.Errorf("expected method rk45, got %s", s.Solver.Method)
	}
	if s.Resolution < 2 {
		t.Error("resolution should be at least 2")
	}
	if s.Span[1] <= s.Span[0] {
		t.Error("span should be increasing")
	}
}

func TestGetPreset(t *testing.T) {
	s := GetPreset("lotka_volterra")
	if s == nil {
		t.Fatal("expected preset, got nil")
	}
	if s.Initial["A"] != 8 {
		t.Errorf("expected A=8, got %f", s.Initial["A"])
	}

	s.Initial["A"] = 1
	s.Reactions[0].Reactants["A"] = 5
	fresh := GetPreset("lotka_volterra")
	if fresh.Initial["A"] != 8 || fresh.Reactions[0].Reactants["A"] != 1 {
		t.Error("modifying a preset copy changed the preset")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if s := GetPreset("nonexistent"); s != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	want := []string{"belousov_zhabotinsky", "bray_liebhafsky", "decay", "lotka_volterra", "lotka_volterra_buffered"}
	if got := ListPresets(); !reflect.DeepEqual(got, want) {
		t.Errorf("ListPresets() = %v, want %v", got, want)
	}
}

func TestPresetsBuild(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			s := GetPreset(name)
			if s.Name != name {
				t.Errorf("preset %s has name %s", name, s.Name)
			}
			net, err := s.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(net.Reactions()) != len(s.Reactions) {
				t.Errorf("expected %d reactions, got %d", len(s.Reactions), len(net.Reactions()))
			}
			for _, h := range s.Hold {
				if !net.Held(h) {
					t.Errorf("species %s not held", h)
				}
			}
			for _, p := range s.Plot {
				if _, ok := net.Index(p); !ok {
					t.Errorf("plot species %s not in network", p)
				}
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bz.yaml")
	orig := GetPreset("belousov_zhabotinsky")
	orig.Reactions[3].Kr = 0.5
	orig.Units = UnitsConfig{Time: "min", Concentration: "mM"}

	if err := Save(path, orig); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(orig, loaded) {
		t.Errorf("round trip mismatch:\n%+v\n%+v", orig, loaded)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "min.yaml")
	data := `
name: tiny
reactions:
  - reactants: {A: 1}
    products: {B: 1}
    k: 2
initial: {A: 1}
span: [0, 2]
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Resolution != DefaultResolution || s.Solver.Method != DefaultMethod {
		t.Errorf("defaults not applied: resolution %d method %q", s.Resolution, s.Solver.Method)
	}

	traj, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if traj.Times[traj.Len()-1] != 2 {
		t.Errorf("last time = %v, want 2", traj.Times[traj.Len()-1])
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("span: [0, 1, 2]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Error("expected error for three-element span")
	}
}

func TestBuild_CollectsReactionErrors(t *testing.T) {
	s := DefaultScenario()
	s.Reactions = []ReactionConfig{
		{Reactants: map[string]int{"A": 0}, Products: map[string]int{"B": 1}, K: 1},
		{Reactants: map[string]int{"A": 1}, Products: map[string]int{"B": 1}, K: 1},
		{Reactants: map[string]int{"A": 1}, Products: map[string]int{"B": 1}, K: -1},
	}

	_, err := s.Build()
	var cfgErr *kinetics.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
	if len(cfgErr.Issues) != 2 {
		t.Errorf("expected 2 issues, got %v", cfgErr.Issues)
	}
	if !strings.HasPrefix(cfgErr.Issues[1], "reaction 2:") {
		t.Errorf("issue not tagged with reaction index: %q", cfgErr.Issues[1])
	}
}

func TestBuild_UnknownHold(t *testing.T) {
	s := GetPreset("decay")
	s.Hold = []string{"Q"}
	if _, err := s.Build(); !errors.Is(err, kinetics.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestOptions(t *testing.T) {
	s := GetPreset("decay")
	s.Solver = SolverConfig{Method: "euler", Dt: 0.001}

	if got := len(s.Options()); got != 2 {
		t.Errorf("expected 2 options, got %d", got)
	}

	traj, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if traj.Stats.Method != "euler" {
		t.Errorf("method = %s, want euler", traj.Stats.Method)
	}
	if traj.Stats.Steps < 5000 {
		t.Errorf("expected dt=0.001 over 5s to take ~5000 steps, took %d", traj.Stats.Steps)
	}
}

func TestLoad_Units(t *testing.T) {
	path := filepath.Join(t.TempDir(), "units.yaml")
	data := `
name: slow
reactions:
  - reactants: {A: 1}
    products: {B: 1}
    k: 0.1
initial: {A: 1}
span: [0, 60]
units: {time: min, concentration: mM}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	opts := s.PlotOptions()
	if opts.Title != "slow" {
		t.Errorf("title = %q, want slow", opts.Title)
	}
	if got := opts.TimeLabel(); got != "Time [min]" {
		t.Errorf("time label = %q", got)
	}
	if got := opts.ConcentrationLabel(); got != "Concentration [mM]" {
		t.Errorf("concentration label = %q", got)
	}

	if got := GetPreset("decay").PlotOptions().TimeLabel(); got != "Time [s]" {
		t.Errorf("preset without units: time label = %q, want seconds", got)
	}
}
