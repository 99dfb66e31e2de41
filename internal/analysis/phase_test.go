package analysis

import (
	"strings"
	"testing"

	"github.com/san-kum/kinsim/internal/sim"
)

func phaseTrajectory() *sim.Trajectory {
	return &sim.Trajectory{
		Times:   []float64{0, 1, 2, 3},
		Species: []string{"X", "Y"},
		Concentrations: [][]float64{
			{1, 4},
			{2, 3},
			{3, 2},
			{4, 1},
		},
	}
}

func TestPhasePortrait(t *testing.T) {
	p, err := PhasePortrait(phaseTrajectory(), "Y", "X")
	if err != nil {
		t.Fatal(err)
	}
	if p.XName != "Y" || p.YName != "X" {
		t.Errorf("names = %s, %s", p.XName, p.YName)
	}
	if len(p.Points) != 4 {
		t.Fatalf("got %d points, want 4", len(p.Points))
	}
	if p.Points[0] != (Point{X: 4, Y: 1}) {
		t.Errorf("first point = %+v, want {4 1}", p.Points[0])
	}

	if _, err := PhasePortrait(phaseTrajectory(), "X", "Z"); err == nil {
		t.Error("expected error for unknown species")
	}
}

func TestPhasePortraitToASCII(t *testing.T) {
	p, err := PhasePortrait(phaseTrajectory(), "X", "Y")
	if err != nil {
		t.Fatal(err)
	}
	out := PhasePortraitToASCII(p, 20, 10)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	// title, grid rows, x label
	if len(lines) != 12 {
		t.Fatalf("got %d lines, want 12", len(lines))
	}
	if lines[0] != "Y" {
		t.Errorf("first line = %q, want y species", lines[0])
	}
	if !strings.HasSuffix(lines[11], "X") {
		t.Errorf("last line = %q, want x species", lines[11])
	}
	if n := strings.Count(out, "•"); n != 4 {
		t.Errorf("got %d dots, want 4", n)
	}

	if PhasePortraitToASCII(nil, 20, 10) != "" {
		t.Error("nil portrait should render empty")
	}
}
