package sim

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/kinsim/internal/kinetics"
)

func sampleTrajectory() *Trajectory {
	return &Trajectory{
		Times:   []float64{0, 1, 2},
		Species: []string{"A", "B", "C"},
		Concentrations: [][]float64{
			{1, 0, 5},
			{0.5, 0.5, 5},
			{0.25, 0.75, 5},
		},
		Stats: Stats{Method: "rk45", Steps: 4},
	}
}

func TestTrajectory_Series(t *testing.T) {
	tr := sampleTrajectory()

	b, ok := tr.Series("B")
	if !ok {
		t.Fatal("Series(B) not found")
	}
	if !reflect.DeepEqual(b, []float64{0, 0.5, 0.75}) {
		t.Errorf("Series(B) = %v", b)
	}

	if _, ok := tr.Series("Z"); ok {
		t.Error("Series(Z) should not exist")
	}
}

func TestTrajectory_Select(t *testing.T) {
	tr := sampleTrajectory()

	sel, err := tr.Select("C", "A")
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !reflect.DeepEqual(sel.Species, []string{"C", "A"}) {
		t.Errorf("Species = %v", sel.Species)
	}
	if !reflect.DeepEqual(sel.Concentrations[1], []float64{5, 0.5}) {
		t.Errorf("row 1 = %v", sel.Concentrations[1])
	}
	if sel.Stats != tr.Stats || sel.Len() != 3 {
		t.Error("Select dropped times or stats")
	}

	sel.Concentrations[0][0] = 99
	if tr.Concentrations[0][2] != 5 {
		t.Error("Select shares rows with the source")
	}

	if _, err := tr.Select("A", "Z"); !errors.Is(err, kinetics.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestTrajectory_Final(t *testing.T) {
	got := sampleTrajectory().Final()
	want := map[string]float64{"A": 0.25, "B": 0.75, "C": 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Final() = %v, want %v", got, want)
	}

	if got := (&Trajectory{}).Final(); len(got) != 0 {
		t.Errorf("empty Final() = %v", got)
	}
}

func TestIntegrationError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&IntegrationError{Method: "rk45", Step: 3, Time: 0.5, Err: cause})

	if !errors.Is(err, ErrIntegration) {
		t.Error("IntegrationError should match ErrIntegration")
	}
	if !errors.Is(err, cause) {
		t.Error("IntegrationError should unwrap to its cause")
	}
	if got := err.Error(); got != "sim: rk45 failed at step 3 (t=0.5): boom" {
		t.Errorf("Error() = %q", got)
	}
}
