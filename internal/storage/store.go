package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/kinsim/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Scenario   string             `json:"scenario"`
	Timestamp  time.Time          `json:"timestamp"`
	Reactions  []string           `json:"reactions"`
	Species    []string           `json:"species"`
	Held       []string           `json:"held,omitempty"`
	Initial    map[string]float64 `json:"initial"`
	Span       [2]float64         `json:"span"`
	Resolution int                `json:"resolution"`
	RelTol     float64            `json:"rtol,omitempty"`
	AbsTol     float64            `json:"atol,omitempty"`
	Stats      sim.Stats          `json:"stats"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`

	TimeUnit          string `json:"time_unit,omitempty"`
	ConcentrationUnit string `json:"concentration_unit,omitempty"`
}

// Save writes a new run directory and returns its ID. meta.ID,
// Timestamp, Species, Resolution and Stats are filled in from traj.
func (s *Store) Save(meta RunMetadata, traj *sim.Trajectory) (string, error) {
	name := meta.Scenario
	if name == "" {
		name = "run"
	}
	runID := fmt.Sprintf("%s_%s", name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Species = traj.Species
	meta.Resolution = traj.Len()
	meta.Stats = traj.Stats

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteCSV(f, traj); err != nil {
		return "", fmt.Errorf("storage: write trajectory: %w", err)
	}
	return runID, f.Close()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

// List returns the metadata of every run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	traj, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}
	if meta, err := s.Load(runID); err == nil {
		traj.Stats = meta.Stats
	}
	return traj, nil
}

// WriteCSV writes a header of "time" plus species names, then one row per
// sample. Values use the shortest representation that parses back
// exactly.
func WriteCSV(w io.Writer, traj *sim.Trajectory) error {
	cw := csv.NewWriter(w)

	header := append([]string{"time"}, traj.Species...)
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for i, t := range traj.Times {
		row[0] = strconv.FormatFloat(t, 'g', -1, 64)
		for j, v := range traj.Concentrations[i] {
			row[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*sim.Trajectory, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) == 0 || strings.TrimSpace(records[0][0]) != "time" {
		return nil, fmt.Errorf("missing time header")
	}

	traj := &sim.Trajectory{
		Species:        append([]string(nil), records[0][1:]...),
		Times:          make([]float64, 0, len(records)-1),
		Concentrations: make([][]float64, 0, len(records)-1),
	}

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		row := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			if row[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, fmt.Errorf("row %d, %s: %w", i+1, traj.Species[j], err)
			}
		}
		traj.Times = append(traj.Times, t)
		traj.Concentrations = append(traj.Concentrations, row)
	}
	return traj, nil
}
