package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
	"github.com/rbrnka/three-body-problem/internal/sim"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

// Store keeps one directory per run under baseDir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Masses    []float64          `json:"masses"`
	TStart    float64            `json:"t_start"`
	TEnd      float64            `json:"t_end"`
	Samples   int                `json:"samples"`
	G         float64            `json:"g"`
	Softening float64            `json:"softening"`
	Field     string             `json:"field"`
	RTol      float64            `json:"rtol"`
	ATol      float64            `json:"atol"`
	Stats     dynamo.Stats       `json:"stats"`
	Error     string             `json:"error,omitempty"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes meta and tr to a new run directory and returns its ID. ID,
// Timestamp, Masses, Samples and Stats are filled in from tr.
func (s *Store) Save(meta RunMetadata, tr *sim.Trajectory) (string, error) {
	name := meta.Preset
	if name == "" {
		name = "run"
	}

	runID, runDir, err := s.newRunDir(name)
	if err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Masses = tr.Masses()
	meta.Samples = tr.Len()
	meta.Stats = tr.Stats

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), tr); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) newRunDir(name string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%s_%d", name, time.Now().Unix())
	runID := base
	for i := 1; ; i++ {
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", "", err
		}
		runID = fmt.Sprintf("%s-%d", base, i)
	}
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeTrajectory stores one row per sample: time, then x,y,z,vx,vy,vz of
// each body in order. Values round-trip exactly.
func writeTrajectory(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{"time"}
	for i := range tr.Bodies {
		for _, c := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, fmt.Sprintf("%s%d", c, i))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for k, t := range tr.Times {
		row := make([]string, 0, len(header))
		row = append(row, format(t))
		for _, b := range tr.Bodies {
			p, v := b.Positions[k], b.Velocities[k]
			row = append(row,
				format(p.X), format(p.Y), format(p.Z),
				format(v.X), format(v.Y), format(v.Z),
			)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns all readable runs, oldest first.
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
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrajectory reads a saved run back into a Trajectory.
func (s *Store) LoadTrajectory(runID string) (*sim.Trajectory, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	width := 1 + 6*len(meta.Masses)
	if len(records) == 0 || len(records[0]) != width {
		return nil, fmt.Errorf("run %s: malformed header, want %d columns", runID, width)
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for i, record := range records[1:] {
		row := make([]float64, len(record))
		for j, field := range record {
			row[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
		}
		times = append(times, row[0])
		states = append(states, interleavedToState(row[1:]))
	}

	tr, err := sim.Assemble(times, states, meta.Masses)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	tr.Stats = meta.Stats
	return tr, nil
}

// interleavedToState converts a per-body row (x,y,z,vx,vy,vz per body) to
// the positions-then-velocities layout.
func interleavedToState(row []float64) dynamo.State {
	n := len(row) / 6
	x := dynamo.NewState(n)
	for i := 0; i < n; i++ {
		b := row[6*i : 6*i+6]
		copy(x[3*i:3*i+3], b[0:3])
		copy(x[3*n+3*i:3*n+3*i+3], b[3:6])
	}
	return x
}
