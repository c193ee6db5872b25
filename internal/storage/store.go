// Package storage persists simulation rollouts and tuning outcomes as
// run directories: a metadata.json plus CSV trajectory or history files,
// browsable with standard tools.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dipctl/internal/dynamo"
	"dipctl/internal/pso"
)

var stateColumns = []string{"pos", "theta1", "theta2", "vel", "omega1", "omega2"}

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
	ID        string             `json:"id"`
	Variant   string             `json:"variant"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Gains     []float64          `json:"gains"`
	Diverged  bool               `json:"diverged"`
	FailTime  float64            `json:"fail_time"`
	Metrics   map[string]float64 `json:"metrics"`
}

type TuningMetadata struct {
	ID          string    `json:"id"`
	Variant     string    `json:"variant"`
	Timestamp   time.Time `json:"timestamp"`
	Seed        int64     `json:"seed"`
	Robust      bool      `json:"robust"`
	Best        []float64 `json:"best"`
	Cost        float64   `json:"cost"`
	Iterations  int       `json:"iterations"`
	Termination string    `json:"termination"`
}

// SaveRun persists one closed-loop rollout under <variant>_<unix> and
// returns the run ID.
func (s *Store) SaveRun(variant string, gains []float64, dt, duration float64, seed int64, result *dynamo.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", variant, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Variant:   variant,
		Timestamp: time.Now(),
		Seed:      seed,
		Dt:        dt,
		Duration:  duration,
		Gains:     gains,
		Diverged:  result.Diverged,
		FailTime:  result.FailTime,
		Metrics:   result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := writeTrajectory(filepath.Join(runDir, "states.csv"), result); err != nil {
		return "", err
	}
	return runID, nil
}

// SaveTuning persists one optimization outcome: metadata.json plus the
// per-iteration best-cost history.
func (s *Store) SaveTuning(variant string, seed int64, robust bool, outcome *pso.Outcome) (string, error) {
	runID := fmt.Sprintf("tune_%s_%d", variant, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := TuningMetadata{
		ID:          runID,
		Variant:     variant,
		Timestamp:   time.Now(),
		Seed:        seed,
		Robust:      robust,
		Best:        outcome.Best,
		Cost:        outcome.Cost,
		Iterations:  outcome.Iterations,
		Termination: string(outcome.Termination),
	}
	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, "history.csv"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"iteration", "best_cost"}); err != nil {
		return "", err
	}
	for i, c := range outcome.History {
		row := []string{strconv.Itoa(i), strconv.FormatFloat(c, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	return runID, nil
}

// isTuning distinguishes the two metadata shapes sharing metadata.json:
// only tuning runs carry a termination reason.
func isTuning(data []byte) bool {
	var probe struct {
		Termination string `json:"termination"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Termination != ""
}

func (s *Store) ListRuns() ([]RunMetadata, error) {
	runs := make([]RunMetadata, 0)
	err := s.eachMeta(func(data []byte) {
		if isTuning(data) {
			return
		}
		var meta RunMetadata
		if json.Unmarshal(data, &meta) == nil && meta.ID != "" {
			runs = append(runs, meta)
		}
	})
	return runs, err
}

func (s *Store) ListTunings() ([]TuningMetadata, error) {
	runs := make([]TuningMetadata, 0)
	err := s.eachMeta(func(data []byte) {
		if !isTuning(data) {
			return
		}
		var meta TuningMetadata
		if json.Unmarshal(data, &meta) == nil {
			runs = append(runs, meta)
		}
	})
	return runs, err
}

func (s *Store) eachMeta(fn func(data []byte)) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		fn(data)
	}
	return nil
}

func (s *Store) LoadRun(runID string) (*RunMetadata, error) {
	var meta RunMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, "metadata.json"), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTuning(runID string) (*TuningMetadata, error) {
	var meta TuningMetadata
	if err := readJSON(filepath.Join(s.baseDir, runID, "metadata.json"), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadStates reads back a saved trajectory: per-sample state rows, the force
// column, and the time column.
func (s *Store) LoadStates(runID string) ([][]float64, []float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "states.csv"))
	if err != nil {
		return nil, nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, []float64{}, nil
	}

	nState := len(stateColumns)
	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	forces := make([]float64, 0, len(records)-1)

	for _, record := range records[1:] {
		if len(record) < 1+nState {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make([]float64, 0, nState)
		ok := true
		for j := 1; j <= nState; j++ {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			state = append(state, v)
		}
		if !ok {
			continue
		}

		force := 0.0
		if len(record) > 1+nState {
			force, _ = strconv.ParseFloat(record[1+nState], 64)
		}

		times = append(times, t)
		states = append(states, state)
		forces = append(forces, force)
	}
	return states, forces, times, nil
}

// LoadHistory reads back a tuning run's best-cost trace.
func (s *Store) LoadHistory(runID string) ([]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "history.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	history := make([]float64, 0, len(records))
	for i, record := range records {
		if i == 0 || len(record) < 2 {
			continue
		}
		c, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		history = append(history, c)
	}
	return history, nil
}

func writeTrajectory(path string, result *dynamo.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(result.States) == 0 {
		return nil
	}

	header := append([]string{"time"}, stateColumns...)
	if len(result.Controls) > 0 {
		header = append(header, "force")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := make([]string, 0, len(header))
		row = append(row, strconv.FormatFloat(result.Times[i], 'f', 6, 64))
		for _, val := range result.States[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if len(result.Controls) > 0 {
			force := 0.0
			if i < len(result.Controls) {
				force = result.Controls[i].Force()
			}
			row = append(row, strconv.FormatFloat(force, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
