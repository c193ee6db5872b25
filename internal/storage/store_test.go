package storage

import (
	"testing"

	"dipctl/internal/dynamo"
	"dipctl/internal/pso"
)

func testResult(n int) *dynamo.Result {
	r := &dynamo.Result{
		Metrics:  map[string]float64{"ise": 0.42, "effort": 120.0},
		FailTime: 10.0,
	}
	for i := 0; i < n; i++ {
		t := float64(i) * 0.01
		r.Times = append(r.Times, t)
		r.States = append(r.States, dynamo.State{0, 0.1, 0.05, 0, 0, 0})
		r.Controls = append(r.Controls, dynamo.Control{float64(i)})
	}
	return r
}

func TestSaveLoadRun(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	gains := []float64{8, 6, 3, 3, 40, 2}
	id, err := store.SaveRun("classical", gains, 0.01, 10.0, 7, testResult(50))
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := store.LoadRun(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Variant != "classical" || meta.Seed != 7 {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if len(meta.Gains) != 6 {
		t.Errorf("expected 6 gains, got %d", len(meta.Gains))
	}
	if meta.Metrics["ise"] != 0.42 {
		t.Errorf("metrics not persisted: %v", meta.Metrics)
	}

	states, forces, times, err := store.LoadStates(id)
	if err != nil {
		t.Fatalf("load states: %v", err)
	}
	if len(states) != 50 || len(times) != 50 || len(forces) != 50 {
		t.Fatalf("expected 50 samples, got %d/%d/%d", len(states), len(times), len(forces))
	}
	if len(states[0]) != dynamo.StateDim {
		t.Errorf("state width = %d, want %d", len(states[0]), dynamo.StateDim)
	}
	if forces[10] != 10 {
		t.Errorf("force[10] = %v, want 10", forces[10])
	}
}

func TestSaveLoadTuning(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	outcome := &pso.Outcome{
		Best:        []float64{12, 9, 4, 4, 110, 5},
		Cost:        0.037,
		Iterations:  80,
		Termination: pso.Converged,
		History:     []float64{3, 1, 0.5, 0.1, 0.037},
	}
	id, err := store.SaveTuning("classical", 42, true, outcome)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	meta, err := store.LoadTuning(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if meta.Cost != 0.037 || meta.Iterations != 80 || !meta.Robust {
		t.Errorf("metadata mismatch: %+v", meta)
	}
	if meta.Termination != string(pso.Converged) {
		t.Errorf("termination = %q", meta.Termination)
	}

	history, err := store.LoadHistory(id)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 5 || history[4] != 0.037 {
		t.Errorf("history mismatch: %v", history)
	}
}

func TestListSeparatesRunKinds(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	if _, err := store.SaveRun("sta", []float64{35, 18, 8, 6, 3, 3}, 0.005, 10, 1, testResult(5)); err != nil {
		t.Fatal(err)
	}
	outcome := &pso.Outcome{Best: []float64{1}, Termination: pso.MaxIterations}
	if _, err := store.SaveTuning("sta", 1, false, outcome); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Variant != "sta" {
		t.Errorf("expected one simulation run, got %+v", runs)
	}

	tunings, err := store.ListTunings()
	if err != nil {
		t.Fatal(err)
	}
	if len(tunings) != 1 || tunings[0].Termination != string(pso.MaxIterations) {
		t.Errorf("expected one tuning run, got %+v", tunings)
	}
}

func TestListEmptyBase(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.ListRuns()
	if err != nil {
		t.Fatalf("missing base dir should not error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestLoadMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.LoadRun("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, _, err := store.LoadStates("nope"); err == nil {
		t.Error("expected error for missing trajectory")
	}
}
