package state

import (
	"testing"
	"time"
)

func testRun(id string) *Run {
	return &Run{
		ExperimentID: id,
		Scenario:     "Strangers",
		ModelA:       "meta-llama/llama-3-70b-instruct",
		ModelB:       "openchat/openchat-8b",
		NumTurns:     10,
		Status:       RunRunning,
		LogPath:      "data/experiment_log.jsonl",
		StartedAt:    time.Now(),
	}
}

func TestCreateAndGetRun(t *testing.T) {
	db := setupTestDB(t)

	want := testRun("run-1")
	if err := db.CreateRun(want); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for existing run")
	}

	if got.Scenario != want.Scenario {
		t.Errorf("Scenario = %q, want %q", got.Scenario, want.Scenario)
	}
	if got.ModelA != want.ModelA || got.ModelB != want.ModelB {
		t.Errorf("models = %q/%q, want %q/%q", got.ModelA, got.ModelB, want.ModelA, want.ModelB)
	}
	if got.NumTurns != 10 {
		t.Errorf("NumTurns = %d, want 10", got.NumTurns)
	}
	if got.Status != RunRunning {
		t.Errorf("Status = %q, want %q", got.Status, RunRunning)
	}
	if got.LogPath != want.LogPath {
		t.Errorf("LogPath = %q, want %q", got.LogPath, want.LogPath)
	}
	if got.FinishedAt != nil {
		t.Errorf("FinishedAt = %v, want nil for unfinished run", got.FinishedAt)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetRun("no-such-run")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing run, got %+v", got)
	}
}

func TestFinishRun(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateRun(testRun("run-1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	finished := time.Now()
	if err := db.FinishRun("run-1", RunCompleted, 20, finished); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != RunCompleted {
		t.Errorf("Status = %q, want %q", got.Status, RunCompleted)
	}
	if got.Entries != 20 {
		t.Errorf("Entries = %d, want 20", got.Entries)
	}
	if got.FinishedAt == nil {
		t.Fatal("FinishedAt not set")
	}
	if got.FinishedAt.Unix() != finished.Unix() {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, finished)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)

	for i, id := range []string{"run-1", "run-2", "run-3"} {
		r := testRun(id)
		r.StartedAt = time.Now().Add(time.Duration(i) * time.Minute)
		if err := db.CreateRun(r); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
	}
	if err := db.FinishRun("run-2", RunAborted, 3, time.Now()); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	all, err := db.ListRuns(nil, 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	// Most recent first
	if all[0].ExperimentID != "run-3" {
		t.Errorf("first run = %q, want run-3", all[0].ExperimentID)
	}

	status := RunAborted
	aborted, err := db.ListRuns(&status, 0)
	if err != nil {
		t.Fatalf("ListRuns(aborted) failed: %v", err)
	}
	if len(aborted) != 1 || aborted[0].ExperimentID != "run-2" {
		t.Errorf("aborted = %+v, want only run-2", aborted)
	}

	limited, err := db.ListRuns(nil, 2)
	if err != nil {
		t.Fatalf("ListRuns(limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(limited) = %d, want 2", len(limited))
	}
}

func TestListRunsByScenario(t *testing.T) {
	db := setupTestDB(t)

	a := testRun("run-a")
	b := testRun("run-b")
	b.Scenario = "Committed"
	if err := db.CreateRun(a); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if err := db.CreateRun(b); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	runs, err := db.ListRunsByScenario("Committed")
	if err != nil {
		t.Fatalf("ListRunsByScenario failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ExperimentID != "run-b" {
		t.Errorf("runs = %+v, want only run-b", runs)
	}
}

func TestDeleteRun(t *testing.T) {
	db := setupTestDB(t)

	if err := db.CreateRun(testRun("run-1")); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if err := db.DeleteRun("run-1"); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Error("run should have been deleted")
	}
}
