package store_test

import (
	"testing"

	"github.com/spectrack/spectrack-go/internal/models"
	"github.com/spectrack/spectrack-go/internal/store"
	"github.com/spectrack/spectrack-go/internal/testutil"
)

func TestRunLifecycle(t *testing.T) {
	dbConn := testutil.SetupTestDB(t)
	s := store.New(dbConn)

	run, err := s.CreateRun("38.101-1")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == 0 {
		t.Fatal("expected a non-zero run ID")
	}
	if run.Status != models.RunStatusQueued {
		t.Errorf("expected status %q, got %q", models.RunStatusQueued, run.Status)
	}

	if err := s.UpdateRunProgress(run.ID, 42, "processing meeting folder"); err != nil {
		t.Fatalf("UpdateRunProgress failed: %v", err)
	}
	got, err := s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != models.RunStatusRunning || got.Progress != 42 {
		t.Errorf("expected running/42, got %s/%d", got.Status, got.Progress)
	}
	if got.Message != "processing meeting folder" {
		t.Errorf("unexpected message: %q", got.Message)
	}

	if err := s.FinishRun(run.ID, models.RunStatusSuccess, "done"); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}
	got, err = s.GetRun(run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Status != models.RunStatusSuccess {
		t.Errorf("expected status success, got %q", got.Status)
	}
	if got.Progress != 100 {
		t.Errorf("a successful run should report 100%% progress, got %d", got.Progress)
	}
	if got.FinishedAt == nil {
		t.Error("expected FinishedAt to be set")
	}
}

func TestGetLatestRun(t *testing.T) {
	dbConn := testutil.SetupTestDB(t)
	s := store.New(dbConn)

	latest, err := s.GetLatestRun()
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest != nil {
		t.Fatal("expected nil when no runs exist")
	}

	if _, err := s.CreateRun("38.101-1"); err != nil {
		t.Fatal(err)
	}
	second, err := s.CreateRun("38.104")
	if err != nil {
		t.Fatal(err)
	}

	latest, err = s.GetLatestRun()
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest == nil || latest.ID != second.ID {
		t.Errorf("expected latest run to be %d, got %+v", second.ID, latest)
	}
}

func TestListRuns(t *testing.T) {
	dbConn := testutil.SetupTestDB(t)
	s := store.New(dbConn)

	for i := 0; i < 5; i++ {
		if _, err := s.CreateRun("38.101-1"); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := s.ListRuns(1, 3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs on page 1, got %d", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Error("expected runs in reverse chronological order")
	}

	runs, err = s.ListRuns(2, 3)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs on page 2, got %d", len(runs))
	}
}

func TestFailInterruptedRuns(t *testing.T) {
	dbConn := testutil.SetupTestDB(t)
	s := store.New(dbConn)

	queued, _ := s.CreateRun("38.101-1")
	running, _ := s.CreateRun("38.104")
	s.UpdateRunProgress(running.ID, 50, "half way")
	finished, _ := s.CreateRun("38.133")
	s.FinishRun(finished.ID, models.RunStatusSuccess, "done")

	n, err := s.FailInterruptedRuns()
	if err != nil {
		t.Fatalf("FailInterruptedRuns failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 interrupted runs, got %d", n)
	}

	for _, id := range []int64{queued.ID, running.ID} {
		run, err := s.GetRun(id)
		if err != nil {
			t.Fatal(err)
		}
		if run.Status != models.RunStatusFailed {
			t.Errorf("run %d: expected status failed, got %q", id, run.Status)
		}
		if run.Message != "interrupted by restart" {
			t.Errorf("run %d: unexpected message %q", id, run.Message)
		}
	}

	run, err := s.GetRun(finished.ID)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != models.RunStatusSuccess {
		t.Errorf("finished run should be untouched, got %q", run.Status)
	}
}

func TestRunLogs(t *testing.T) {
	dbConn := testutil.SetupTestDB(t)
	s := store.New(dbConn)

	run, err := s.CreateRun("38.101-1")
	if err != nil {
		t.Fatal(err)
	}

	log, err := s.GetRunLog(run.ID)
	if err != nil {
		t.Fatalf("GetRunLog failed: %v", err)
	}
	if log != "" {
		t.Errorf("expected empty log, got %q", log)
	}

	s.AppendRunLog(run.ID, "Fetching the 3GPP meeting list...")
	s.AppendRunLog(run.ID, "Found 12 meeting folders.")

	log, err = s.GetRunLog(run.ID)
	if err != nil {
		t.Fatalf("GetRunLog failed: %v", err)
	}
	want := "Fetching the 3GPP meeting list...\nFound 12 meeting folders."
	if log != want {
		t.Errorf("expected log %q, got %q", want, log)
	}
}
