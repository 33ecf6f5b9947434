package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Each connection to :memory: is its own database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	loc, err := time.LoadLocation("America/Chicago")
	if err != nil {
		t.Fatalf("load timezone: %v", err)
	}
	store := New(db, loc)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func completeRun(t *testing.T, store *Store, source, checksum string, rows int, fail error) *LoadRun {
	t.Helper()
	run, err := store.StartLoadRun(source)
	if err != nil {
		t.Fatalf("StartLoadRun: %v", err)
	}
	if fail != nil {
		run.MarkFailed(fail)
	} else {
		run.Success = true
		run.Checksum = sql.NullString{String: checksum, Valid: true}
		run.RowsLoaded = sql.NullInt64{Int64: int64(rows), Valid: true}
	}
	if err := store.CompleteLoadRun(run); err != nil {
		t.Fatalf("CompleteLoadRun: %v", err)
	}
	return run
}

func TestLoadRun_StartAndComplete(t *testing.T) {
	store := setupTestStore(t)

	run, err := store.StartLoadRun("data/traffic_accidents.csv")
	if err != nil {
		t.Fatalf("StartLoadRun: %v", err)
	}
	if run.ID == 0 {
		t.Error("run.ID should be set")
	}

	run.Success = true
	run.Checksum = sql.NullString{String: "abc123", Valid: true}
	run.SizeBytes = sql.NullInt64{Int64: 4096, Valid: true}
	run.RowsLoaded = sql.NullInt64{Int64: 3, Valid: true}
	run.FirstYear = sql.NullInt64{Int64: 2018, Valid: true}
	run.LastYear = sql.NullInt64{Int64: 2024, Valid: true}
	run.Fallbacks = map[string]int{"cause": 2, "weather": 0, "trafficway": 1}

	if err := store.CompleteLoadRun(run); err != nil {
		t.Fatalf("CompleteLoadRun: %v", err)
	}

	last, err := store.LastSuccessfulLoad()
	if err != nil {
		t.Fatalf("LastSuccessfulLoad: %v", err)
	}
	if last == nil {
		t.Fatal("LastSuccessfulLoad returned nil")
	}
	if last.ID != run.ID {
		t.Errorf("ID = %d, want %d", last.ID, run.ID)
	}
	if last.Checksum.String != "abc123" {
		t.Errorf("Checksum = %q, want abc123", last.Checksum.String)
	}
	if last.RowsLoaded.Int64 != 3 {
		t.Errorf("RowsLoaded = %d, want 3", last.RowsLoaded.Int64)
	}
	if !last.FinishedAt.Valid {
		t.Error("FinishedAt should be set")
	}
	if last.Fallbacks["cause"] != 2 || last.Fallbacks["trafficway"] != 1 {
		t.Errorf("Fallbacks = %v", last.Fallbacks)
	}
}

func TestLoadRun_Failed(t *testing.T) {
	store := setupTestStore(t)

	completeRun(t, store, "broken.csv", "", 0, errors.New("missing required column(s): crash_date"))

	last, err := store.LastSuccessfulLoad()
	if err != nil {
		t.Fatalf("LastSuccessfulLoad: %v", err)
	}
	if last != nil {
		t.Errorf("LastSuccessfulLoad = %+v, want nil", last)
	}

	runs, err := store.RecentLoadRuns(10)
	if err != nil {
		t.Fatalf("RecentLoadRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].Success {
		t.Error("run should not be successful")
	}
	if runs[0].ErrorMessage.String != "missing required column(s): crash_date" {
		t.Errorf("ErrorMessage = %q", runs[0].ErrorMessage.String)
	}
}

func TestRecentLoadRuns_NewestFirst(t *testing.T) {
	store := setupTestStore(t)

	first := completeRun(t, store, "a.csv", "one", 1, nil)
	second := completeRun(t, store, "a.csv", "two", 2, nil)

	runs, err := store.RecentLoadRuns(1)
	if err != nil {
		t.Fatalf("RecentLoadRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Errorf("newest run ID = %d, want %d (first was %d)", runs[0].ID, second.ID, first.ID)
	}
}

func TestChecksumChanged(t *testing.T) {
	store := setupTestStore(t)

	tests := []struct {
		name     string
		source   string
		checksum string
		want     bool
	}{
		{"never loaded", "a.csv", "one", true},
		{"same checksum", "a.csv", "abc", false},
		{"different checksum", "a.csv", "def", true},
		{"other source", "b.csv", "abc", true},
	}

	completeRun(t, store, "a.csv", "abc", 10, nil)
	completeRun(t, store, "a.csv", "", 0, errors.New("boom"))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := tt.source
			if tt.name == "never loaded" {
				source = "never.csv"
			}
			got, err := store.ChecksumChanged(source, tt.checksum)
			if err != nil {
				t.Fatalf("ChecksumChanged: %v", err)
			}
			if got != tt.want {
				t.Errorf("ChecksumChanged(%q, %q) = %v, want %v", source, tt.checksum, got, tt.want)
			}
		})
	}
}

func TestMigrationVersion(t *testing.T) {
	store := setupTestStore(t)

	version, err := store.MigrationVersion()
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("MigrationVersion = %d, want %d", version, len(migrations))
	}

	if err := store.Migrate(); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestLoadHealth_Aggregation(t *testing.T) {
	store := setupTestStore(t)

	completeRun(t, store, "a.csv", "abc", 10, nil)
	completeRun(t, store, "a.csv", "", 0, errors.New("boom"))

	health, err := store.GetLoadHealth(1)
	if err != nil {
		t.Fatalf("GetLoadHealth: %v", err)
	}
	if len(health) != 1 {
		t.Fatalf("len(health) = %d, want 1", len(health))
	}
	h := health[0]
	if h.TotalRuns != 2 {
		t.Errorf("TotalRuns = %d, want 2", h.TotalRuns)
	}
	if h.SuccessRuns != 1 {
		t.Errorf("SuccessRuns = %d, want 1", h.SuccessRuns)
	}
	if h.FailedRuns != 1 {
		t.Errorf("FailedRuns = %d, want 1", h.FailedRuns)
	}
}
