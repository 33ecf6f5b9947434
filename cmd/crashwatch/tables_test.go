package main

import (
	"bytes"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lox/crashwatch/internal/categories"
	"github.com/lox/crashwatch/internal/ingest"
	"github.com/lox/crashwatch/internal/models"
	"github.com/lox/crashwatch/internal/store"
)

const testCSV = "crash_date,prim_contributory_cause,weather_condition,trafficway_type," +
	"injuries_non_incapacitating,injuries_incapacitating,injuries_fatal\n" +
	"01/15/2020 08:00:00 AM,FOLLOWING TOO CLOSELY,CLEAR,NOT DIVIDED,1,0,0\n" +
	"04/10/2022 05:30:00 PM,TEXTING,RAIN,FOUR WAY,2,1,0\n" +
	"07/04/2022 11:15:00 PM,UNABLE TO DETERMINE,UNKNOWN,ALLEY,0,0,1\n"

func testDataset(t *testing.T) (*models.Dataset, *categories.Set) {
	t.Helper()
	set, err := categories.Default()
	if err != nil {
		t.Fatal(err)
	}
	records, err := ingest.NewLoader(set, time.UTC).Parse(strings.NewReader(testCSV))
	if err != nil {
		t.Fatal(err)
	}
	return &models.Dataset{Records: records, Source: "test.csv"}, set
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestExportTables(t *testing.T) {
	ds, set := testDataset(t)
	dir := filepath.Join(t.TempDir(), "out")

	files, err := exportTables(dir, ds, set)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d", len(files))
	}

	seasonal := readCSV(t, filepath.Join(dir, "seasonal.csv"))
	if got := strings.Join(seasonal[0], ","); got != "year,Winter,Spring,Summer,Autumn,total" {
		t.Errorf("unexpected header %q", got)
	}
	// 2020..2022 with an empty 2021 row.
	if len(seasonal) != 4 {
		t.Fatalf("expected header plus 3 years, got %d rows", len(seasonal))
	}
	if got := strings.Join(seasonal[2], ","); got != "2021,0,0,0,0,0" {
		t.Errorf("unexpected 2021 row %q", got)
	}

	injuries := readCSV(t, filepath.Join(dir, "injuries.csv"))
	for _, row := range injuries[1:] {
		if row[1] == string(categories.Other) {
			t.Errorf("Other must not be exported as an injury cause: %v", row)
		}
	}

	edges := readCSV(t, filepath.Join(dir, "crossflow_edges.csv"))
	if len(edges) < 2 {
		t.Errorf("expected edges, got %v", edges)
	}
}

func TestPrintSummary(t *testing.T) {
	ds, set := testDataset(t)

	var buf bytes.Buffer
	if err := printSummary(&buf, ds, set); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"3 records from test.csv (2020–2022)", "cause classified as Other: 1", "Fatal injuries: 0", "Injuries with a known cause: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintLoadRuns(t *testing.T) {
	runs := []store.LoadRun{
		{
			StartedAt:    time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
			Source:       "ftp://data.example/crashes.csv",
			ErrorMessage: sql.NullString{String: "ftp login: 530", Valid: true},
		},
		{
			StartedAt:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			Source:     "traffic_accidents.csv",
			Success:    true,
			Checksum:   sql.NullString{String: "0123456789abcdef0123", Valid: true},
			RowsLoaded: sql.NullInt64{Int64: 209306, Valid: true},
		},
	}

	var buf bytes.Buffer
	if err := printLoadRuns(&buf, runs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"failed: ftp login: 530", "209,306", "0123456789ab ", "2024-03-01 10:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestOpenLedger(t *testing.T) {
	if st := openLedger("", time.UTC); st != nil {
		t.Error("expected no ledger for an empty path")
	}

	// A regular file where the database directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if st := openLedger(filepath.Join(blocker, "crashwatch.db"), time.UTC); st != nil {
		st.Close()
		t.Error("expected an unusable path to disable the ledger")
	}

	st := openLedger(filepath.Join(t.TempDir(), "data", "crashwatch.db"), time.UTC)
	if st == nil {
		t.Fatal("expected a ledger")
	}
	defer st.Close()
	if err := st.Ping(); err != nil {
		t.Fatal(err)
	}
}
