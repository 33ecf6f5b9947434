package store

import (
	"database/sql"
	"fmt"
	"time"
)

// LoadRun records one attempt to load the dataset.
type LoadRun struct {
	ID           int64
	StartedAt    time.Time
	FinishedAt   sql.NullTime
	Source       string
	Checksum     sql.NullString
	SizeBytes    sql.NullInt64
	RowsLoaded   sql.NullInt64
	FirstYear    sql.NullInt64
	LastYear     sql.NullInt64
	Success      bool
	ErrorMessage sql.NullString

	// Fallbacks counts records classified as Other, keyed by dimension.
	Fallbacks map[string]int
}

// StartLoadRun inserts a pending run for source.
func (s *Store) StartLoadRun(source string) (*LoadRun, error) {
	run := &LoadRun{
		StartedAt: time.Now().UTC(),
		Source:    source,
	}
	result, err := s.db.Exec(`
		INSERT INTO load_runs (started_at, source, success)
		VALUES (?, ?, FALSE)
	`, run.StartedAt, run.Source)
	if err != nil {
		return nil, fmt.Errorf("insert load run: %w", err)
	}
	run.ID, err = result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return run, nil
}

// CompleteLoadRun stores the outcome of run, including its fallback counts.
func (s *Store) CompleteLoadRun(run *LoadRun) error {
	if run == nil {
		return nil
	}
	run.FinishedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		UPDATE load_runs SET
			finished_at = ?,
			checksum = ?,
			size_bytes = ?,
			rows_loaded = ?,
			first_year = ?,
			last_year = ?,
			success = ?,
			error_message = ?
		WHERE id = ?
	`, run.FinishedAt, run.Checksum, run.SizeBytes, run.RowsLoaded, run.FirstYear,
		run.LastYear, run.Success, run.ErrorMessage, run.ID); err != nil {
		return fmt.Errorf("update load run %d: %w", run.ID, err)
	}

	for dim, n := range run.Fallbacks {
		if _, err := tx.Exec(`
			INSERT INTO load_fallbacks (run_id, dimension, fallback_count)
			VALUES (?, ?, ?)
			ON CONFLICT(run_id, dimension) DO UPDATE SET fallback_count = excluded.fallback_count
		`, run.ID, dim, n); err != nil {
			return fmt.Errorf("record fallbacks for run %d: %w", run.ID, err)
		}
	}
	return tx.Commit()
}

// MarkFailed sets the run's error fields from err.
func (r *LoadRun) MarkFailed(err error) {
	r.Success = false
	r.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
}

const loadRunColumns = `id, started_at, finished_at, source, checksum, size_bytes, rows_loaded,
	first_year, last_year, success, error_message`

func scanLoadRun(row interface{ Scan(...any) error }) (LoadRun, error) {
	var r LoadRun
	err := row.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Source, &r.Checksum, &r.SizeBytes,
		&r.RowsLoaded, &r.FirstYear, &r.LastYear, &r.Success, &r.ErrorMessage)
	return r, err
}

// RecentLoadRuns returns the latest runs, newest first.
func (s *Store) RecentLoadRuns(limit int) ([]LoadRun, error) {
	rows, err := s.db.Query(`
		SELECT `+loadRunColumns+`
		FROM load_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LoadRun
	for rows.Next() {
		r, err := scanLoadRun(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		fb, err := s.fallbacks(results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Fallbacks = fb
	}
	return results, nil
}

// LastSuccessfulLoad returns the newest successful run, or nil when there is
// none.
func (s *Store) LastSuccessfulLoad() (*LoadRun, error) {
	row := s.db.QueryRow(`
		SELECT ` + loadRunColumns + `
		FROM load_runs
		WHERE success = TRUE
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`)
	r, err := scanLoadRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Fallbacks, err = s.fallbacks(r.ID)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ChecksumChanged reports whether checksum differs from the last successful
// load of the same source. A source never loaded before counts as changed.
func (s *Store) ChecksumChanged(source, checksum string) (bool, error) {
	var prev sql.NullString
	err := s.db.QueryRow(`
		SELECT checksum FROM load_runs
		WHERE source = ? AND success = TRUE
		ORDER BY started_at DESC, id DESC
		LIMIT 1
	`, source).Scan(&prev)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !prev.Valid || prev.String != checksum, nil
}

func (s *Store) fallbacks(runID int64) (map[string]int, error) {
	rows, err := s.db.Query(`SELECT dimension, fallback_count FROM load_fallbacks WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var dim string
		var n int
		if err := rows.Scan(&dim, &n); err != nil {
			return nil, err
		}
		out[dim] = n
	}
	return out, rows.Err()
}

// LoadHealth summarises runs per day for the last N days.
type LoadHealth struct {
	Date        string
	TotalRuns   int
	SuccessRuns int
	FailedRuns  int
}

func (s *Store) GetLoadHealth(days int) ([]LoadHealth, error) {
	rows, err := s.db.Query(`
		SELECT
			DATE(SUBSTR(started_at, 1, 19)) as date,
			COUNT(*) as total_runs,
			SUM(CASE WHEN success THEN 1 ELSE 0 END) as success_runs,
			SUM(CASE WHEN NOT success THEN 1 ELSE 0 END) as failed_runs
		FROM load_runs
		WHERE SUBSTR(started_at, 1, 19) > datetime('now', '-' || ? || ' days')
		GROUP BY date
		ORDER BY date DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []LoadHealth
	for rows.Next() {
		var h LoadHealth
		if err := rows.Scan(&h.Date, &h.TotalRuns, &h.SuccessRuns, &h.FailedRuns); err != nil {
			return nil, err
		}
		results = append(results, h)
	}
	return results, rows.Err()
}
