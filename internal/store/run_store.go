package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spectrack/spectrack-go/internal/models"
)

// CreateRun inserts a new tracking run in the "queued" state and returns it.
func (s *Store) CreateRun(specNumber string) (*models.TrackingRun, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO tracking_runs (spec_number, status, progress, started_at)
		VALUES (?, ?, 0, ?)`,
		specNumber, models.RunStatusQueued, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.TrackingRun{
		ID:         id,
		SpecNumber: specNumber,
		Status:     models.RunStatusQueued,
		StartedAt:  now,
	}, nil
}

// UpdateRunProgress sets the progress percentage and message for a run and
// marks it as running.
func (s *Store) UpdateRunProgress(runID int64, progress int, message string) error {
	_, err := s.db.Exec(`
		UPDATE tracking_runs SET status = ?, progress = ?, message = ?
		WHERE id = ?`,
		models.RunStatusRunning, progress, message, runID,
	)
	return err
}

// FinishRun marks a run as finished with the given terminal status.
func (s *Store) FinishRun(runID int64, status string, message string) error {
	now := time.Now().UTC()
	progressExpr := "progress"
	if status == models.RunStatusSuccess {
		progressExpr = "100"
	}
	_, err := s.db.Exec(fmt.Sprintf(`
		UPDATE tracking_runs SET status = ?, message = ?, progress = %s, finished_at = ?
		WHERE id = ?`, progressExpr),
		status, message, now, runID,
	)
	return err
}

// GetRun fetches a single run by ID.
func (s *Store) GetRun(runID int64) (*models.TrackingRun, error) {
	row := s.db.QueryRow(`
		SELECT id, spec_number, status, progress, message, started_at, finished_at
		FROM tracking_runs WHERE id = ?`, runID)
	return scanRun(row)
}

// GetLatestRun returns the most recently started run, or nil if no run has
// ever been recorded.
func (s *Store) GetLatestRun() (*models.TrackingRun, error) {
	row := s.db.QueryRow(`
		SELECT id, spec_number, status, progress, message, started_at, finished_at
		FROM tracking_runs ORDER BY id DESC LIMIT 1`)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return run, err
}

// ListRuns returns runs in reverse chronological order, limited to the given
// page size.
func (s *Store) ListRuns(page, perPage int) ([]*models.TrackingRun, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 50
	}
	rows, err := s.db.Query(`
		SELECT id, spec_number, status, progress, message, started_at, finished_at
		FROM tracking_runs ORDER BY id DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.TrackingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// FailInterruptedRuns marks any run left in a non-terminal state (by a
// previous process that died mid-run) as failed. Returns the number of runs
// updated.
func (s *Store) FailInterruptedRuns() (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		UPDATE tracking_runs SET status = ?, message = ?, finished_at = ?
		WHERE status IN (?, ?)`,
		models.RunStatusFailed, "interrupted by restart", now,
		models.RunStatusQueued, models.RunStatusRunning,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// AppendRunLog adds one log line to a run's log.
func (s *Store) AppendRunLog(runID int64, line string) error {
	_, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, line) VALUES (?, ?)`, runID, line)
	return err
}

// GetRunLog returns a run's log as a single newline-joined string, in
// insertion order.
func (s *Store) GetRunLog(runID int64) (string, error) {
	rows, err := s.db.Query(`
		SELECT line FROM run_logs WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return "", err
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.TrackingRun, error) {
	var run models.TrackingRun
	var finishedAt sql.NullTime
	err := row.Scan(&run.ID, &run.SpecNumber, &run.Status, &run.Progress,
		&run.Message, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}
	return &run, nil
}
