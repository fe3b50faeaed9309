package store

import (
	"github.com/spectrack/spectrack-go/internal/models"
)

// InsertResult records one matched change request for a run.
func (s *Store) InsertResult(runID int64, row models.ResultRow) error {
	_, err := s.db.Exec(`
		INSERT INTO results (run_id, meeting_folder, rp_number, r4_document, matching_clause, summary_of_change)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, row.MeetingFolder, row.RPNumber, row.R4Document,
		row.MatchingClause, row.SummaryOfChange,
	)
	return err
}

// GetResultsByRun returns all results for a run in insertion order.
func (s *Store) GetResultsByRun(runID int64) ([]models.ResultRow, error) {
	rows, err := s.db.Query(`
		SELECT meeting_folder, rp_number, r4_document, matching_clause, summary_of_change
		FROM results WHERE run_id = ? ORDER BY id ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.ResultRow, 0)
	for rows.Next() {
		var r models.ResultRow
		if err := rows.Scan(&r.MeetingFolder, &r.RPNumber, &r.R4Document,
			&r.MatchingClause, &r.SummaryOfChange); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountResultsByRun returns how many results a run produced.
func (s *Store) CountResultsByRun(runID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM results WHERE run_id = ?`, runID).Scan(&count)
	return count, err
}
