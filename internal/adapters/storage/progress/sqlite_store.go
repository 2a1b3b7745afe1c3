package progress

import (
	"context"
	"fmt"

	"sagra/internal/adapters/storage"
	domain "sagra/internal/domain/progress"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new progress store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Upsert inserts the record with its own status (in-progress when empty) or,
// when (athlete_id, phase, start_date) exists, resets its status to
// in-progress and moves its end date. One statement, so concurrent callers
// never observe or create a duplicate.
// PRE: record has been validated; r.ID is used only for a new row
// POST: Exactly one row exists for the composite key
// INVARIANT: repeated identical calls leave the row unchanged
func (s *SQLiteStore) Upsert(ctx context.Context, r domain.Record) error {
	status := r.Status
	if status == "" {
		status = domain.StatusInProgress
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (id, athlete_id, phase, start_date, end_date, status)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(athlete_id, phase, start_date) DO UPDATE SET
		   status=?, end_date=excluded.end_date`,
		r.ID, r.AthleteID, r.Phase, storage.FormatDate(r.StartDate), storage.FormatDate(r.EndDate),
		status, domain.StatusInProgress)
	if err != nil {
		return fmt.Errorf("upsert progress %s: %w", r.Key(), err)
	}
	return nil
}

// ListByAthlete returns an athlete's progress history in start order.
// PRE: athleteID is non-empty
// POST: Returns an empty slice when none exist
func (s *SQLiteStore) ListByAthlete(ctx context.Context, athleteID string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, athlete_id, phase, start_date, end_date, status FROM progress
		 WHERE athlete_id = ? ORDER BY start_date, phase`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var r domain.Record
		var start, end string
		if err := rows.Scan(&r.ID, &r.AthleteID, &r.Phase, &start, &end, &r.Status); err != nil {
			return nil, err
		}
		if r.StartDate, err = storage.ParseDate(start); err != nil {
			return nil, fmt.Errorf("failed to parse start_date: %w", err)
		}
		if r.EndDate, err = storage.ParseDate(end); err != nil {
			return nil, fmt.Errorf("failed to parse end_date: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountActiveAthletes returns how many athletes have an in-progress phase.
func (s *SQLiteStore) CountActiveAthletes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT athlete_id) FROM progress WHERE status = ?", domain.StatusInProgress).Scan(&n)
	return n, err
}
