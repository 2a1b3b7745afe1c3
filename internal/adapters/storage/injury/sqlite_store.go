package injury

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sagra/internal/adapters/storage"
	domain "sagra/internal/domain/injury"
)

// ErrNotFound is returned when no injury matches.
var ErrNotFound = errors.New("injury not found")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new injury store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInjury(row scanner) (domain.Injury, error) {
	var i domain.Injury
	var injuryDate, surgeryDate string
	if err := row.Scan(&i.ID, &i.AthleteID, &i.Type, &injuryDate, &surgeryDate, &i.Notes); err != nil {
		return domain.Injury{}, err
	}
	var err error
	if i.InjuryDate, err = storage.ParseDate(injuryDate); err != nil {
		return domain.Injury{}, fmt.Errorf("failed to parse injury_date: %w", err)
	}
	if i.SurgeryDate, err = storage.ParseDate(surgeryDate); err != nil {
		return domain.Injury{}, fmt.Errorf("failed to parse surgery_date: %w", err)
	}
	return i, nil
}

// GetByID retrieves an Injury by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Injury, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, athlete_id, type, injury_date, surgery_date, notes FROM injury WHERE id = ?", id)
	i, err := scanInjury(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Injury{}, fmt.Errorf("injury %s: %w", id, ErrNotFound)
	}
	return i, err
}

// Save persists an Injury to the database.
// PRE: entity has been validated and its athlete exists
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, i domain.Injury) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO injury (id, athlete_id, type, injury_date, surgery_date, notes)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   athlete_id=excluded.athlete_id, type=excluded.type, injury_date=excluded.injury_date,
		   surgery_date=excluded.surgery_date, notes=excluded.notes`,
		i.ID, i.AthleteID, i.Type, storage.FormatDate(i.InjuryDate), storage.FormatDate(i.SurgeryDate), i.Notes)
	return err
}

// Delete removes an Injury from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM injury WHERE id = ?", id)
	return err
}

// ListByAthlete returns an athlete's injuries, most recent first.
// PRE: athleteID is non-empty
// POST: Returns an empty slice when the athlete has none
func (s *SQLiteStore) ListByAthlete(ctx context.Context, athleteID string) ([]domain.Injury, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, athlete_id, type, injury_date, surgery_date, notes FROM injury
		 WHERE athlete_id = ? ORDER BY injury_date DESC, id`, athleteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Injury
	for rows.Next() {
		i, err := scanInjury(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, i)
	}
	return results, rows.Err()
}

// CountDistinctTypes returns how many different injury types are on record.
func (s *SQLiteStore) CountDistinctTypes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT type) FROM injury").Scan(&n)
	return n, err
}
