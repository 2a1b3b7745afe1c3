package athlete

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"sagra/internal/adapters/storage"
	domain "sagra/internal/domain/athlete"
)

const athleteColumns = "id, name, birth_date, position, club, surgery_date"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new athlete store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAthlete(row scanner) (domain.Athlete, error) {
	var a domain.Athlete
	var birth, surgery string
	if err := row.Scan(&a.ID, &a.Name, &birth, &a.Position, &a.Club, &surgery); err != nil {
		return domain.Athlete{}, err
	}
	var err error
	if a.BirthDate, err = storage.ParseDate(birth); err != nil {
		return domain.Athlete{}, fmt.Errorf("failed to parse birth_date: %w", err)
	}
	if a.SurgeryDate, err = storage.ParseDate(surgery); err != nil {
		return domain.Athlete{}, fmt.Errorf("failed to parse surgery_date: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) getOne(ctx context.Context, where string, arg any) (domain.Athlete, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+athleteColumns+" FROM athlete WHERE "+where+" = ?", arg)
	a, err := scanAthlete(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Athlete{}, fmt.Errorf("athlete %v: %w", arg, domain.ErrAthleteNotFound)
	}
	return a, err
}

// GetByID retrieves an Athlete by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error wrapping ErrAthleteNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Athlete, error) {
	return s.getOne(ctx, "id", id)
}

// GetByName retrieves an Athlete by its unique name.
// PRE: name is non-empty
// POST: Returns the entity or an error wrapping ErrAthleteNotFound
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (domain.Athlete, error) {
	return s.getOne(ctx, "name", name)
}

// Save persists an Athlete, replacing every field of an existing row with the same ID.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, a domain.Athlete) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO athlete (`+athleteColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, birth_date=excluded.birth_date, position=excluded.position,
		   club=excluded.club, surgery_date=excluded.surgery_date`,
		a.ID, a.Name, storage.FormatDate(a.BirthDate), a.Position, a.Club, storage.FormatDate(a.SurgeryDate))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: athlete.name") {
		return fmt.Errorf("%s: %w", a.Name, domain.ErrDuplicateName)
	}
	return err
}

// UpsertByName inserts the athlete or, when the name exists, updates only its surgery date.
// PRE: a.ID is a fresh ID used only if the name is new
// POST: Returns the ID of the stored row (existing or new)
// INVARIANT: one row per name; profile fields of an existing athlete are untouched
func (s *SQLiteStore) UpsertByName(ctx context.Context, a domain.Athlete) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO athlete (`+athleteColumns+`) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET surgery_date=excluded.surgery_date
		 RETURNING id`,
		a.ID, a.Name, storage.FormatDate(a.BirthDate), a.Position, a.Club, storage.FormatDate(a.SurgeryDate),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert athlete %q: %w", a.Name, err)
	}
	return id, nil
}

// List returns athletes ordered by name.
// PRE: filter.Limit > 0
// POST: Returns at most filter.Limit athletes
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Athlete, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+athleteColumns+" FROM athlete ORDER BY name LIMIT ? OFFSET ?", filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAthletes(rows)
}

// Count returns the number of registered athletes.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM athlete").Scan(&n)
	return n, err
}

// ListRecentSurgeries returns athletes with a surgery on record, most recent surgery first.
// PRE: limit > 0
// POST: Athletes without a surgery date are excluded
func (s *SQLiteStore) ListRecentSurgeries(ctx context.Context, limit int) ([]domain.Athlete, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+athleteColumns+" FROM athlete WHERE surgery_date != '' ORDER BY surgery_date DESC, name LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAthletes(rows)
}

func scanAthletes(rows *sql.Rows) ([]domain.Athlete, error) {
	var out []domain.Athlete
	for rows.Next() {
		a, err := scanAthlete(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
