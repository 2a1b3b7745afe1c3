package phase

import (
	"context"

	"sagra/internal/adapters/storage"
	domain "sagra/internal/domain/phase"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new phase catalog store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns every phase definition ordered by catalog position.
// PRE: none
// POST: Returns the catalog in scheduling order, empty before seeding
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Definition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, position, name, approx_period, allowed_activities, specific_tests,
		        treatments, physical_prep, rugby_skills
		 FROM rehab_phase ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var catalog []domain.Definition
	for rows.Next() {
		var d domain.Definition
		if err := rows.Scan(&d.ID, &d.Position, &d.Name, &d.ApproxPeriod, &d.AllowedActivities,
			&d.SpecificTests, &d.Treatments, &d.PhysicalPrep, &d.RugbySkills); err != nil {
			return nil, err
		}
		catalog = append(catalog, d)
	}
	return catalog, rows.Err()
}

// Save persists a phase definition.
// PRE: definition has been validated
// POST: Entity is persisted (insert or update by ID)
func (s *SQLiteStore) Save(ctx context.Context, d domain.Definition) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO rehab_phase (id, position, name, approx_period, allowed_activities, specific_tests,
		                          treatments, physical_prep, rugby_skills)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   position=excluded.position, name=excluded.name, approx_period=excluded.approx_period,
		   allowed_activities=excluded.allowed_activities, specific_tests=excluded.specific_tests,
		   treatments=excluded.treatments, physical_prep=excluded.physical_prep,
		   rugby_skills=excluded.rugby_skills`,
		d.ID, d.Position, d.Name, d.ApproxPeriod, d.AllowedActivities, d.SpecificTests,
		d.Treatments, d.PhysicalPrep, d.RugbySkills)
	return err
}

// Count returns the number of catalog entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rehab_phase").Scan(&n)
	return n, err
}
