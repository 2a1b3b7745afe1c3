package progress

import (
	"context"

	domain "sagra/internal/domain/progress"
)

// Store persists phase progress records.
type Store interface {
	// Upsert records the athlete in the phase, atomically on (athlete, phase, start).
	Upsert(ctx context.Context, value domain.Record) error
	ListByAthlete(ctx context.Context, athleteID string) ([]domain.Record, error)
	CountActiveAthletes(ctx context.Context) (int, error)
}
