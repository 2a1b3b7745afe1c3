package injury

import (
	"context"

	domain "sagra/internal/domain/injury"
)

// Store persists Injury state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Injury, error)
	Save(ctx context.Context, value domain.Injury) error
	Delete(ctx context.Context, id string) error
	ListByAthlete(ctx context.Context, athleteID string) ([]domain.Injury, error)
	CountDistinctTypes(ctx context.Context) (int, error)
}
