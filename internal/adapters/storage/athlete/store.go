package athlete

import (
	"context"

	domain "sagra/internal/domain/athlete"
)

// Store persists Athlete state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Athlete, error)
	GetByName(ctx context.Context, name string) (domain.Athlete, error)
	Save(ctx context.Context, value domain.Athlete) error
	UpsertByName(ctx context.Context, value domain.Athlete) (string, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Athlete, error)
	Count(ctx context.Context) (int, error)
	ListRecentSurgeries(ctx context.Context, limit int) ([]domain.Athlete, error)
}

// ListFilter carries paging parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
}
