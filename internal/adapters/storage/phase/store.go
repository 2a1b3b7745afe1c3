package phase

import (
	"context"

	domain "sagra/internal/domain/phase"
)

// Store persists the rehabilitation protocol catalog.
type Store interface {
	// List returns the catalog ordered by position.
	List(ctx context.Context) ([]domain.Definition, error)
	Save(ctx context.Context, value domain.Definition) error
	Count(ctx context.Context) (int, error)
}
