package outbox

import (
	"context"

	domain "sagra/internal/domain/outbox"
)

// Store defines the interface for outbox entry persistence.
type Store interface {
	// GetByID retrieves an outbox entry by its ID.
	// PRE: id is non-empty
	// POST: Returns the entry or an error if not found
	GetByID(ctx context.Context, id string) (domain.Entry, error)

	// Save persists an outbox entry, overwriting an existing one with the same ID.
	// PRE: entity has been validated
	// POST: Entity is persisted (insert or update)
	Save(ctx context.Context, e domain.Entry) error

	// Enqueue inserts a new entry unless one with the same ID already exists.
	// PRE: entity has been validated
	// POST: Returns true when a row was inserted
	Enqueue(ctx context.Context, e domain.Entry) (bool, error)

	// ListPending returns entries that still need delivery (pending or retrying).
	// PRE: limit > 0
	// POST: Returns up to limit entries ordered by created_at
	ListPending(ctx context.Context, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts.
	// PRE: limit > 0
	// POST: Returns up to limit failed entries, most recently attempted first
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
