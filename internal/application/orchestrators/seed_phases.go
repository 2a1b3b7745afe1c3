package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"sagra/internal/domain/phase"

	"github.com/google/uuid"
)

// PhaseStoreForSeed defines the store interface needed by SeedPhases.
type PhaseStoreForSeed interface {
	Save(ctx context.Context, d phase.Definition) error
	Count(ctx context.Context) (int, error)
}

// SeedPhasesDeps holds dependencies for SeedPhases.
type SeedPhasesDeps struct {
	PhaseStore PhaseStoreForSeed
	GenerateID func() string
}

// ExecuteSeedPhases writes the default protocol when the catalog is empty.
// PRE: schema is migrated
// POST: Returns the number of phases written, 0 if the catalog already had rows
// INVARIANT: an existing catalog is never modified
func ExecuteSeedPhases(ctx context.Context, deps SeedPhasesDeps) (int, error) {
	existing, err := deps.PhaseStore.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count phases: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}

	catalog := phase.DefaultCatalog()
	for _, d := range catalog {
		d.ID = genID()
		if err := d.Validate(); err != nil {
			return 0, fmt.Errorf("seed phase %q: %w", d.Name, err)
		}
		if err := deps.PhaseStore.Save(ctx, d); err != nil {
			return 0, fmt.Errorf("seed phase %q: %w", d.Name, err)
		}
	}

	slog.Info("seed_event", "event", "phases_seeded", "phases", len(catalog))
	return len(catalog), nil
}
