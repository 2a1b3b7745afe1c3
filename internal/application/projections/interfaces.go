package projections

import (
	"context"

	"sagra/internal/adapters/storage/athlete"
	domainAthlete "sagra/internal/domain/athlete"
	domainInjury "sagra/internal/domain/injury"
	domainPhase "sagra/internal/domain/phase"
	domainProgress "sagra/internal/domain/progress"
)

// AthleteStore interface for athlete queries.
type AthleteStore interface {
	GetByID(ctx context.Context, id string) (domainAthlete.Athlete, error)
	List(ctx context.Context, filter athlete.ListFilter) ([]domainAthlete.Athlete, error)
	Count(ctx context.Context) (int, error)
	ListRecentSurgeries(ctx context.Context, limit int) ([]domainAthlete.Athlete, error)
}

// PhaseStore interface for catalog queries.
type PhaseStore interface {
	List(ctx context.Context) ([]domainPhase.Definition, error)
}

// InjuryStore interface for injury queries.
type InjuryStore interface {
	ListByAthlete(ctx context.Context, athleteID string) ([]domainInjury.Injury, error)
	CountDistinctTypes(ctx context.Context) (int, error)
}

// ProgressStore interface for progress queries.
type ProgressStore interface {
	ListByAthlete(ctx context.Context, athleteID string) ([]domainProgress.Record, error)
	CountActiveAthletes(ctx context.Context) (int, error)
}

// MarkdownRenderer turns markdown notes into HTML.
type MarkdownRenderer interface {
	Render(source string) string
}
