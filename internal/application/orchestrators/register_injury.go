package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"

	"github.com/google/uuid"
)

// AthleteLookup resolves an athlete by ID.
type AthleteLookup interface {
	GetByID(ctx context.Context, id string) (athlete.Athlete, error)
}

// InjuryStore defines the interface for injury persistence.
type InjuryStore interface {
	Save(ctx context.Context, i injury.Injury) error
}

// RegisterInjuryInput carries input for the orchestrator.
type RegisterInjuryInput struct {
	AthleteID   string
	Type        string
	InjuryDate  time.Time
	SurgeryDate time.Time // zero when not operated
	Notes       string
}

// RegisterInjuryDeps holds dependencies for RegisterInjury.
type RegisterInjuryDeps struct {
	AthleteStore AthleteLookup
	InjuryStore  InjuryStore
	GenerateID   func() string
}

// ExecuteRegisterInjury records an injury against an existing athlete.
// PRE: athlete exists
// POST: Injury persisted; the athlete's follow-up surgery date is unchanged
func ExecuteRegisterInjury(ctx context.Context, input RegisterInjuryInput, deps RegisterInjuryDeps) (injury.Injury, error) {
	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}

	inj := injury.Injury{
		ID:          genID(),
		AthleteID:   input.AthleteID,
		Type:        input.Type,
		InjuryDate:  input.InjuryDate,
		SurgeryDate: input.SurgeryDate,
		Notes:       input.Notes,
	}
	if err := inj.Validate(); err != nil {
		return injury.Injury{}, err
	}

	if _, err := deps.AthleteStore.GetByID(ctx, input.AthleteID); err != nil {
		return injury.Injury{}, fmt.Errorf("injury for %s: %w", input.AthleteID, err)
	}

	if err := deps.InjuryStore.Save(ctx, inj); err != nil {
		return injury.Injury{}, err
	}

	slog.Info("injury_registered", "injury_id", inj.ID, "athlete_id", inj.AthleteID, "type", inj.Type, "operated", inj.IsOperated())
	return inj, nil
}
