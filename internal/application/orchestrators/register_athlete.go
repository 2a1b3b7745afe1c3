package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sagra/internal/domain/athlete"

	"github.com/google/uuid"
)

// AthleteStoreForRegister defines the store interface needed by RegisterAthlete.
type AthleteStoreForRegister interface {
	GetByName(ctx context.Context, name string) (athlete.Athlete, error)
	Save(ctx context.Context, a athlete.Athlete) error
}

// RegisterAthleteInput carries input for the orchestrator.
type RegisterAthleteInput struct {
	Name      string
	BirthDate time.Time
	Position  string
	Club      string
}

// RegisterAthleteDeps holds dependencies for RegisterAthlete.
type RegisterAthleteDeps struct {
	AthleteStore AthleteStoreForRegister
	GenerateID   func() string
}

// ExecuteRegisterAthlete records a new athlete profile.
// PRE: Name is unique
// POST: Athlete persisted with a generated ID and no surgery date
// INVARIANT: names are unique; a taken name returns athlete.ErrDuplicateName
func ExecuteRegisterAthlete(ctx context.Context, input RegisterAthleteInput, deps RegisterAthleteDeps) (athlete.Athlete, error) {
	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}

	a := athlete.Athlete{
		ID:        genID(),
		Name:      strings.TrimSpace(input.Name),
		BirthDate: input.BirthDate,
		Position:  input.Position,
		Club:      strings.TrimSpace(input.Club),
	}
	if err := a.Validate(); err != nil {
		return athlete.Athlete{}, err
	}

	_, err := deps.AthleteStore.GetByName(ctx, a.Name)
	switch {
	case err == nil:
		return athlete.Athlete{}, athlete.ErrDuplicateName
	case !errors.Is(err, athlete.ErrAthleteNotFound):
		return athlete.Athlete{}, fmt.Errorf("look up athlete: %w", err)
	}

	if err := deps.AthleteStore.Save(ctx, a); err != nil {
		return athlete.Athlete{}, err
	}

	slog.Info("athlete_registered", "athlete_id", a.ID, "position", a.Position)
	return a, nil
}
