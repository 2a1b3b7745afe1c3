package projections

import (
	"context"
	"fmt"
	"strings"
	"time"

	storageAthlete "sagra/internal/adapters/storage/athlete"
	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"
	"sagra/internal/domain/phase"
	"sagra/internal/domain/progress"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type mockAthleteStore struct {
	athletes []athlete.Athlete
	err      error
}

func (m *mockAthleteStore) GetByID(_ context.Context, id string) (athlete.Athlete, error) {
	for _, a := range m.athletes {
		if a.ID == id {
			return a, nil
		}
	}
	return athlete.Athlete{}, fmt.Errorf("athlete %s: %w", id, athlete.ErrAthleteNotFound)
}

func (m *mockAthleteStore) List(_ context.Context, filter storageAthlete.ListFilter) ([]athlete.Athlete, error) {
	if m.err != nil {
		return nil, m.err
	}
	if filter.Offset >= len(m.athletes) {
		return nil, nil
	}
	end := min(filter.Offset+filter.Limit, len(m.athletes))
	return m.athletes[filter.Offset:end], nil
}

func (m *mockAthleteStore) Count(_ context.Context) (int, error) {
	return len(m.athletes), m.err
}

// ListRecentSurgeries returns athletes with surgery in slice order.
func (m *mockAthleteStore) ListRecentSurgeries(_ context.Context, limit int) ([]athlete.Athlete, error) {
	var out []athlete.Athlete
	for _, a := range m.athletes {
		if a.HasSurgery() && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, m.err
}

type mockPhaseStore struct {
	defs []phase.Definition
}

func (m *mockPhaseStore) List(_ context.Context) ([]phase.Definition, error) {
	return m.defs, nil
}

type mockInjuryStore struct {
	byAthlete map[string][]injury.Injury
	types     int
}

func (m *mockInjuryStore) ListByAthlete(_ context.Context, athleteID string) ([]injury.Injury, error) {
	return m.byAthlete[athleteID], nil
}

func (m *mockInjuryStore) CountDistinctTypes(_ context.Context) (int, error) {
	return m.types, nil
}

type mockProgressStore struct {
	byAthlete map[string][]progress.Record
	active    int
}

func (m *mockProgressStore) ListByAthlete(_ context.Context, athleteID string) ([]progress.Record, error) {
	return m.byAthlete[athleteID], nil
}

func (m *mockProgressStore) CountActiveAthletes(_ context.Context) (int, error) {
	return m.active, nil
}

// upperRenderer stands in for the markdown renderer.
type upperRenderer struct{}

func (upperRenderer) Render(source string) string {
	if source == "" {
		return ""
	}
	return "<p>" + strings.ToUpper(source) + "</p>"
}
