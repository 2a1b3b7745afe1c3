package projections

import (
	"context"
	"fmt"
	"time"

	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"
	"sagra/internal/domain/phase"
	"sagra/internal/domain/progress"
	"sagra/internal/domain/rehab"
)

// Display labels for physical-prep status tags.
var statusLabels = []struct {
	status string
	label  string
}{
	{phase.StatusComplete, "Completo"},
	{phase.StatusProgression, "Em Progressão"},
	{phase.StatusRestricted, "Com Restrição"},
}

// GetRehabPlanQuery carries query parameters.
type GetRehabPlanQuery struct {
	AthleteID string
}

// GetRehabPlanDeps holds dependencies for GetRehabPlan.
type GetRehabPlanDeps struct {
	AthleteStore  AthleteStore
	PhaseStore    PhaseStore
	InjuryStore   InjuryStore
	ProgressStore ProgressStore
	Renderer      MarkdownRenderer
	Now           func() time.Time // wall clock in the clinic's time zone
}

// StatusCount is the number of exercises carrying one status.
type StatusCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// InjuryView is an injury with its notes rendered for display.
type InjuryView struct {
	injury.Injury
	NotesHTML string
}

// GetRehabPlanResult carries the query result.
// Schedule fields are empty when the athlete has no surgery on record.
type GetRehabPlanResult struct {
	Athlete           athlete.Athlete
	Today             time.Time
	Schedule          []rehab.ScheduledPhase
	DischargeForecast time.Time
	DaysSinceSurgery  int
	CurrentWeek       int
	PercentComplete   float64
	Current           rehab.ScheduledPhase
	InPhase           bool
	StatusCounts      []StatusCount
	Skills            []phase.SkillLevel
	Injuries          []InjuryView
	Progress          []progress.Record
}

// QueryGetRehabPlan assembles an athlete's rehabilitation plan for today.
// PRE: AthleteID is non-empty
// POST: Returns the plan or an error wrapping athlete.ErrAthleteNotFound
// INVARIANT: reads only; nothing is recorded
func QueryGetRehabPlan(ctx context.Context, query GetRehabPlanQuery, deps GetRehabPlanDeps) (GetRehabPlanResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	a, err := deps.AthleteStore.GetByID(ctx, query.AthleteID)
	if err != nil {
		return GetRehabPlanResult{}, err
	}
	result := GetRehabPlanResult{Athlete: a, Today: rehab.CivilDate(now())}

	injuries, err := deps.InjuryStore.ListByAthlete(ctx, a.ID)
	if err != nil {
		return GetRehabPlanResult{}, fmt.Errorf("list injuries: %w", err)
	}
	for _, inj := range injuries {
		view := InjuryView{Injury: inj}
		if deps.Renderer != nil {
			view.NotesHTML = deps.Renderer.Render(inj.Notes)
		}
		result.Injuries = append(result.Injuries, view)
	}

	if result.Progress, err = deps.ProgressStore.ListByAthlete(ctx, a.ID); err != nil {
		return GetRehabPlanResult{}, fmt.Errorf("list progress: %w", err)
	}

	if !a.HasSurgery() {
		return result, nil
	}

	catalog, err := deps.PhaseStore.List(ctx)
	if err != nil {
		return GetRehabPlanResult{}, fmt.Errorf("load phase catalog: %w", err)
	}
	if result.Schedule, err = rehab.ComputeSchedule(a.SurgeryDate, catalog); err != nil {
		return GetRehabPlanResult{}, err
	}
	result.DischargeForecast = rehab.DischargeForecast(a.SurgeryDate)
	result.DaysSinceSurgery = rehab.DaysSinceSurgery(a.SurgeryDate, result.Today)
	result.CurrentWeek = rehab.CurrentWeek(a.SurgeryDate, result.Today)
	result.PercentComplete = rehab.PercentComplete(a.SurgeryDate, result.Today)

	result.Current, result.InPhase = rehab.LocateCurrent(result.Today, result.Schedule)
	if !result.InPhase {
		return result, nil
	}

	counts := result.Current.Phase.StatusCounts()
	for _, s := range statusLabels {
		result.StatusCounts = append(result.StatusCounts, StatusCount{Label: s.label, Count: counts[s.status]})
	}
	if result.Skills, err = result.Current.Phase.RugbySkillList(); err != nil {
		return GetRehabPlanResult{}, fmt.Errorf("phase %q: %w", result.Current.Phase.Name, err)
	}
	return result, nil
}
