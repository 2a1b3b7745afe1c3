package projections

import (
	"context"
	"fmt"
	"time"
)

// RecentAthletesLimit is how many athletes the dashboard lists.
const RecentAthletesLimit = 5

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	AthleteStore  AthleteStore
	InjuryStore   InjuryStore
	ProgressStore ProgressStore
}

// RecentAthlete is one row of the dashboard's recent surgeries table.
type RecentAthlete struct {
	ID          string
	Name        string
	SurgeryDate time.Time
	InjuryType  string // latest injury; empty when none is recorded
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	TotalAthletes  int
	InTreatment    int
	InjuryTypes    int
	RecentAthletes []RecentAthlete
}

// QueryGetDashboard computes the clinic overview.
// PRE: none
// POST: Counts are >= 0; RecentAthletes holds at most RecentAthletesLimit rows, latest surgery first
func QueryGetDashboard(ctx context.Context, deps GetDashboardDeps) (DashboardResult, error) {
	var result DashboardResult
	var err error

	if result.TotalAthletes, err = deps.AthleteStore.Count(ctx); err != nil {
		return DashboardResult{}, fmt.Errorf("count athletes: %w", err)
	}
	if result.InTreatment, err = deps.ProgressStore.CountActiveAthletes(ctx); err != nil {
		return DashboardResult{}, fmt.Errorf("count athletes in treatment: %w", err)
	}
	if result.InjuryTypes, err = deps.InjuryStore.CountDistinctTypes(ctx); err != nil {
		return DashboardResult{}, fmt.Errorf("count injury types: %w", err)
	}

	recent, err := deps.AthleteStore.ListRecentSurgeries(ctx, RecentAthletesLimit)
	if err != nil {
		return DashboardResult{}, fmt.Errorf("list recent surgeries: %w", err)
	}
	for _, a := range recent {
		row := RecentAthlete{ID: a.ID, Name: a.Name, SurgeryDate: a.SurgeryDate}
		injuries, err := deps.InjuryStore.ListByAthlete(ctx, a.ID)
		if err != nil {
			return DashboardResult{}, fmt.Errorf("list injuries for %s: %w", a.ID, err)
		}
		// Newest first.
		if len(injuries) > 0 {
			row.InjuryType = injuries[0].Type
		}
		result.RecentAthletes = append(result.RecentAthletes, row)
	}
	return result, nil
}
