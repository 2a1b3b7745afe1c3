package projections

import (
	"context"
	"fmt"

	"sagra/internal/adapters/storage/athlete"
	domain "sagra/internal/domain/athlete"
)

// DefaultAthletePageSize applies when the query asks for no limit.
const DefaultAthletePageSize = 100

// GetAthleteListQuery carries query parameters.
type GetAthleteListQuery struct {
	Limit  int
	Offset int
}

// GetAthleteListResult carries the query result.
type GetAthleteListResult struct {
	Athletes []domain.Athlete
	Total    int
}

// GetAthleteListDeps holds dependencies for GetAthleteList.
type GetAthleteListDeps struct {
	AthleteStore AthleteStore
}

// QueryGetAthleteList pages through athletes ordered by name.
// PRE: Offset >= 0
// POST: Returns one page and the total count
func QueryGetAthleteList(ctx context.Context, query GetAthleteListQuery, deps GetAthleteListDeps) (GetAthleteListResult, error) {
	limit := query.Limit
	if limit <= 0 || limit > DefaultAthletePageSize {
		limit = DefaultAthletePageSize
	}
	offset := max(query.Offset, 0)

	athletes, err := deps.AthleteStore.List(ctx, athlete.ListFilter{Limit: limit, Offset: offset})
	if err != nil {
		return GetAthleteListResult{}, fmt.Errorf("list athletes: %w", err)
	}
	total, err := deps.AthleteStore.Count(ctx)
	if err != nil {
		return GetAthleteListResult{}, fmt.Errorf("count athletes: %w", err)
	}
	return GetAthleteListResult{Athletes: athletes, Total: total}, nil
}
