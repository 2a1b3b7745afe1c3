package progress

import (
	"errors"
	"time"
)

// StatusInProgress is the status the scheduler writes and restores on conflict.
const StatusInProgress = "Em andamento"

// Domain errors
var (
	ErrMissingAthlete = errors.New("progress record must reference an athlete")
	ErrMissingPhase   = errors.New("progress record must name a phase")
	ErrMissingStart   = errors.New("progress record must have a start date")
	ErrEndBeforeStart = errors.New("progress end date cannot precede start date")
)

// Record tracks an athlete's stay in one scheduled phase.
// (AthleteID, Phase, StartDate) is the identity; EndDate and Status are the tracked fields.
type Record struct {
	ID        string
	AthleteID string
	Phase     string
	StartDate time.Time
	EndDate   time.Time
	Status    string
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: the composite key fields are all set
func (r *Record) Validate() error {
	if r.AthleteID == "" {
		return ErrMissingAthlete
	}
	if r.Phase == "" {
		return ErrMissingPhase
	}
	if r.StartDate.IsZero() {
		return ErrMissingStart
	}
	if !r.EndDate.IsZero() && r.EndDate.Before(r.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

// IsActive reports whether the athlete is still in this phase.
func (r *Record) IsActive() bool {
	return r.Status == StatusInProgress
}

// Key is the natural identity of a progress record, used to derive stable IDs.
// PRE: AthleteID, Phase and StartDate are set
// POST: Returns "athlete|phase|YYYY-MM-DD"
func (r *Record) Key() string {
	return r.AthleteID + "|" + r.Phase + "|" + r.StartDate.Format(time.DateOnly)
}
