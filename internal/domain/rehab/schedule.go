package rehab

import (
	"fmt"
	"math"
	"time"

	"sagra/internal/domain/phase"
)

// Protocol constants, in days since surgery.
const (
	ProtocolDays        = 240
	DischargeAnchorDays = 240
	DischargeWindowDays = 30
)

// ContinuousLabel is shown instead of a day count for the discharge phase.
const ContinuousLabel = "Contínuo"

// ScheduledPhase is a catalog entry placed on the calendar for one athlete.
// It is derived on demand and never stored.
type ScheduledPhase struct {
	Phase        phase.Definition
	Start        time.Time
	End          time.Time
	DurationDays int
	Continuous   bool
}

// DurationLabel renders the duration the way the plan table shows it.
func (s ScheduledPhase) DurationLabel() string {
	if s.Continuous {
		return ContinuousLabel
	}
	return fmt.Sprintf("%d dias", s.DurationDays)
}

// Contains reports whether day falls inside [Start, End], both inclusive.
func (s ScheduledPhase) Contains(day time.Time) bool {
	d := CivilDate(day)
	return !d.Before(s.Start) && !d.After(s.End)
}

// CivilDate drops the time of day, keeping the calendar date as seen in t's location.
// The result is midnight UTC so day arithmetic never crosses a DST change.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ComputeSchedule places every catalog entry on the calendar, in catalog order.
// PRE: catalog is ordered by position
// POST: Returns one ScheduledPhase per entry, or the first period parse error
// INVARIANT: each regular phase starts the day after the previous one ends;
// discharge is pinned to surgery + DischargeAnchorDays and may overlap its predecessor
func ComputeSchedule(surgeryDate time.Time, catalog []phase.Definition) ([]ScheduledPhase, error) {
	surgery := CivilDate(surgeryDate)
	cursor := surgery

	schedule := make([]ScheduledPhase, 0, len(catalog))
	for _, def := range catalog {
		days, err := def.DurationDays()
		if err != nil {
			return nil, fmt.Errorf("phase %q: %w", def.Name, err)
		}

		sp := ScheduledPhase{Phase: def, DurationDays: days}
		switch {
		case def.IsFirst():
			// The surgery day itself counts, so the first phase spans days+1 dates.
			sp.Start = cursor
			sp.End = sp.Start.AddDate(0, 0, days)
		case def.IsDischarge():
			sp.Start = surgery.AddDate(0, 0, DischargeAnchorDays)
			sp.End = sp.Start.AddDate(0, 0, DischargeWindowDays)
			sp.Continuous = true
		default:
			sp.Start = cursor.AddDate(0, 0, 1)
			sp.End = sp.Start.AddDate(0, 0, days-1)
		}
		cursor = sp.End
		schedule = append(schedule, sp)
	}
	return schedule, nil
}

// LocateCurrent returns the first scheduled phase whose window contains today.
// PRE: schedule comes from ComputeSchedule
// POST: ok is false when today is outside every window
func LocateCurrent(today time.Time, schedule []ScheduledPhase) (ScheduledPhase, bool) {
	for _, sp := range schedule {
		if sp.Contains(today) {
			return sp, true
		}
	}
	return ScheduledPhase{}, false
}

// DaysSinceSurgery counts whole calendar days from surgery to today.
// Negative when today precedes the surgery.
func DaysSinceSurgery(surgeryDate, today time.Time) int {
	return int(CivilDate(today).Sub(CivilDate(surgeryDate)).Hours() / 24)
}

// CurrentWeek is the zero-based protocol week for today.
func CurrentWeek(surgeryDate, today time.Time) int {
	days := DaysSinceSurgery(surgeryDate, today)
	if days < 0 {
		return 0
	}
	return days / 7
}

// PercentComplete is the share of the protocol elapsed, clamped to [0, 100].
func PercentComplete(surgeryDate, today time.Time) float64 {
	pct := float64(DaysSinceSurgery(surgeryDate, today)) / ProtocolDays * 100
	return math.Min(100, math.Max(0, pct))
}

// DischargeForecast is the expected return-to-play date.
func DischargeForecast(surgeryDate time.Time) time.Time {
	return CivilDate(surgeryDate).AddDate(0, 0, DischargeAnchorDays)
}
