package athlete

import (
	"errors"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxClubLength = 100
)

// Field positions on a rugby union team.
const (
	PositionProp       = "Pilar"
	PositionHooker     = "Hooker"
	PositionLock       = "Segunda Linha"
	PositionFlanker    = "Terceira Linha"
	PositionScrumHalf  = "Scrum-half"
	PositionFlyHalf    = "Fly-half"
	PositionCentre     = "Centro"
	PositionWing       = "Ponta"
	PositionFullback   = "Fullback"
	PositionUnassigned = ""
)

// Positions lists the selectable positions in squad order.
var Positions = []string{
	PositionProp, PositionHooker, PositionLock, PositionFlanker, PositionScrumHalf,
	PositionFlyHalf, PositionCentre, PositionWing, PositionFullback,
}

// EarliestSurgeryDate is the first surgery date the clinic accepts for follow-up.
var EarliestSurgeryDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// Domain errors
var (
	ErrEmptyName         = errors.New("athlete name cannot be empty")
	ErrNameTooLong       = errors.New("athlete name cannot exceed 100 characters")
	ErrClubTooLong       = errors.New("club cannot exceed 100 characters")
	ErrInvalidPosition   = errors.New("position is not a rugby position")
	ErrBirthAfterSurgery = errors.New("birth date must precede surgery date")
	ErrSurgeryInFuture   = errors.New("surgery date cannot be in the future")
	ErrSurgeryTooEarly   = errors.New("surgery date cannot be before 2023-01-01")
	ErrAthleteNotFound   = errors.New("athlete not found")
	ErrDuplicateName     = errors.New("an athlete with this name already exists")
)

// Athlete holds state for the concept.
type Athlete struct {
	ID          string
	Name        string
	BirthDate   time.Time // zero when unknown
	Position    string
	Club        string
	SurgeryDate time.Time // zero until a follow-up starts
}

// Validate checks if the Athlete has valid data.
// PRE: Athlete struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty; names are unique (enforced by store)
func (a *Athlete) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if len(a.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(a.Club) > MaxClubLength {
		return ErrClubTooLong
	}
	if !IsValidPosition(a.Position) {
		return ErrInvalidPosition
	}
	if !a.BirthDate.IsZero() && a.HasSurgery() && !a.BirthDate.Before(a.SurgeryDate) {
		return ErrBirthAfterSurgery
	}
	return nil
}

// HasSurgery reports whether a surgery date is on record.
func (a *Athlete) HasSurgery() bool {
	return !a.SurgeryDate.IsZero()
}

// IsValidPosition reports whether p is a known position or unassigned.
func IsValidPosition(p string) bool {
	if p == PositionUnassigned {
		return true
	}
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// ValidateSurgeryDate enforces the follow-up form bounds.
// PRE: none
// POST: Returns nil when EarliestSurgeryDate <= surgery <= today (calendar days)
func ValidateSurgeryDate(surgery, today time.Time) error {
	s := dateOnly(surgery)
	if s.After(dateOnly(today)) {
		return ErrSurgeryInFuture
	}
	if s.Before(EarliestSurgeryDate) {
		return ErrSurgeryTooEarly
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
