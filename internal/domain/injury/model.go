package injury

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNotesLength = 4000
)

// Injury type constants
const (
	TypeACL            = "LCA"
	TypePCL            = "LCP"
	TypeMeniscus       = "Menisco"
	TypeCollateral     = "Ligamento Colateral"
	TypePatellarTendon = "Tendinite Patelar"
)

// Types lists the injury types offered on the intake form.
var Types = []string{TypeACL, TypePCL, TypeMeniscus, TypeCollateral, TypePatellarTendon}

// Domain errors
var (
	ErrMissingAthlete      = errors.New("injury must be associated with an athlete")
	ErrInvalidType         = errors.New("injury type is not recognised")
	ErrMissingInjuryDate   = errors.New("injury date must be set")
	ErrSurgeryBeforeInjury = errors.New("surgery date cannot precede the injury")
	ErrNotesTooLong        = errors.New("injury notes cannot exceed 4000 characters")
)

// Injury is a recorded knee injury, optionally followed by surgery.
// Notes are markdown.
type Injury struct {
	ID          string
	AthleteID   string
	Type        string
	InjuryDate  time.Time
	SurgeryDate time.Time // zero when not operated
	Notes       string
}

// Validate checks if the Injury has valid data.
// PRE: Injury struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: AthleteID and Type must not be empty
func (i *Injury) Validate() error {
	if i.AthleteID == "" {
		return ErrMissingAthlete
	}
	if !IsValidType(i.Type) {
		return ErrInvalidType
	}
	if i.InjuryDate.IsZero() {
		return ErrMissingInjuryDate
	}
	if i.IsOperated() && i.SurgeryDate.Before(i.InjuryDate) {
		return ErrSurgeryBeforeInjury
	}
	if len(i.Notes) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// IsOperated reports whether the injury was treated surgically.
func (i *Injury) IsOperated() bool {
	return !i.SurgeryDate.IsZero()
}

// IsReconstruction reports whether this is the ACL reconstruction the protocol targets.
func (i *Injury) IsReconstruction() bool {
	return i.Type == TypeACL && i.IsOperated()
}

// IsValidType reports whether t is a known injury type.
func IsValidType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}
