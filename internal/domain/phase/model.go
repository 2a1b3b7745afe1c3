package phase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Designated phase names. Scheduling treats these two entries specially.
const (
	FirstPhaseName     = "Fase 1"
	DischargePhaseName = "Alta"
)

// Physical-prep status tags carried in parentheses after each exercise.
const (
	StatusComplete    = "Completo"
	StatusProgression = "Progressão"
	StatusRestricted  = "Restrição"
	StatusNone        = ""
)

// NoTests marks a phase without specific tests.
const NoTests = "-"

// Domain errors
var (
	ErrEmptyName       = errors.New("phase name cannot be empty")
	ErrEmptyPeriod     = errors.New("phase approximate period cannot be empty")
	ErrInvalidPosition = errors.New("phase position must be positive")
	ErrInvalidStatus   = errors.New("physical prep status must be Completo, Progressão or Restrição")
	ErrInvalidSkill    = errors.New("rugby skill must be written as skill:level")
)

// dischargeMarkers introduce an open-ended period ("após 240 dias").
var dischargeMarkers = []string{"após", "apos", "after"}

// rangeSeparators split "X a Y dias" / "X to Y days".
var rangeSeparators = []string{" a ", " to "}

// ParseError reports an approximate-period string that does not carry a day count
// where one is expected.
type ParseError struct {
	Period string
	Reason string
}

// Error implements error.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse period %q: %s", e.Period, e.Reason)
}

// Definition is one row of the rehabilitation protocol table.
type Definition struct {
	ID                string
	Position          int
	Name              string
	ApproxPeriod      string
	AllowedActivities string
	SpecificTests     string
	Treatments        string
	PhysicalPrep      string
	RugbySkills       string
}

// Exercise is a physical-prep exercise with its status tag.
type Exercise struct {
	Name   string
	Status string
}

// SkillLevel is a rugby skill with its allowed intensity level.
type SkillLevel struct {
	Skill string
	Level int
}

// ParseDurationDays extracts the nominal day count of a phase period.
// PRE: none
// POST: Returns a positive day count or a *ParseError
// INVARIANT: never guesses a fallback duration
func ParseDurationDays(period string) (int, error) {
	text := strings.TrimSpace(period)
	if text == "" {
		return 0, &ParseError{Period: period, Reason: "empty period"}
	}

	tokens := strings.Fields(text)
	for i, tok := range tokens {
		if !isDischargeMarker(tok) {
			continue
		}
		if i+1 >= len(tokens) {
			return 0, &ParseError{Period: period, Reason: "no day count after " + tok}
		}
		return positiveInt(period, tokens[i+1])
	}

	// Upper bound of the range: first token after the first separator.
	tail := text
	for _, sep := range rangeSeparators {
		if idx := strings.Index(tail, sep); idx != -1 {
			tail = tail[idx+len(sep):]
			break
		}
	}
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return 0, &ParseError{Period: period, Reason: "no upper bound"}
	}
	return positiveInt(period, fields[0])
}

func isDischargeMarker(tok string) bool {
	lower := strings.ToLower(tok)
	for _, m := range dischargeMarkers {
		if lower == m {
			return true
		}
	}
	return false
}

func positiveInt(period, tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &ParseError{Period: period, Reason: fmt.Sprintf("%q is not an integer", tok)}
	}
	if n <= 0 {
		return 0, &ParseError{Period: period, Reason: "day count must be positive"}
	}
	return n, nil
}

// Validate checks if the Definition has valid data.
// PRE: Definition struct is populated
// POST: Returns nil if valid, error otherwise
// INVARIANT: ApproxPeriod must yield a day count
func (d *Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(d.ApproxPeriod) == "" {
		return ErrEmptyPeriod
	}
	if d.Position <= 0 {
		return ErrInvalidPosition
	}
	if _, err := ParseDurationDays(d.ApproxPeriod); err != nil {
		return err
	}
	for _, ex := range d.PhysicalPrepList() {
		if !isKnownStatus(ex.Status) {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, ex.Status)
		}
	}
	if _, err := d.RugbySkillList(); err != nil {
		return err
	}
	return nil
}

// DurationDays returns the parsed day count of the phase.
func (d *Definition) DurationDays() (int, error) {
	return ParseDurationDays(d.ApproxPeriod)
}

// IsFirst reports whether this is the immediate post-surgery phase.
func (d *Definition) IsFirst() bool {
	return d.Name == FirstPhaseName
}

// IsDischarge reports whether this is the open-ended discharge phase.
func (d *Definition) IsDischarge() bool {
	return d.Name == DischargePhaseName
}

// HasSpecificTests reports whether the phase lists any tests.
func (d *Definition) HasSpecificTests() bool {
	t := strings.TrimSpace(d.SpecificTests)
	return t != "" && t != NoTests
}

// TreatmentList splits the comma-separated treatments.
func (d *Definition) TreatmentList() []string {
	return splitList(d.Treatments)
}

// PhysicalPrepList parses "exercise (status)" pairs.
// An exercise without parentheses has StatusNone.
func (d *Definition) PhysicalPrepList() []Exercise {
	var out []Exercise
	for _, item := range splitList(d.PhysicalPrep) {
		ex := Exercise{Name: item}
		open := strings.LastIndex(item, "(")
		if open != -1 && strings.HasSuffix(item, ")") {
			ex.Name = strings.TrimSpace(item[:open])
			ex.Status = strings.TrimSpace(item[open+1 : len(item)-1])
		}
		out = append(out, ex)
	}
	return out
}

// RugbySkillList parses "skill:level" pairs.
// PRE: none
// POST: Returns skills in catalog order or ErrInvalidSkill
func (d *Definition) RugbySkillList() ([]SkillLevel, error) {
	var out []SkillLevel
	for _, item := range splitList(d.RugbySkills) {
		skill, level, ok := strings.Cut(item, ":")
		if !ok || strings.TrimSpace(skill) == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSkill, item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(level))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSkill, item)
		}
		out = append(out, SkillLevel{Skill: strings.TrimSpace(skill), Level: n})
	}
	return out, nil
}

// StatusCounts tallies physical-prep exercises by status tag.
func (d *Definition) StatusCounts() map[string]int {
	counts := map[string]int{
		StatusComplete:    0,
		StatusProgression: 0,
		StatusRestricted:  0,
	}
	for _, ex := range d.PhysicalPrepList() {
		if ex.Status != StatusNone {
			counts[ex.Status]++
		}
	}
	return counts
}

func isKnownStatus(s string) bool {
	switch s {
	case StatusComplete, StatusProgression, StatusRestricted, StatusNone:
		return true
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
