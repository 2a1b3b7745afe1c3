package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"

	"sagra/internal/adapters/export"
	outboxStore "sagra/internal/adapters/storage/outbox"
	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"
	"sagra/internal/domain/outbox"
	"sagra/internal/domain/rehab"
)

// errInvalidDate is reported for dates that are neither YYYY-MM-DD nor dd/mm/yyyy.
var errInvalidDate = errors.New("dates must be YYYY-MM-DD or dd/mm/yyyy")

// badRequestErrors are validation failures whose message is safe to return.
var badRequestErrors = []error{
	errInvalidDate,
	athlete.ErrEmptyName,
	athlete.ErrNameTooLong,
	athlete.ErrClubTooLong,
	athlete.ErrInvalidPosition,
	athlete.ErrBirthAfterSurgery,
	athlete.ErrSurgeryInFuture,
	athlete.ErrSurgeryTooEarly,
	injury.ErrMissingAthlete,
	injury.ErrInvalidType,
	injury.ErrMissingInjuryDate,
	injury.ErrSurgeryBeforeInjury,
	injury.ErrNotesTooLong,
}

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError maps domain errors to a status code; anything unknown is a 500.
func writeError(w http.ResponseWriter, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			http.Error(w, target.Error(), http.StatusBadRequest)
			return
		}
	}
	switch {
	case errors.Is(err, athlete.ErrAthleteNotFound):
		http.Error(w, athlete.ErrAthleteNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, outboxStore.ErrNotFound):
		http.Error(w, outboxStore.ErrNotFound.Error(), http.StatusNotFound)
	case errors.Is(err, athlete.ErrDuplicateName):
		http.Error(w, athlete.ErrDuplicateName.Error(), http.StatusConflict)
	case errors.Is(err, outbox.ErrTerminal):
		http.Error(w, outbox.ErrTerminal.Error(), http.StatusConflict)
	default:
		internalError(w, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isFormPost(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response_failed", "error", err.Error())
	}
}

// parseDate accepts ISO dates and the dd/mm/yyyy form staff type.
// An empty string is the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.DateOnly, export.DisplayDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", s, errInvalidDate)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// phaseJSON is one row of a schedule response.
type phaseJSON struct {
	Name              string   `json:"name"`
	Start             string   `json:"start"`
	End               string   `json:"end"`
	Duration          string   `json:"duration"`
	DurationDays      int      `json:"duration_days"`
	Continuous        bool     `json:"continuous"`
	Current           bool     `json:"current"`
	AllowedActivities string   `json:"allowed_activities"`
	SpecificTests     string   `json:"specific_tests"`
	Treatments        []string `json:"treatments"`
}

// scheduleResponse is a computed schedule with today's position in it.
type scheduleResponse struct {
	SurgeryDate       string      `json:"surgery_date"`
	Today             string      `json:"today"`
	DischargeForecast string      `json:"discharge_forecast"`
	DaysSinceSurgery  int         `json:"days_since_surgery"`
	CurrentWeek       int         `json:"current_week"`
	PercentComplete   float64     `json:"percent_complete"`
	CurrentPhase      string      `json:"current_phase"`
	Phases            []phaseJSON `json:"phases"`
}

func newScheduleResponse(surgery, today time.Time, schedule []rehab.ScheduledPhase) scheduleResponse {
	resp := scheduleResponse{
		SurgeryDate:       formatDate(surgery),
		Today:             formatDate(today),
		DischargeForecast: formatDate(rehab.DischargeForecast(surgery)),
		DaysSinceSurgery:  rehab.DaysSinceSurgery(surgery, today),
		CurrentWeek:       rehab.CurrentWeek(surgery, today),
		PercentComplete:   rehab.PercentComplete(surgery, today),
		Phases:            make([]phaseJSON, 0, len(schedule)),
	}
	current, inPhase := rehab.LocateCurrent(today, schedule)
	if inPhase {
		resp.CurrentPhase = current.Phase.Name
	}
	for _, sp := range schedule {
		resp.Phases = append(resp.Phases, phaseJSON{
			Name:              sp.Phase.Name,
			Start:             formatDate(sp.Start),
			End:               formatDate(sp.End),
			Duration:          sp.DurationLabel(),
			DurationDays:      sp.DurationDays,
			Continuous:        sp.Continuous,
			Current:           inPhase && sp.Phase.Name == current.Phase.Name,
			AllowedActivities: sp.Phase.AllowedActivities,
			SpecificTests:     sp.Phase.SpecificTests,
			Treatments:        sp.Phase.TreatmentList(),
		})
	}
	return resp
}

// handleSchedule handles GET /api/schedule?surgery_date=&today=
// It computes the plan without touching any athlete.
func handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	surgery, err := parseDate(q.Get("surgery_date"))
	if err != nil {
		writeError(w, err)
		return
	}
	if surgery.IsZero() {
		http.Error(w, "surgery_date is required", http.StatusBadRequest)
		return
	}
	today, err := parseDate(q.Get("today"))
	if err != nil {
		writeError(w, err)
		return
	}
	if today.IsZero() {
		today = rehab.CivilDate(clinicNow())
	}

	catalog, err := stores.PhaseStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	schedule, err := rehab.ComputeSchedule(surgery, catalog)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newScheduleResponse(surgery, today, schedule))
}

// handleCSRFToken handles GET /csrf. Form clients read the token from the
// response header and echo it in the gorilla.csrf.Token field.
func handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("X-CSRF-Token", csrf.Token(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleHealth handles GET /healthz
func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
