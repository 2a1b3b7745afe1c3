package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sagra/internal/domain/athlete"
	"sagra/internal/domain/outbox"
	"sagra/internal/domain/phase"
	"sagra/internal/domain/progress"
	"sagra/internal/domain/rehab"

	"github.com/google/uuid"
)

// Namespaces for IDs derived from a progress key, so repeated follow-ups
// for the same athlete, phase and start date map to the same rows.
var (
	progressNamespace     = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sagra.progress"))
	notificationNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("sagra.phase_notification"))
)

// AthleteUpserter stores an athlete keyed by name.
type AthleteUpserter interface {
	UpsertByName(ctx context.Context, a athlete.Athlete) (string, error)
}

// PhaseCatalog provides the protocol in catalog order.
type PhaseCatalog interface {
	List(ctx context.Context) ([]phase.Definition, error)
}

// ProgressStore upserts progress on (athlete, phase, start date).
type ProgressStore interface {
	Upsert(ctx context.Context, r progress.Record) error
}

// OutboxEnqueuer inserts an outbox entry unless its ID already exists.
type OutboxEnqueuer interface {
	Enqueue(ctx context.Context, e outbox.Entry) (bool, error)
}

// StartFollowUpInput carries input for the orchestrator.
type StartFollowUpInput struct {
	AthleteName string
	SurgeryDate time.Time
}

// StartFollowUpDeps holds dependencies for StartFollowUp.
// OutboxStore and NotifyEmail are optional; notifications are skipped when either is unset.
type StartFollowUpDeps struct {
	AthleteStore  AthleteUpserter
	PhaseStore    PhaseCatalog
	ProgressStore ProgressStore
	OutboxStore   OutboxEnqueuer
	NotifyEmail   string
	Now           func() time.Time // wall clock in the clinic's time zone
	GenerateID    func() string
}

// StartFollowUpResult is what the caller shows after starting a follow-up.
type StartFollowUpResult struct {
	AthleteID          string
	Schedule           []rehab.ScheduledPhase
	Current            rehab.ScheduledPhase
	InPhase            bool             // false when today is outside every window
	Progress           *progress.Record // nil when InPhase is false
	NotificationQueued bool
}

// ExecuteStartFollowUp registers a surgery date for an athlete and records
// the phase they are in today.
// PRE: catalog is seeded; EarliestSurgeryDate <= SurgeryDate <= today
// POST: athlete row carries SurgeryDate; when a phase is current its progress
// record exists with status Em andamento and, if configured, one notification is queued
// INVARIANT: calling again with the same input changes nothing
func ExecuteStartFollowUp(ctx context.Context, input StartFollowUpInput, deps StartFollowUpDeps) (StartFollowUpResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	genID := deps.GenerateID
	if genID == nil {
		genID = func() string { return uuid.New().String() }
	}
	today := rehab.CivilDate(now())

	name := strings.TrimSpace(input.AthleteName)
	if name == "" {
		return StartFollowUpResult{}, athlete.ErrEmptyName
	}
	if err := athlete.ValidateSurgeryDate(input.SurgeryDate, today); err != nil {
		return StartFollowUpResult{}, err
	}
	surgery := rehab.CivilDate(input.SurgeryDate)

	catalog, err := deps.PhaseStore.List(ctx)
	if err != nil {
		return StartFollowUpResult{}, fmt.Errorf("load phase catalog: %w", err)
	}
	// Computed before any write so a bad catalog leaves storage untouched.
	schedule, err := rehab.ComputeSchedule(surgery, catalog)
	if err != nil {
		return StartFollowUpResult{}, err
	}

	a := athlete.Athlete{ID: genID(), Name: name, SurgeryDate: surgery}
	if err := a.Validate(); err != nil {
		return StartFollowUpResult{}, err
	}
	athleteID, err := deps.AthleteStore.UpsertByName(ctx, a)
	if err != nil {
		return StartFollowUpResult{}, fmt.Errorf("upsert athlete: %w", err)
	}

	result := StartFollowUpResult{AthleteID: athleteID, Schedule: schedule}
	current, ok := rehab.LocateCurrent(today, schedule)
	if !ok {
		slog.Info("follow_up_started", "athlete_id", athleteID, "surgery_date", surgery.Format(time.DateOnly), "current_phase", "")
		return result, nil
	}
	result.Current = current
	result.InPhase = true

	rec := progress.Record{
		AthleteID: athleteID,
		Phase:     current.Phase.Name,
		StartDate: current.Start,
		EndDate:   current.End,
		Status:    progress.StatusInProgress,
	}
	rec.ID = uuid.NewSHA1(progressNamespace, []byte(rec.Key())).String()
	if err := rec.Validate(); err != nil {
		return StartFollowUpResult{}, err
	}
	if err := deps.ProgressStore.Upsert(ctx, rec); err != nil {
		return StartFollowUpResult{}, fmt.Errorf("upsert progress: %w", err)
	}
	result.Progress = &rec

	if deps.OutboxStore != nil && deps.NotifyEmail != "" {
		queued, err := enqueuePhaseNotification(ctx, deps, name, surgery, current, rec, now())
		if err != nil {
			return StartFollowUpResult{}, err
		}
		result.NotificationQueued = queued
	}

	slog.Info("follow_up_started",
		"athlete_id", athleteID,
		"surgery_date", surgery.Format(time.DateOnly),
		"current_phase", current.Phase.Name,
		"notification_queued", result.NotificationQueued,
	)
	return result, nil
}

func enqueuePhaseNotification(ctx context.Context, deps StartFollowUpDeps, athleteName string, surgery time.Time, current rehab.ScheduledPhase, rec progress.Record, now time.Time) (bool, error) {
	payload, err := json.Marshal(PhaseNotificationPayload{
		To:                []string{deps.NotifyEmail},
		AthleteName:       athleteName,
		Phase:             current.Phase.Name,
		StartDate:         current.Start.Format(time.DateOnly),
		EndDate:           current.End.Format(time.DateOnly),
		SurgeryDate:       surgery.Format(time.DateOnly),
		DischargeForecast: rehab.DischargeForecast(surgery).Format(time.DateOnly),
		AllowedActivities: current.Phase.AllowedActivities,
		Treatments:        current.Phase.TreatmentList(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal notification: %w", err)
	}

	entry := outbox.Entry{
		ID:         uuid.NewSHA1(notificationNamespace, []byte(rec.Key())).String(),
		ActionType: outbox.ActionTypePhaseNotification,
		Payload:    string(payload),
		CreatedAt:  now,
	}
	if err := entry.Validate(); err != nil {
		return false, err
	}
	queued, err := deps.OutboxStore.Enqueue(ctx, entry)
	if err != nil {
		return false, fmt.Errorf("enqueue notification: %w", err)
	}
	return queued, nil
}
