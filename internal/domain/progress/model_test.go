package progress_test

import (
	"errors"
	"testing"
	"time"

	"sagra/internal/domain/progress"
)

// TestRecordValidation tests validation of Record.
func TestRecordValidation(t *testing.T) {
	start := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	valid := progress.Record{
		AthleteID: "ath-1",
		Phase:     "Fase 2",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 27),
		Status:    progress.StatusInProgress,
	}

	tests := []struct {
		name    string
		mutate  func(r *progress.Record)
		wantErr error
	}{
		{name: "valid", mutate: func(r *progress.Record) {}},
		{name: "open ended", mutate: func(r *progress.Record) { r.EndDate = time.Time{} }},
		{name: "same day", mutate: func(r *progress.Record) { r.EndDate = start }},
		{name: "missing athlete", mutate: func(r *progress.Record) { r.AthleteID = "" }, wantErr: progress.ErrMissingAthlete},
		{name: "missing phase", mutate: func(r *progress.Record) { r.Phase = "" }, wantErr: progress.ErrMissingPhase},
		{name: "missing start", mutate: func(r *progress.Record) { r.StartDate = time.Time{} }, wantErr: progress.ErrMissingStart},
		{name: "end before start", mutate: func(r *progress.Record) { r.EndDate = start.AddDate(0, 0, -1) }, wantErr: progress.ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := valid
			tt.mutate(&rec)
			if err := rec.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestRecordKey tests the natural key format.
func TestRecordKey(t *testing.T) {
	rec := progress.Record{AthleteID: "ath-1", Phase: "Fase 1", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	if got, want := rec.Key(), "ath-1|Fase 1|2024-01-01"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if !(&progress.Record{Status: progress.StatusInProgress}).IsActive() {
		t.Error("in-progress record should be active")
	}
}
