package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"sagra/internal/domain/athlete"
	"sagra/internal/domain/injury"
	"sagra/internal/domain/outbox"
	"sagra/internal/domain/phase"
	"sagra/internal/domain/progress"
)

var clinicTime = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func clinicNow() time.Time { return clinicTime }

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mockAthleteStore keeps athletes in memory.
type mockAthleteStore struct {
	byID    map[string]athlete.Athlete
	upserts int
	err     error
}

func newMockAthleteStore() *mockAthleteStore {
	return &mockAthleteStore{byID: make(map[string]athlete.Athlete)}
}

func (m *mockAthleteStore) GetByID(_ context.Context, id string) (athlete.Athlete, error) {
	a, ok := m.byID[id]
	if !ok {
		return athlete.Athlete{}, fmt.Errorf("athlete %s: %w", id, athlete.ErrAthleteNotFound)
	}
	return a, nil
}

func (m *mockAthleteStore) GetByName(_ context.Context, name string) (athlete.Athlete, error) {
	if m.err != nil {
		return athlete.Athlete{}, m.err
	}
	for _, a := range m.byID {
		if a.Name == name {
			return a, nil
		}
	}
	return athlete.Athlete{}, fmt.Errorf("athlete %q: %w", name, athlete.ErrAthleteNotFound)
}

func (m *mockAthleteStore) Save(_ context.Context, a athlete.Athlete) error {
	if m.err != nil {
		return m.err
	}
	m.byID[a.ID] = a
	return nil
}

func (m *mockAthleteStore) UpsertByName(_ context.Context, a athlete.Athlete) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.upserts++
	for id, existing := range m.byID {
		if existing.Name == a.Name {
			existing.SurgeryDate = a.SurgeryDate
			m.byID[id] = existing
			return id, nil
		}
	}
	m.byID[a.ID] = a
	return a.ID, nil
}

// mockPhaseStore serves a fixed catalog.
type mockPhaseStore struct {
	defs []phase.Definition
	err  error
}

func (m *mockPhaseStore) List(_ context.Context) ([]phase.Definition, error) {
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.defs), nil
}

func (m *mockPhaseStore) Save(_ context.Context, d phase.Definition) error {
	m.defs = append(m.defs, d)
	return nil
}

func (m *mockPhaseStore) Count(_ context.Context) (int, error) {
	return len(m.defs), m.err
}

// mockProgressStore mimics the composite-key upsert.
type mockProgressStore struct {
	mu      sync.Mutex
	records map[string]progress.Record
	calls   int
	err     error
}

func newMockProgressStore() *mockProgressStore {
	return &mockProgressStore{records: make(map[string]progress.Record)}
}

func (m *mockProgressStore) Upsert(_ context.Context, r progress.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	if existing, ok := m.records[r.Key()]; ok {
		r.ID = existing.ID
	}
	r.Status = progress.StatusInProgress
	m.records[r.Key()] = r
	return nil
}

// mockOutboxStore keeps entries in memory.
type mockOutboxStore struct {
	entries map[string]outbox.Entry
	saves   int
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]outbox.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return outbox.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	m.saves++
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) Enqueue(_ context.Context, e outbox.Entry) (bool, error) {
	if _, ok := m.entries[e.ID]; ok {
		return false, nil
	}
	m.entries[e.ID] = e
	return true, nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outbox.Entry, error) {
	var out []outbox.Entry
	for _, e := range m.entries {
		if e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b outbox.Entry) int { return a.CreatedAt.Compare(b.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mockInjuryStore keeps injuries in memory.
type mockInjuryStore struct {
	injuries map[string]injury.Injury
}

func (m *mockInjuryStore) Save(_ context.Context, i injury.Injury) error {
	if m.injuries == nil {
		m.injuries = make(map[string]injury.Injury)
	}
	m.injuries[i.ID] = i
	return nil
}

// fakeExecutor returns a canned result.
type fakeExecutor struct {
	err   error
	calls int
}

func (f *fakeExecutor) Execute(_ context.Context, payload string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("msg-%d", f.calls), nil
}
