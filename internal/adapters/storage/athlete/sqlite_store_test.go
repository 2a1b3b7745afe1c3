package athlete

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"sagra/internal/adapters/storage"
	domain "sagra/internal/domain/athlete"
)

// newTestStore opens a migrated in-memory database.
func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, ":memory:"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLiteStore(db)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestSaveAndGet verifies a full round trip including empty dates.
func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	a := domain.Athlete{ID: "a1", Name: "Rafael Souza", BirthDate: date(1998, 4, 2), Position: domain.PositionFlanker, Club: "Jacareí"}
	if err := store.Save(ctx, a); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != a.Name || got.Position != a.Position || got.Club != a.Club {
		t.Errorf("got %+v, want %+v", got, a)
	}
	if !got.BirthDate.Equal(a.BirthDate) {
		t.Errorf("BirthDate = %v, want %v", got.BirthDate, a.BirthDate)
	}
	if got.HasSurgery() {
		t.Errorf("SurgeryDate = %v, want zero", got.SurgeryDate)
	}

	byName, err := store.GetByName(ctx, "Rafael Souza")
	if err != nil || byName.ID != "a1" {
		t.Errorf("GetByName = %+v, %v", byName, err)
	}
}

// TestGetByID_NotFound verifies the domain sentinel is wrapped.
func TestGetByID_NotFound(t *testing.T) {
	_, err := newTestStore(t).GetByID(context.Background(), "missing")
	if !errors.Is(err, domain.ErrAthleteNotFound) {
		t.Errorf("error = %v, want ErrAthleteNotFound", err)
	}
}

// TestUpsertByName verifies repeat follow-ups keep one row and only move the surgery date.
func TestUpsertByName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id1, err := store.UpsertByName(ctx, domain.Athlete{ID: "first", Name: "Lucas Lima", Club: "Band", SurgeryDate: date(2024, 1, 1)})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if id1 != "first" {
		t.Errorf("id = %q, want first", id1)
	}

	id2, err := store.UpsertByName(ctx, domain.Athlete{ID: "second", Name: "Lucas Lima", SurgeryDate: date(2024, 2, 1)})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id2 != "first" {
		t.Errorf("id = %q, want existing id first", id2)
	}

	got, err := store.GetByID(ctx, "first")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.SurgeryDate.Equal(date(2024, 2, 1)) {
		t.Errorf("SurgeryDate = %v, want 2024-02-01", got.SurgeryDate)
	}
	if got.Club != "Band" {
		t.Errorf("Club = %q, want profile field untouched", got.Club)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

// TestListRecentSurgeries verifies ordering, limit and exclusion of athletes without surgery.
func TestListRecentSurgeries(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seed := []domain.Athlete{
		{ID: "a", Name: "A", SurgeryDate: date(2024, 1, 10)},
		{ID: "b", Name: "B", SurgeryDate: date(2024, 3, 5)},
		{ID: "c", Name: "C"},
		{ID: "d", Name: "D", SurgeryDate: date(2023, 7, 1)},
	}
	for _, a := range seed {
		if err := store.Save(ctx, a); err != nil {
			t.Fatalf("Save %s: %v", a.ID, err)
		}
	}

	got, err := store.ListRecentSurgeries(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentSurgeries: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Errorf("got %v, want [b a]", ids(got))
	}

	all, err := store.List(ctx, ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 4 || all[0].Name != "A" {
		t.Errorf("List = %v, want 4 athletes ordered by name", ids(all))
	}
}

func ids(list []domain.Athlete) []string {
	var out []string
	for _, a := range list {
		out = append(out, a.ID)
	}
	return out
}

// TestSave_DuplicateName verifies the unique name surfaces as a domain error.
func TestSave_DuplicateName(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Save(ctx, domain.Athlete{ID: "a1", Name: "Ana"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	err := store.Save(ctx, domain.Athlete{ID: "a2", Name: "Ana"})
	if !errors.Is(err, domain.ErrDuplicateName) {
		t.Errorf("error = %v, want ErrDuplicateName", err)
	}
}
