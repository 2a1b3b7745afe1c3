package storage

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"sagra/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE athlete (id TEXT PRIMARY KEY, name TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestTimedDB_RecordsEveryCall verifies each wrapped call lands in the collector.
func TestTimedDB_RecordsEveryCall(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO athlete (id, name) VALUES (?, ?)", "1", "Ana"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, name FROM athlete")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var name string
	if err := tdb.QueryRowContext(ctx, "SELECT name FROM athlete WHERE id = ?", "1").Scan(&name); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if name != "Ana" {
		t.Errorf("name = %q, want Ana", name)
	}
	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	tx.Rollback()

	if got := collector.TotalRecorded(); got != 4 {
		t.Errorf("TotalRecorded = %d, want 4", got)
	}
}

// TestTimedDB_ErrorPassthrough verifies SQL errors are returned unchanged and still timed.
func TestTimedDB_ErrorPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO missing VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL, got nil")
	}
	var v string
	if err := tdb.QueryRowContext(context.Background(), "SELECT name FROM athlete WHERE id = ?", "nope").Scan(&v); err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
	if got := collector.TotalRecorded(); got != 2 {
		t.Errorf("TotalRecorded = %d, want 2 (must record on error)", got)
	}
}

// TestTimedDB_NilCollector verifies TimedDB works without a collector.
func TestTimedDB_NilCollector(t *testing.T) {
	tdb := NewTimedDB(openTimedTestDB(t), nil, 10)
	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO athlete (id, name) VALUES ('1', 'Ana')"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
}

// TestTimedDB_Threshold verifies the default applies to non-positive thresholds.
func TestTimedDB_Threshold(t *testing.T) {
	db := openTimedTestDB(t)
	if got := NewTimedDB(db, nil, 0).threshold; got != DefaultSlowQueryMs {
		t.Errorf("threshold = %v, want %v", got, DefaultSlowQueryMs)
	}
	if got := NewTimedDB(db, nil, 250).threshold; got != 250 {
		t.Errorf("threshold = %v, want 250", got)
	}
	if NewTimedDB(db, nil, 0).RawDB() != db {
		t.Error("RawDB() should return the original *sql.DB")
	}
}

// TestStatementLabel tests grouping of statements for the perf dashboard.
func TestStatementLabel(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"SELECT id FROM athlete WHERE name = ?", "SELECT athlete"},
		{"select count(*) from progress", "SELECT progress"},
		{"INSERT INTO progress (id) VALUES (?) ON CONFLICT DO NOTHING", "INSERT progress"},
		{"INSERT OR IGNORE INTO outbox(id) VALUES (?)", "INSERT outbox"},
		{"UPDATE outbox SET status = ?", "UPDATE outbox"},
		{"DELETE FROM injury WHERE id = ?", "DELETE injury"},
		{"PRAGMA foreign_keys=ON", "PRAGMA"},
		{"SELECT 1", "SELECT"},
		{"   ", "?"},
	}
	for _, tt := range tests {
		if got := statementLabel(tt.query); got != tt.want {
			t.Errorf("statementLabel(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

// BenchmarkTimedDB_QueryRow measures per-call overhead of the timing wrapper.
func BenchmarkTimedDB_QueryRow(b *testing.B) {
	db, _ := sql.Open("sqlite", ":memory:")
	defer db.Close()
	db.SetMaxOpenConns(1)
	db.Exec("CREATE TABLE bench (id INTEGER PRIMARY KEY, val TEXT)")
	db.Exec("INSERT INTO bench VALUES (1, 'x')")
	tdb := NewTimedDB(db, perf.NewCollector(perf.DefaultRingSize), 0)

	ctx := context.Background()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var v string
		tdb.QueryRowContext(ctx, "SELECT val FROM bench WHERE id = 1").Scan(&v)
	}
}
