package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE diagnostic_log (
		run_id       TEXT NOT NULL,
		recording    TEXT,
		episode      INTEGER NOT NULL,
		sample_index INTEGER NOT NULL,
		kind         TEXT NOT NULL,
		detail       TEXT,
		created_at   TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-diagnostic-tests
func TestLogDiagnostic_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := DiagnosticEntry{
		RunID:     "run-1",
		Recording: "flight-042",
		Episode:   1,
		Index:     212,
		Kind:      "unrecognized_combination",
		Detail:    `combined="Spare"`,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogDiagnostic(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var kind string
	var index int
	db.QueryRow("SELECT kind, sample_index FROM diagnostic_log").Scan(&kind, &index)
	if kind != "unrecognized_combination" {
		t.Errorf("expected kind 'unrecognized_combination', got %q", kind)
	}
	if index != 212 {
		t.Errorf("expected index 212, got %d", index)
	}
}

func TestLogDiagnostic_EmptyOptionalFieldsAreNull(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogDiagnostic(db, DiagnosticEntry{RunID: "run-2", Kind: "missing_required_fpm"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var recording, detail sql.NullString
	var createdAt string
	db.QueryRow("SELECT recording, detail, created_at FROM diagnostic_log").Scan(&recording, &detail, &createdAt)
	if recording.Valid || detail.Valid {
		t.Errorf("expected NULL recording and detail, got %v %v", recording, detail)
	}
	if createdAt == "" {
		t.Error("expected created_at to be filled in")
	}
}

func TestLogDiagnostic_MissingTable(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := LogDiagnostic(db, DiagnosticEntry{RunID: "x", Kind: "k"}); err == nil {
		t.Fatal("expected error when table is missing")
	}
}

// #endregion log-diagnostic-tests

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("warn", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logger.Core().Enabled(-1) { // debug
		t.Error("debug should be disabled at warn level")
	}
	if _, err := NewLogger("chatty", true); err == nil {
		t.Error("expected error for unknown level")
	}
}
