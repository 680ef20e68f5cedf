package logging

import (
	"database/sql"
	"fmt"
	"time"
)

// #region log-diagnostic

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// LogDiagnostic writes a simulator diagnostic to the diagnostic_log table. Pass a
// *sql.Tx to make the row part of a larger write.
func LogDiagnostic(db Execer, entry DiagnosticEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO diagnostic_log (run_id, recording, episode, sample_index, kind, detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		nullIfEmpty(entry.Recording),
		entry.Episode,
		entry.Index,
		entry.Kind,
		nullIfEmpty(entry.Detail),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log diagnostic: %w", err)
	}
	return nil
}

// #endregion log-diagnostic

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
