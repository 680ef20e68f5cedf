package logging

import "time"

// #region diagnostic-entry
// DiagnosticEntry is a single row in the diagnostic_log table.
type DiagnosticEntry struct {
	RunID     string
	Recording string
	Episode   int
	Index     int
	Kind      string // "missing_required_fpm" | "unrecognized_combination" | "episode_out_of_bounds"
	Detail    string
	CreatedAt time.Time
}

// #endregion diagnostic-entry
