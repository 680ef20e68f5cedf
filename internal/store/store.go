package store

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/logging"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	recording     TEXT NOT NULL,
	frequency     REAL NOT NULL,
	config_json   TEXT,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS episodes (
	run_id        TEXT NOT NULL,
	ordinal       INTEGER NOT NULL,
	start_index   INTEGER NOT NULL,
	stop_index    INTEGER NOT NULL,
	start_edge    REAL NOT NULL,
	stop_edge     REAL NOT NULL,
	severity      REAL,
	PRIMARY KEY (run_id, ordinal),
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS kpvs (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	sample_index  REAL NOT NULL,
	value         REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS instants (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	name          TEXT NOT NULL,
	sample_index  REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS trajectories (
	run_id        TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	frequency     REAL NOT NULL,
	offset_s      REAL NOT NULL,
	samples       BLOB NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS diagnostic_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	recording     TEXT,
	episode       INTEGER NOT NULL,
	sample_index  INTEGER NOT NULL,
	kind          TEXT NOT NULL,
	detail        TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store persists analysis reports in SQLite.
type Store struct {
	db *sql.DB
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region save-report
// SaveReport stores a report under a new run ID. cfg is recorded as JSON for
// provenance and may be nil.
func (s *Store) SaveReport(rep analysis.Report, cfg any) (string, error) {
	runID := uuid.New().String()
	now := time.Now().UTC()

	var cfgPtr interface{}
	if cfg != nil {
		raw, err := json.Marshal(cfg)
		if err != nil {
			return "", fmt.Errorf("marshal config: %w", err)
		}
		cfgPtr = string(raw)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, recording, frequency, config_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		runID, rep.Recording, rep.Frequency, cfgPtr, now.Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	// 1. episodes, scored where a severity exists
	severity := make(map[int]float64, len(rep.Severities))
	for _, sev := range rep.Severities {
		severity[sev.Episode] = sev.Value
	}
	for n, ep := range rep.Episodes {
		var sevPtr interface{}
		if v, ok := severity[n]; ok {
			sevPtr = v
		}
		_, err = tx.Exec(
			`INSERT INTO episodes (run_id, ordinal, start_index, stop_index, start_edge, stop_edge, severity)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, n, ep.Start, ep.Stop, ep.StartEdge, ep.StopEdge, sevPtr,
		)
		if err != nil {
			return "", fmt.Errorf("insert episode %d: %w", n, err)
		}
	}

	// 2. point records
	for _, k := range rep.KPVs {
		if _, err := tx.Exec(`INSERT INTO kpvs (run_id, name, sample_index, value) VALUES (?, ?, ?, ?)`,
			runID, k.Name, k.Index, k.Value); err != nil {
			return "", fmt.Errorf("insert kpv: %w", err)
		}
	}
	for _, in := range rep.Instants {
		if _, err := tx.Exec(`INSERT INTO instants (run_id, name, sample_index) VALUES (?, ?, ?)`,
			runID, in.Name, in.Index); err != nil {
			return "", fmt.Errorf("insert instant: %w", err)
		}
	}

	// 3. trajectory
	if rep.Trajectory != nil {
		_, err = tx.Exec(
			`INSERT INTO trajectories (run_id, name, frequency, offset_s, samples) VALUES (?, ?, ?, ?, ?)`,
			runID, rep.Trajectory.Name, rep.Trajectory.Frequency, rep.Trajectory.Offset, encodeSamples(*rep.Trajectory),
		)
		if err != nil {
			return "", fmt.Errorf("insert trajectory: %w", err)
		}
	}

	// 4. diagnostics go through the diagnostic log, in the same transaction
	for _, d := range rep.Diagnostics {
		err := logging.LogDiagnostic(tx, logging.DiagnosticEntry{
			RunID:     runID,
			Recording: rep.Recording,
			Episode:   d.Episode,
			Index:     d.Index,
			Kind:      string(d.Kind),
			Detail:    d.Detail,
			CreatedAt: now,
		})
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return runID, nil
}

// #endregion save-report

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	rows, err := s.db.Query(
		`SELECT r.run_id, r.recording, r.frequency, r.config_json, r.created_at,
		        (SELECT COUNT(*) FROM episodes e WHERE e.run_id = r.run_id),
		        (SELECT COUNT(*) FROM diagnostic_log d WHERE d.run_id = r.run_id)
		 FROM runs r ORDER BY r.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion list-runs

// #region get-run
// GetRun retrieves a stored run with its episodes, KPVs, instants and trajectory.
func (s *Store) GetRun(runID string) (RunDetail, error) {
	row := s.db.QueryRow(
		`SELECT r.run_id, r.recording, r.frequency, r.config_json, r.created_at,
		        (SELECT COUNT(*) FROM episodes e WHERE e.run_id = r.run_id),
		        (SELECT COUNT(*) FROM diagnostic_log d WHERE d.run_id = r.run_id)
		 FROM runs r WHERE r.run_id = ?`, runID,
	)
	rec, err := scanRun(row)
	if err != nil {
		return RunDetail{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	detail := RunDetail{RunRecord: rec}

	if detail.Episodes, err = s.episodes(runID); err != nil {
		return RunDetail{}, err
	}
	if detail.KPVs, err = s.kpvs(runID); err != nil {
		return RunDetail{}, err
	}
	if detail.Instants, err = s.instants(runID); err != nil {
		return RunDetail{}, err
	}
	if detail.Trajectory, err = s.trajectory(runID); err != nil {
		return RunDetail{}, err
	}
	return detail, nil
}

func (s *Store) episodes(runID string) ([]EpisodeRecord, error) {
	rows, err := s.db.Query(
		`SELECT ordinal, start_index, stop_index, start_edge, stop_edge, severity
		 FROM episodes WHERE run_id = ? ORDER BY ordinal`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list episodes: %w", err)
	}
	defer rows.Close()

	var out []EpisodeRecord
	for rows.Next() {
		var ep EpisodeRecord
		var sev sql.NullFloat64
		iv := &ep.Interval
		if err := rows.Scan(&ep.Ordinal, &iv.Start, &iv.Stop, &iv.StartEdge, &iv.StopEdge, &sev); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		ep.Severity, ep.Scored = sev.Float64, sev.Valid
		out = append(out, ep)
	}
	return out, rows.Err()
}

func (s *Store) kpvs(runID string) ([]signal.KeyPointValue, error) {
	rows, err := s.db.Query(`SELECT name, sample_index, value FROM kpvs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list kpvs: %w", err)
	}
	defer rows.Close()

	var out []signal.KeyPointValue
	for rows.Next() {
		var k signal.KeyPointValue
		if err := rows.Scan(&k.Name, &k.Index, &k.Value); err != nil {
			return nil, fmt.Errorf("scan kpv: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

func (s *Store) instants(runID string) ([]signal.Instant, error) {
	rows, err := s.db.Query(`SELECT name, sample_index FROM instants WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list instants: %w", err)
	}
	defer rows.Close()

	var out []signal.Instant
	for rows.Next() {
		var in signal.Instant
		if err := rows.Scan(&in.Name, &in.Index); err != nil {
			return nil, fmt.Errorf("scan instant: %w", err)
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (s *Store) trajectory(runID string) (*signal.Signal, error) {
	var sig signal.Signal
	var blob []byte
	err := s.db.QueryRow(
		`SELECT name, frequency, offset_s, samples FROM trajectories WHERE run_id = ?`, runID,
	).Scan(&sig.Name, &sig.Frequency, &sig.Offset, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trajectory: %w", err)
	}
	sig.Values, sig.Valid = decodeSamples(blob)
	return &sig, nil
}

// #endregion get-run

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var cfgJSON sql.NullString
	var createdStr string
	if err := row.Scan(&rec.RunID, &rec.Recording, &rec.Frequency, &cfgJSON, &createdStr, &rec.EpisodeCount, &rec.DiagnosticCount); err != nil {
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	if cfgJSON.Valid {
		rec.ConfigJSON = cfgJSON.String
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return rec, nil
}

// #endregion scan

// #region sample-encoding
// Masked samples are stored as NaN.
func encodeSamples(s signal.Signal) []byte {
	buf := make([]byte, len(s.Values)*8)
	for i := range s.Values {
		v := math.NaN()
		if s.IsValid(i) {
			v = s.Values[i]
		}
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decodeSamples(b []byte) ([]float64, []bool) {
	n := len(b) / 8
	values := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		v := math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
		if math.IsNaN(v) {
			continue
		}
		values[i], valid[i] = v, true
	}
	return values, valid
}

// #endregion sample-encoding
