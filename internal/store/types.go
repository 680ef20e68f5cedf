package store

import (
	"time"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region run-record
// RunRecord summarizes one stored analysis run.
type RunRecord struct {
	RunID           string
	Recording       string
	Frequency       float64
	EpisodeCount    int
	DiagnosticCount int
	ConfigJSON      string
	CreatedAt       time.Time
}

// #endregion run-record

// #region run-detail
// RunDetail is a stored run with its episodes, KPVs and trajectory.
type RunDetail struct {
	RunRecord
	Episodes   []EpisodeRecord
	KPVs       []signal.KeyPointValue
	Instants   []signal.Instant
	Trajectory *signal.Signal
}

// EpisodeRecord is one stored episode with its severity.
type EpisodeRecord struct {
	Ordinal  int
	Interval signal.Interval
	Severity float64
	Scored   bool // false when no severity was computed
}

// #endregion run-detail
