package segment

import "github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"

// #region reject-reason
// RejectReason enumerates why a raw RA run did not become an episode.
type RejectReason string

const (
	RejectNearLiftoff   RejectReason = "too_close_to_liftoff"
	RejectNearTouchdown RejectReason = "too_close_to_touchdown"
	RejectTooShort      RejectReason = "too_short"
	RejectTooLong       RejectReason = "too_long"
)

// #endregion reject-reason

// #region config
// Config holds the episode quality filters.
type Config struct {
	MaxGap          float64 `yaml:"max_gap_s" json:"max_gap_s"`                   // merge runs separated by at most this many seconds
	LiftoffMargin   float64 `yaml:"liftoff_margin_s" json:"liftoff_margin_s"`     // start must be strictly later than liftoff + margin
	TouchdownMargin float64 `yaml:"touchdown_margin_s" json:"touchdown_margin_s"` // stop must be strictly earlier than touchdown - margin
	MinDuration     float64 `yaml:"min_duration_s" json:"min_duration_s"`         // inclusive
	MaxDuration     float64 `yaml:"max_duration_s" json:"max_duration_s"`         // exclusive
}

// DefaultConfig returns the filters used for RA section detection.
func DefaultConfig() Config {
	return Config{
		MaxGap:          2.0,
		LiftoffMargin:   10.0,
		TouchdownMargin: 10.0,
		MinDuration:     3.0,
		MaxDuration:     300.0,
	}
}

// #endregion config

// #region result
// Rejection records a merged run that failed a filter.
type Rejection struct {
	Run    signal.Interval `json:"run"`
	Reason RejectReason    `json:"reason"`
}

// Result is the segmenter output for one recording.
type Result struct {
	Episodes []signal.Interval `json:"episodes"`
	Rejected []Rejection       `json:"rejected,omitempty"`
}

// #endregion result
