package response

import (
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// Names of the derived parameters.
const (
	TrajectoryName = "TCAS RA Standard Response"
	RequiredName   = "TCAS RA Required Vertical Speed"
)

// #region config
// Config holds the standard pilot response model. Source: "Introduction to TCAS II
// version 7.1", FAA, February 2011, p. 39.
type Config struct {
	Lag                  float64          `yaml:"lag_s" json:"lag_s"`                           // initial response delay
	ReversalLag          float64          `yaml:"reversal_lag_s" json:"reversal_lag_s"`         // delay after a Reversal
	Acceleration         float64          `yaml:"acceleration_ftps2" json:"acceleration_ftps2"` // toward the commanded rate
	ReversalAcceleration float64          `yaml:"reversal_acceleration_ftps2" json:"reversal_acceleration_ftps2"`
	Targets              advisory.Targets `yaml:"targets" json:"targets"`
}

// DefaultConfig returns the FAA standard response.
func DefaultConfig() Config {
	return Config{
		Lag:                  5.0,
		ReversalLag:          2.5,
		Acceleration:         8.0,
		ReversalAcceleration: 11.2,
		Targets:              advisory.DefaultTargets(),
	}
}

// PerSample converts an acceleration in ft/s² into the fpm change applied per sample.
func PerSample(ftps2, frequency float64) float64 {
	return ftps2 * 60 / frequency
}

// #endregion config

// #region inputs
// Inputs are the channels the simulator reads. All must share one length and frequency.
type Inputs struct {
	Combined      signal.Discrete
	Up            signal.Discrete
	Down          signal.Discrete
	Vertical      signal.Discrete
	VerticalSpeed signal.Signal
}

// Command returns the advisory state at sample i.
func (in Inputs) Command(i int) advisory.Command {
	return advisory.Command{
		Combined: in.Combined.Label(i),
		Up:       in.Up.Label(i),
		Down:     in.Down.Label(i),
		Vertical: in.Vertical.Label(i),
	}
}

// Validate fails fast on mismatched or malformed channels.
func (in Inputs) Validate() error {
	return signal.CheckAligned(in.VerticalSpeed, in.Combined, in.Up, in.Down, in.Vertical)
}

// #endregion inputs

// #region diagnostics
// DiagnosticKind classifies a condition the simulator worked around.
type DiagnosticKind string

const (
	// DiagMissingRequired: no commanded rate could be determined at a transition.
	DiagMissingRequired DiagnosticKind = "missing_required_fpm"
	// DiagUnrecognized: the advisory combination is outside the modeled vocabulary.
	DiagUnrecognized DiagnosticKind = "unrecognized_combination"
	// DiagEpisodeBounds: the episode does not fit inside the recording.
	DiagEpisodeBounds DiagnosticKind = "episode_out_of_bounds"
	// DiagNoVerticalSpeed: every vertical speed sample in the episode is masked.
	DiagNoVerticalSpeed DiagnosticKind = "no_valid_vertical_speed"
)

// Diagnostic is one simulator warning, tied to an episode and sample.
type Diagnostic struct {
	Episode int            `json:"episode"`
	Index   int            `json:"index"`
	Kind    DiagnosticKind `json:"kind"`
	Detail  string         `json:"detail"`
}

// #endregion diagnostics

// #region result
// Result bundles the simulated trajectory with its commanded rates and diagnostics.
type Result struct {
	Trajectory  signal.Signal `json:"trajectory"`
	Required    signal.Signal `json:"required"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

// #endregion result
