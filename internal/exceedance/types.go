package exceedance

import "github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"

// Name is the key point value emitted per episode.
const Name = "TCAS RA Altitude Exceedance"

// #region config
// Config holds the deviation scoring parameters.
type Config struct {
	ToleranceFPM float64 `yaml:"tolerance_fpm" json:"tolerance_fpm"` // band applied when no sense is commanded
}

// DefaultConfig returns the 250 fpm tolerance band.
func DefaultConfig() Config {
	return Config{ToleranceFPM: 250}
}

// #endregion config

// #region inputs
// Inputs are the channels the calculator compares.
type Inputs struct {
	Combined      signal.Discrete
	Up            signal.Discrete
	Down          signal.Discrete
	Standard      signal.Signal
	VerticalSpeed signal.Signal
}

// Validate fails fast on mismatched or malformed channels.
func (in Inputs) Validate() error {
	return signal.CheckAligned(in.VerticalSpeed, in.Standard, in.Combined, in.Up, in.Down)
}

// #endregion inputs

// #region severity
// Severity is one episode's accumulated deviation, in fpm-minutes.
type Severity struct {
	Episode int     `json:"episode"`
	Index   float64 `json:"index"`
	Value   float64 `json:"value"`
	Samples int     `json:"samples"` // samples that contributed (both channels valid)
}

// KPV converts the severity into a named key point value.
func (s Severity) KPV() signal.KeyPointValue {
	return signal.KeyPointValue{Index: s.Index, Value: s.Value, Name: Name}
}

// #endregion severity
