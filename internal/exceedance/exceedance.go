package exceedance

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region calculator
// Calculator scores how far the actual vertical speed strayed from the standard response.
type Calculator struct {
	config Config
}

// NewCalculator creates a calculator with the given configuration.
func NewCalculator(config Config) *Calculator {
	return &Calculator{config: config}
}

// Calculate emits one Severity per episode at its start edge, including episodes
// whose deviation is zero. Samples where either vertical speed is masked are skipped.
func (c *Calculator) Calculate(in Inputs, episodes []signal.Interval) ([]Severity, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("exceedance inputs: %w", err)
	}

	out := make([]Severity, 0, len(episodes))
	for n, ep := range episodes {
		sev := Severity{Episode: n, Index: ep.StartEdge}
		start, stop := clip(ep, in.VerticalSpeed.Len())
		sum := 0.0
		for t := start; t < stop; t++ {
			actual, ok := in.VerticalSpeed.At(t)
			if !ok {
				continue
			}
			standard, ok := in.Standard.At(t)
			if !ok {
				continue
			}
			cmd := advisory.Command{
				Combined: in.Combined.Label(t),
				Up:       in.Up.Label(t),
				Down:     in.Down.Label(t),
			}
			sum += c.Deviation(cmd, actual, standard)
			sev.Samples++
		}
		// fpm summed per sample -> fpm-minutes
		sev.Value = sum / (60 * in.VerticalSpeed.Frequency)
		out = append(out, sev)
	}
	return out, nil
}

// Deviation scores a single sample. Under a down sense only climbing faster than the
// standard counts; under an up sense only the shortfall counts; otherwise deviations
// beyond the tolerance band count.
func (c *Calculator) Deviation(cmd advisory.Command, actual, standard float64) float64 {
	switch {
	case cmd.DownActive():
		return math.Max(actual-standard, 0)
	case cmd.UpActive():
		return math.Max(standard-actual, 0)
	default:
		return math.Max(math.Abs(actual-standard)-c.config.ToleranceFPM, 0)
	}
}

// #endregion calculator

func clip(ep signal.Interval, n int) (int, int) {
	start, stop := int(ep.StartEdge), int(ep.StopEdge)
	if start < 0 {
		start = 0
	}
	if stop > n {
		stop = n
	}
	return start, stop
}
