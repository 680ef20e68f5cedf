package segment

import (
	"fmt"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// StartName is the key time instance emitted at each episode start.
const StartName = "TCAS RA Start"

// #region active

// ActiveFromCombinedControl marks samples whose Combined Control label is an RA state.
func ActiveFromCombinedControl(ctl signal.Discrete) []bool {
	return ctl.AnyOf(advisory.RAStates...)
}

// ActiveFromFlag marks samples where a dedicated RA channel is set.
func ActiveFromFlag(ra signal.Discrete) []bool {
	return ra.Truthy()
}

// #endregion active

// #region segmenter

// Segmenter turns an RA-active mask into episodes.
type Segmenter struct {
	config Config
}

// NewSegmenter creates a segmenter with the given filters.
func NewSegmenter(config Config) *Segmenter {
	return &Segmenter{config: config}
}

// Segment extracts runs of active samples, merges short drop-outs, then applies the
// liftoff, touchdown and duration filters. With no liftoff (touchdown) instants the
// corresponding filter is skipped. An empty result is not an error.
func (s *Segmenter) Segment(active []bool, frequency float64, liftoffs, touchdowns []signal.Instant) (Result, error) {
	if !(frequency > 0) {
		return Result{}, fmt.Errorf("%w: segment frequency %v must be positive", signal.ErrMalformed, frequency)
	}

	// 1. raw runs, 2. drop-out merge
	runs := signal.MergeSmallGaps(signal.RunsOfTrue(active), s.config.MaxGap, frequency)

	liftoff, hasLiftoff := signal.First(liftoffs)
	touchdown, hasTouchdown := signal.First(touchdowns)

	res := Result{Episodes: []signal.Interval{}}
	for _, run := range runs {
		// 3. quality filters
		if reason, rejected := s.reject(run, frequency, liftoff, hasLiftoff, touchdown, hasTouchdown); rejected {
			res.Rejected = append(res.Rejected, Rejection{Run: run, Reason: reason})
			continue
		}
		// 4. episode edges sit on the run's sample boundaries
		res.Episodes = append(res.Episodes, signal.NewInterval(run.Start, run.Stop))
	}
	return res, nil
}

func (s *Segmenter) reject(run signal.Interval, frequency float64, liftoff signal.Instant, hasLiftoff bool, touchdown signal.Instant, hasTouchdown bool) (RejectReason, bool) {
	if hasLiftoff && (float64(run.Start)-liftoff.Index)/frequency <= s.config.LiftoffMargin {
		return RejectNearLiftoff, true
	}
	if hasTouchdown && (touchdown.Index-float64(run.Stop))/frequency <= s.config.TouchdownMargin {
		return RejectNearTouchdown, true
	}
	return s.CheckDuration(run.Duration(frequency))
}

// CheckDuration applies the [MinDuration, MaxDuration) bound to a duration in seconds.
func (s *Segmenter) CheckDuration(seconds float64) (RejectReason, bool) {
	if seconds < s.config.MinDuration {
		return RejectTooShort, true
	}
	if seconds >= s.config.MaxDuration {
		return RejectTooLong, true
	}
	return "", false
}

// #endregion segmenter

// #region ctl-sections

// ControlSections returns the unfiltered runs of RA-active Combined Control states.
func ControlSections(ctl signal.Discrete) []signal.Interval {
	runs := signal.RunsOfTrue(ActiveFromCombinedControl(ctl))
	if runs == nil {
		return []signal.Interval{}
	}
	return runs
}

// #endregion ctl-sections

// #region start-instants

// StartInstants returns one "TCAS RA Start" instant per episode at its start edge.
func StartInstants(episodes []signal.Interval) []signal.Instant {
	out := make([]signal.Instant, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, signal.Instant{Index: ep.StartEdge, Name: StartName})
	}
	return out
}

// #endregion start-instants
