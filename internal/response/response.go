package response

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region simulator
// Simulator synthesizes the standard response trajectory for RA episodes.
type Simulator struct {
	config Config
	logger *zap.Logger
}

// NewSimulator creates a simulator. logger may be nil.
func NewSimulator(config Config, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{config: config, logger: logger}
}

// #endregion simulator

// #region simulate

// Simulate runs the response model over every episode. Samples outside the episodes
// stay masked. Malformed inputs fail before any episode is processed; an episode
// that does not fit the recording is skipped with a diagnostic.
func (s *Simulator) Simulate(in Inputs, episodes []signal.Interval) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, fmt.Errorf("standard response inputs: %w", err)
	}

	res := Result{
		Trajectory: in.VerticalSpeed.Masked(TrajectoryName),
		Required:   in.VerticalSpeed.Masked(RequiredName),
	}
	for n, ep := range episodes {
		res.Diagnostics = append(res.Diagnostics, s.episode(in, n, ep, &res)...)
	}
	return res, nil
}

// #endregion simulate

// #region episode

// episodeState is the per-episode automaton state.
type episodeState struct {
	required     float64
	haveRequired bool
	std          float64 // current simulated vertical speed
	hold         float64 // value held until lagEnd
	lagEnd       float64 // sample index where acceleration begins
	accel        float64 // fpm per sample
}

func (s *Simulator) episode(in Inputs, n int, ep signal.Interval, res *Result) []Diagnostic {
	vs := in.VerticalSpeed
	freq := vs.Frequency
	start := int(ep.StartEdge)
	stop := int(ep.StopEdge)
	if stop >= vs.Len() {
		stop = vs.Len() - 1
	}
	if start < 0 || start >= vs.Len() || stop < start {
		s.logger.Warn("episode outside recording",
			zap.Int("episode", n), zap.Int("start", start), zap.Int("samples", vs.Len()))
		return []Diagnostic{{
			Episode: n,
			Index:   start,
			Kind:    DiagEpisodeBounds,
			Detail:  fmt.Sprintf("episode [%v, %v] outside %d samples", ep.StartEdge, ep.StopEdge, vs.Len()),
		}}
	}

	// the response starts from the first usable vertical speed in the episode
	seed, ok := firstValid(vs, start, stop)
	if !ok {
		s.logger.Warn("no valid vertical speed in episode",
			zap.Int("episode", n), zap.Int("start", start), zap.Int("stop", stop))
		return []Diagnostic{{
			Episode: n,
			Index:   start,
			Kind:    DiagNoVerticalSpeed,
			Detail:  fmt.Sprintf("vertical speed masked over [%d, %d]", start, stop),
		}}
	}

	var diags []Diagnostic
	st := episodeState{
		std:    seed,
		lagEnd: float64(start) + s.config.Lag*freq,
		accel:  PerSample(s.config.Acceleration, freq),
	}
	st.hold = st.std

	var prev advisory.Command
	for t := start; t <= stop; t++ {
		cmd := in.Command(t)
		actual, actualOK := vs.At(t)

		// 1. command entry or change: determine the commanded rate
		if t == start || !cmd.SameTriple(prev) {
			st.required, st.haveRequired = s.requiredFPM(cmd, actual, actualOK)
			if !st.haveRequired && (cmd.UpActive() || cmd.DownActive()) {
				s.logger.Warn("no required vertical speed for advisory",
					zap.Int("episode", n), zap.Int("index", t),
					zap.String("combined", cmd.Combined), zap.String("up", cmd.Up), zap.String("down", cmd.Down))
				diags = append(diags, Diagnostic{
					Episode: n,
					Index:   t,
					Kind:    DiagMissingRequired,
					Detail:  fmt.Sprintf("combined=%q up=%q down=%q", cmd.Combined, cmd.Up, cmd.Down),
				})
			}
			// 2. a reversal restarts the ramp from the current response
			if cmd.IsReversal() {
				st.lagEnd = float64(t) + s.config.ReversalLag*freq
				st.accel = PerSample(s.config.ReversalAcceleration, freq)
				st.hold = st.std
			}
		}

		// 3. advance the response
		next, known, tracking := s.step(float64(t), cmd, st, actual)
		if !known {
			s.logger.Error("standard response: unrecognized advisory combination",
				zap.Int("episode", n), zap.Int("index", t),
				zap.String("combined", cmd.Combined), zap.String("up", cmd.Up), zap.String("down", cmd.Down))
			diags = append(diags, Diagnostic{
				Episode: n,
				Index:   t,
				Kind:    DiagUnrecognized,
				Detail:  fmt.Sprintf("combined=%q up=%q down=%q", cmd.Combined, cmd.Up, cmd.Down),
			})
		}
		// a masked actual leaves both the response and the output sample untouched
		if !tracking || actualOK {
			st.std = next
			res.Trajectory.Values[t] = st.std
			res.Trajectory.Valid[t] = true
		}
		if st.haveRequired {
			res.Required.Values[t] = st.required
			res.Required.Valid[t] = true
		}
		prev = cmd
	}
	return diags
}

// #endregion episode

// #region required

// requiredFPM maps the current command onto a target vertical speed. With no up or
// down sense in effect the target is the actual vertical speed, when it is valid.
func (s *Simulator) requiredFPM(cmd advisory.Command, actual float64, actualOK bool) (float64, bool) {
	switch {
	case cmd.UpActive():
		return s.config.Targets.RequiredUp(cmd.Up, cmd.Vertical)
	case cmd.DownActive():
		return s.config.Targets.RequiredDown(cmd.Down, cmd.Vertical)
	default:
		return actual, actualOK
	}
}

// firstValid returns the first unmasked value in [from, to].
func firstValid(x signal.Signal, from, to int) (float64, bool) {
	for i := from; i <= to; i++ {
		if v, ok := x.At(i); ok {
			return v, true
		}
	}
	return 0, false
}

// #endregion required

// #region step

// step applies one sample of the response model. known is false for advisory
// combinations the model does not cover; the response then tracks the actual value.
// tracking reports that next is the actual value rather than a modeled one.
func (s *Simulator) step(t float64, cmd advisory.Command, st episodeState, actual float64) (next float64, known, tracking bool) {
	switch {
	case cmd.Cleared():
		return actual, true, true
	case t < st.lagEnd:
		return st.hold, true, false
	case cmd.DownActive():
		if !st.haveRequired {
			return actual, true, true
		}
		next = st.std
		if st.std > st.required {
			next = st.std - st.accel
		}
		if next <= st.required {
			next = st.required
		}
		return next, true, false
	case cmd.UpActive():
		if !st.haveRequired {
			return actual, true, true
		}
		next = st.std
		if st.std < st.required {
			next = st.std + st.accel
		}
		if next >= st.required {
			next = st.required
		}
		return next, true, false
	case cmd.Holding():
		return st.std, true, false
	default:
		return actual, false, true
	}
}

// #endregion step
