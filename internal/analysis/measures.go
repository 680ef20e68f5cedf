package analysis

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/exceedance"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/filter"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/response"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/segment"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region names

// Input node names supplied by the host.
const (
	LiftoffName       = "Liftoff"
	TouchdownName     = "Touchdown"
	APDisengagedName  = "AP Disengaged Selection"
	VerticalSpeedName = "Vertical Speed"
	AltitudeQNHName   = "Altitude QNH"
	PitchName         = "Pitch"
	RollName          = "Roll"
	AirspeedName      = "Airspeed"
	APEngagedName     = "AP Engaged"
)

// Derived node names.
const (
	CtlSectionsName       = "TCAS Ctl Sections"
	SectionsName          = "TCAS RA Sections"
	SensitivityName       = "TCAS Pilot Sensitivity Mode"
	SensitivityEventName  = "TCAS Sensitivity"
	TimeToAPDisengageName = "TCAS RA Time To AP Disengage"
	SustainedVSName       = "TCAS RA Sustained Vertical Speed Max Abs"
)

// #endregion names

// #region config
// Config gathers the component configurations used by the default measures.
type Config struct {
	Segment      segment.Config    `yaml:"segment" json:"segment"`
	Response     response.Config   `yaml:"response" json:"response"`
	Exceedance   exceedance.Config `yaml:"exceedance" json:"exceedance"`
	FilterWindow float64           `yaml:"filter_window_s" json:"filter_window_s"`
}

// DefaultConfig returns the default component configurations.
func DefaultConfig() Config {
	return Config{
		Segment:      segment.DefaultConfig(),
		Response:     response.DefaultConfig(),
		Exceedance:   exceedance.DefaultConfig(),
		FilterWindow: filter.DefaultWindow,
	}
}

// #endregion config

// #region default-measures

// DefaultMeasures returns the TCAS measure table in dependency order.
func DefaultMeasures(cfg Config, logger *zap.Logger) []Measure {
	if logger == nil {
		logger = zap.NewNop()
	}
	seg := segment.NewSegmenter(cfg.Segment)
	sim := response.NewSimulator(cfg.Response, logger.Named("standard-response"))
	calc := exceedance.NewCalculator(cfg.Exceedance)

	return []Measure{
		{
			Name:         CtlSectionsName,
			Kind:         KindSection,
			Combinations: [][]string{{advisory.ChannelCombinedControl}},
			Derive: func(f *Frame) (Output, error) {
				return Output{Sections: segment.ControlSections(f.Discretes[advisory.ChannelCombinedControl])}, nil
			},
		},
		{
			Name:         SectionsName,
			Kind:         KindSection,
			Combinations: [][]string{{advisory.ChannelRA}, {advisory.ChannelCombinedControl}},
			Derive: func(f *Frame) (Output, error) {
				var active []bool
				var freq float64
				if ra, ok := f.Discretes[advisory.ChannelRA]; ok {
					active, freq = segment.ActiveFromFlag(ra), ra.Frequency
				} else {
					ctl := f.Discretes[advisory.ChannelCombinedControl]
					active, freq = segment.ActiveFromCombinedControl(ctl), ctl.Frequency
				}
				res, err := seg.Segment(active, freq, f.Instants[LiftoffName], f.Instants[TouchdownName])
				if err != nil {
					return Output{}, err
				}
				return Output{Sections: res.Episodes, Rejected: res.Rejected}, nil
			},
		},
		{
			Name:         segment.StartName,
			Kind:         KindInstant,
			Combinations: [][]string{{SectionsName}},
			Derive: func(f *Frame) (Output, error) {
				return Output{Instants: segment.StartInstants(f.Sections[SectionsName])}, nil
			},
		},
		{
			Name: response.TrajectoryName,
			Kind: KindParameter,
			Combinations: [][]string{{
				advisory.ChannelCombinedControl, advisory.ChannelUpAdvisory, advisory.ChannelDownAdvisory,
				advisory.ChannelVerticalControl, VerticalSpeedName, SectionsName,
			}},
			Derive: func(f *Frame) (Output, error) {
				res, err := sim.Simulate(response.Inputs{
					Combined:      f.Discretes[advisory.ChannelCombinedControl],
					Up:            f.Discretes[advisory.ChannelUpAdvisory],
					Down:          f.Discretes[advisory.ChannelDownAdvisory],
					Vertical:      f.Discretes[advisory.ChannelVerticalControl],
					VerticalSpeed: f.Signals[VerticalSpeedName],
				}, f.Sections[SectionsName])
				if err != nil {
					return Output{}, err
				}
				return Output{Signals: []signal.Signal{res.Trajectory, res.Required}, Diagnostics: res.Diagnostics}, nil
			},
		},
		{
			Name: exceedance.Name,
			Kind: KindKPV,
			Combinations: [][]string{{
				SectionsName, advisory.ChannelCombinedControl, advisory.ChannelUpAdvisory,
				advisory.ChannelDownAdvisory, response.TrajectoryName, VerticalSpeedName,
			}},
			Derive: func(f *Frame) (Output, error) {
				sevs, err := calc.Calculate(exceedance.Inputs{
					Combined:      f.Discretes[advisory.ChannelCombinedControl],
					Up:            f.Discretes[advisory.ChannelUpAdvisory],
					Down:          f.Discretes[advisory.ChannelDownAdvisory],
					Standard:      f.Signals[response.TrajectoryName],
					VerticalSpeed: f.Signals[VerticalSpeedName],
				}, f.Sections[SectionsName])
				if err != nil {
					return Output{}, err
				}
				out := Output{Severities: sevs}
				for _, s := range sevs {
					out.KPVs = append(out.KPVs, s.KPV())
				}
				return out, nil
			},
		},
		changeEvents(advisory.ChannelCombinedControl, advisory.ChannelCombinedControl, advisory.ChannelCombinedControl),
		changeEvents(advisory.ChannelUpAdvisory, advisory.ChannelUpAdvisory, advisory.ChannelUpAdvisory),
		changeEvents(advisory.ChannelDownAdvisory, advisory.ChannelDownAdvisory, advisory.ChannelDownAdvisory),
		changeEvents(advisory.ChannelVerticalControl, advisory.ChannelVerticalControl, advisory.ChannelVerticalControl),
		changeEvents(SensitivityName, advisory.ChannelSensitivity, SensitivityEventName),
		atStart("TCAS RA Start Vertical Speed", VerticalSpeedName, nil),
		atStart("TCAS RA Start Altitude QNH", AltitudeQNHName, nil),
		atStart("TCAS RA Start Pitch", PitchName, nil),
		atStart("TCAS RA Start Roll Abs", RollName, math.Abs),
		atStart("TCAS RA Start Airspeed", AirspeedName, math.Abs),
		atStart("TCAS RA Start Autopilot", APEngagedName, nil),
		sensitivityAtStart(),
		timeToAPDisengage(),
		sustainedVerticalSpeed(cfg.FilterWindow),
	}
}

// #endregion default-measures

// #region change-events

// changeEvents emits one "<prefix>|<label>" KPV per state change of channel.
func changeEvents(name, channel, prefix string) Measure {
	return Measure{
		Name:         name,
		Kind:         KindKPV,
		Combinations: [][]string{{channel}},
		Derive: func(f *Frame) (Output, error) {
			return Output{KPVs: signal.Events(f.Discretes[channel], prefix)}, nil
		},
	}
}

// #endregion change-events

// #region at-start

// atStart samples source at every RA start instant.
func atStart(name, source string, transform func(float64) float64) Measure {
	return Measure{
		Name:         name,
		Kind:         KindKPV,
		Combinations: [][]string{{source, segment.StartName}},
		Derive: func(f *Frame) (Output, error) {
			src := f.Signals[source]
			var out Output
			for _, kti := range f.Instants[segment.StartName] {
				v, ok := src.ValueAt(kti.Index)
				if !ok {
					continue
				}
				if transform != nil {
					v = transform(v)
				}
				out.KPVs = append(out.KPVs, signal.KeyPointValue{Index: kti.Index, Value: v, Name: name})
			}
			return out, nil
		},
	}
}

// sensitivityAtStart records the sensitivity level code at every RA start instant.
func sensitivityAtStart() Measure {
	const name = "TCAS RA Start Pilot Sensitivity Mode"
	return Measure{
		Name:         name,
		Kind:         KindKPV,
		Combinations: [][]string{{advisory.ChannelSensitivity, segment.StartName}},
		Derive: func(f *Frame) (Output, error) {
			sens := f.Discretes[advisory.ChannelSensitivity]
			var out Output
			for _, kti := range f.Instants[segment.StartName] {
				i := signal.Round(kti.Index)
				if !sens.IsValid(i) {
					continue
				}
				out.KPVs = append(out.KPVs, signal.KeyPointValue{Index: kti.Index, Value: float64(sens.Codes[i]), Name: name})
			}
			return out, nil
		},
	}
}

// #endregion at-start

// #region ap-disengage

// timeToAPDisengage measures seconds from episode start to the first autopilot
// disengagement inside the episode.
func timeToAPDisengage() Measure {
	return Measure{
		Name:         TimeToAPDisengageName,
		Kind:         KindKPV,
		Combinations: [][]string{{APDisengagedName, SectionsName}},
		Derive: func(f *Frame) (Output, error) {
			freq, err := f.Frequency()
			if err != nil {
				return Output{}, err
			}
			offs := append([]signal.Instant(nil), f.Instants[APDisengagedName]...)
			sort.SliceStable(offs, func(i, j int) bool { return offs[i].Index < offs[j].Index })

			var out Output
			for _, ep := range f.Sections[SectionsName] {
				for _, off := range offs {
					if !ep.Contains(off.Index) {
						continue
					}
					out.KPVs = append(out.KPVs, signal.KeyPointValue{
						Index: off.Index,
						Value: (off.Index - float64(ep.Start)) / freq,
						Name:  TimeToAPDisengageName,
					})
					break
				}
			}
			return out, nil
		},
	}
}

// #endregion ap-disengage

// #region sustained-vs

// sustainedVerticalSpeed takes the peak of the windowed |vertical speed| in each episode.
func sustainedVerticalSpeed(window float64) Measure {
	return Measure{
		Name:         SustainedVSName,
		Kind:         KindKPV,
		Combinations: [][]string{{VerticalSpeedName, SectionsName}},
		Derive: func(f *Frame) (Output, error) {
			sustained := filter.SustainedMaxAbs(f.Signals[VerticalSpeedName], window)
			var out Output
			for _, ep := range f.Sections[SectionsName] {
				best, found := 0, false
				for i := ep.Start; i < ep.Stop; i++ {
					if !sustained.IsValid(i) {
						continue
					}
					if !found || sustained.Values[i] > sustained.Values[best] {
						best, found = i, true
					}
				}
				if !found {
					continue
				}
				out.KPVs = append(out.KPVs, signal.KeyPointValue{
					Index: float64(best),
					Value: sustained.Values[best],
					Name:  SustainedVSName,
				})
			}
			return out, nil
		},
	}
}

// #endregion sustained-vs
