package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/exceedance"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/metrics"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/response"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/segment"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region helpers

func constantDiscrete(name string, n int, mapping map[int]string) signal.Discrete {
	return signal.Discrete{Name: name, Frequency: 1, Codes: make([]int, n), Mapping: mapping}
}

func constantSignal(name string, n int, v float64) signal.Signal {
	s := signal.Signal{Name: name, Frequency: 1, Values: make([]float64, n)}
	for i := range s.Values {
		s.Values[i] = v
	}
	return s
}

// climbFrame is a 120 s flight with a Climb RA over [40, 60).
func climbFrame() *Frame {
	const n = 120
	f := NewFrame("flight-001")

	ctl := constantDiscrete(advisory.ChannelCombinedControl, n, map[int]string{0: "No Advisory", 4: "Up Advisory Corrective"})
	up := constantDiscrete(advisory.ChannelUpAdvisory, n, map[int]string{0: "No Up Advisory", 1: "Climb"})
	for i := 40; i < 60; i++ {
		ctl.Codes[i] = 4
		up.Codes[i] = 1
	}
	f.Discretes[ctl.Name] = ctl
	f.Discretes[up.Name] = up
	f.Discretes[advisory.ChannelDownAdvisory] = constantDiscrete(advisory.ChannelDownAdvisory, n, map[int]string{0: "No Down Advisory"})
	f.Discretes[advisory.ChannelVerticalControl] = constantDiscrete(advisory.ChannelVerticalControl, n, map[int]string{0: "Crossing"})
	f.Signals[VerticalSpeedName] = constantSignal(VerticalSpeedName, n, 0)
	f.Signals[PitchName] = constantSignal(PitchName, n, 2.5)
	f.Signals[RollName] = constantSignal(RollName, n, -4)

	f.Instants[LiftoffName] = []signal.Instant{{Index: 5, Name: LiftoffName}}
	f.Instants[TouchdownName] = []signal.Instant{{Index: 115, Name: TouchdownName}}
	f.Instants[APDisengagedName] = []signal.Instant{{Index: 80, Name: APDisengagedName}, {Index: 45, Name: APDisengagedName}}
	return f
}

// #endregion helpers

// #region analyze-tests

func TestAnalyze_ClimbAdvisory(t *testing.T) {
	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)

	rep, err := a.Analyze(context.Background(), climbFrame())
	require.NoError(t, err)

	assert.Equal(t, 1.0, rep.Frequency)
	assert.Equal(t, []signal.Interval{signal.NewInterval(40, 60)}, rep.Episodes)
	assert.Equal(t, []signal.Interval{signal.NewInterval(40, 60)}, rep.CtlSections)
	assert.Contains(t, rep.Instants, signal.Instant{Index: 40, Name: segment.StartName})

	require.NotNil(t, rep.Trajectory)
	assert.Equal(t, 1500.0, rep.Trajectory.Values[50])
	require.NotNil(t, rep.Required)
	assert.Equal(t, 1500.0, rep.Required.Values[50])

	// (480 + 960 + 1440 + 12*1500) / 60
	require.Len(t, rep.Severities, 1)
	assert.InDelta(t, 348.0, rep.Severities[0].Value, 1e-9)
	sev := rep.KPVsNamed(exceedance.Name)
	require.Len(t, sev, 1)
	assert.Equal(t, 40.0, sev[0].Index)

	events := rep.KPVsNamed("TCAS Combined Control|Up Advisory Corrective")
	require.Len(t, events, 1)
	assert.Equal(t, 40.0, events[0].Index)
	assert.Len(t, rep.KPVsNamed("TCAS Combined Control|No Advisory"), 1)

	ap := rep.KPVsNamed(TimeToAPDisengageName)
	require.Len(t, ap, 1)
	assert.Equal(t, signal.KeyPointValue{Index: 45, Value: 5, Name: TimeToAPDisengageName}, ap[0])

	roll := rep.KPVsNamed("TCAS RA Start Roll Abs")
	require.Len(t, roll, 1)
	assert.Equal(t, 4.0, roll[0].Value)
	assert.Len(t, rep.KPVsNamed("TCAS RA Start Pitch"), 1)
	assert.Len(t, rep.KPVsNamed(SustainedVSName), 1)

	assert.Contains(t, rep.Skipped, "TCAS RA Start Altitude QNH")
	assert.Contains(t, rep.Skipped, SensitivityName)
	assert.Contains(t, rep.Ran, response.TrajectoryName)
	assert.Empty(t, rep.Diagnostics)
}

func TestAnalyze_DoesNotModifyFrame(t *testing.T) {
	f := climbFrame()
	before := f.Names()

	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, before, f.Names())
}

func TestAnalyze_OnlyCombinedControl(t *testing.T) {
	f := NewFrame("ctl-only")
	ctl := constantDiscrete(advisory.ChannelCombinedControl, 30, map[int]string{0: "No Advisory"})
	f.Discretes[ctl.Name] = ctl

	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)
	rep, err := a.Analyze(context.Background(), f)
	require.NoError(t, err)

	assert.NotNil(t, rep.Episodes)
	assert.Empty(t, rep.Episodes)
	assert.NotNil(t, rep.Severities)
	assert.Nil(t, rep.Trajectory)
	assert.Contains(t, rep.Ran, SectionsName)
	assert.Contains(t, rep.Ran, segment.StartName)
	assert.Contains(t, rep.Skipped, response.TrajectoryName)
	assert.Contains(t, rep.Skipped, exceedance.Name)
}

func TestAnalyze_PrefersRAFlag(t *testing.T) {
	f := climbFrame()
	ra := constantDiscrete(advisory.ChannelRA, 120, map[int]string{0: "-", 1: "RA"})
	for i := 70; i < 80; i++ {
		ra.Codes[i] = 1
	}
	f.Discretes[ra.Name] = ra

	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)
	rep, err := a.Analyze(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, []signal.Interval{signal.NewInterval(70, 80)}, rep.Episodes)
	assert.Equal(t, []signal.Interval{signal.NewInterval(40, 60)}, rep.CtlSections)
}

func TestAnalyze_MalformedRecording(t *testing.T) {
	f := climbFrame()
	vs := f.Signals[VerticalSpeedName]
	vs.Values = vs.Values[:100]
	f.Signals[VerticalSpeedName] = vs

	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), f)
	assert.ErrorIs(t, err, signal.ErrMalformed)

	f = climbFrame()
	p := f.Signals[PitchName]
	p.Frequency = 4
	f.Signals[PitchName] = p
	_, err = a.Analyze(context.Background(), f)
	assert.ErrorIs(t, err, signal.ErrMalformed)

	_, err = a.Analyze(context.Background(), NewFrame("empty"))
	assert.ErrorIs(t, err, signal.ErrMalformed)
}

func TestAnalyze_Canceled(t *testing.T) {
	a, err := NewAnalyzer(DefaultConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, climbFrame())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze_PublishesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)
	a, err := NewAnalyzer(DefaultConfig(), WithMetrics(rec))
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), climbFrame())
	require.NoError(t, err)

	expected := `
# HELP tcas_episodes_total RA episodes accepted by the segmenter.
# TYPE tcas_episodes_total counter
tcas_episodes_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tcas_episodes_total"))
}

// #endregion analyze-tests

// #region registry-tests

func TestRegistry_RejectsDuplicates(t *testing.T) {
	derive := func(*Frame) (Output, error) { return Output{}, nil }
	_, err := NewRegistry(
		Measure{Name: "A", Derive: derive},
		Measure{Name: "A", Derive: derive},
	)
	assert.Error(t, err)

	_, err = NewRegistry(Measure{Name: "B"})
	assert.Error(t, err)
}

func TestDefaultMeasures_UniqueAndOrdered(t *testing.T) {
	reg, err := NewRegistry(DefaultMeasures(DefaultConfig(), nil)...)
	require.NoError(t, err)

	pos := map[string]int{}
	for i, m := range reg.Measures() {
		pos[m.Name] = i
	}
	assert.Less(t, pos[SectionsName], pos[segment.StartName])
	assert.Less(t, pos[response.TrajectoryName], pos[exceedance.Name])

	m, ok := reg.Lookup(exceedance.Name)
	require.True(t, ok)
	assert.Equal(t, KindKPV, m.Kind)
}

func TestMeasure_CanOperatePicksFirstCombination(t *testing.T) {
	f := NewFrame("x")
	f.Discretes["B"] = signal.Discrete{Name: "B", Frequency: 1}
	m := Measure{Combinations: [][]string{{"A"}, {"B"}}}

	combo, ok := m.CanOperate(f)
	require.True(t, ok)
	assert.Equal(t, []string{"B"}, combo)

	f.Signals["A"] = signal.Signal{Name: "A", Frequency: 1}
	combo, _ = m.CanOperate(f)
	assert.Equal(t, []string{"A"}, combo)
}

// #endregion registry-tests
