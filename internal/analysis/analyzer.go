package analysis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/metrics"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region analyzer
// Analyzer runs a measure registry over recordings.
type Analyzer struct {
	registry *Registry
	logger   *zap.Logger
	metrics  *metrics.Recorder
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithMetrics publishes counters to r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Analyzer) { a.metrics = r }
}

// WithRegistry replaces the default TCAS measure table.
func WithRegistry(r *Registry) Option {
	return func(a *Analyzer) { a.registry = r }
}

// NewAnalyzer creates an analyzer. Without WithRegistry it runs DefaultMeasures(cfg).
func NewAnalyzer(cfg Config, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	if a.registry == nil {
		reg, err := NewRegistry(DefaultMeasures(cfg, a.logger)...)
		if err != nil {
			return nil, fmt.Errorf("default measures: %w", err)
		}
		a.registry = reg
	}
	return a, nil
}

// #endregion analyzer

// #region analyze

// Analyze derives every measure the frame can support. The frame is not modified.
// Malformed input aborts the recording; missing inputs only skip the measures that
// need them.
func (a *Analyzer) Analyze(ctx context.Context, f *Frame) (rep Report, err error) {
	started := time.Now()
	defer func() { a.metrics.ObserveRecording(time.Since(started), err) }()

	// 1. recording-level validation
	freq, err := f.Frequency()
	if err != nil {
		return Report{}, fmt.Errorf("analyze %q: %w", f.Recording, err)
	}
	work := f.clone()
	rep = newReport(f.Recording, freq)
	log := a.logger.With(zap.String("recording", f.Recording))

	// 2. run the capability table in order
	for _, m := range a.registry.Measures() {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		combo, ok := m.CanOperate(work)
		if !ok {
			log.Debug("measure skipped", zap.String("measure", m.Name))
			rep.Skipped = append(rep.Skipped, m.Name)
			continue
		}
		out, err := m.Derive(work)
		if err != nil {
			return Report{}, fmt.Errorf("analyze %q: measure %q: %w", f.Recording, m.Name, err)
		}
		log.Debug("measure derived", zap.String("measure", m.Name), zap.Strings("inputs", combo))
		work.absorb(m, out)
		rep.absorb(m, out)
		rep.Ran = append(rep.Ran, m.Name)
	}

	// 3. publish
	a.metrics.AddEpisodes(len(rep.Episodes))
	for _, rj := range rep.Rejected {
		a.metrics.AddRejected(string(rj.Reason))
	}
	for _, d := range rep.Diagnostics {
		a.metrics.AddDiagnostic(string(d.Kind))
	}
	for _, s := range rep.Severities {
		a.metrics.ObserveSeverity(s.Value)
	}
	log.Info("recording analyzed",
		zap.Int("episodes", len(rep.Episodes)),
		zap.Int("rejected", len(rep.Rejected)),
		zap.Int("kpvs", len(rep.KPVs)),
		zap.Int("diagnostics", len(rep.Diagnostics)))
	return rep, nil
}

// #endregion analyze

// #region clone
func (f *Frame) clone() *Frame {
	c := NewFrame(f.Recording)
	for k, v := range f.Signals {
		c.Signals[k] = v
	}
	for k, v := range f.Discretes {
		c.Discretes[k] = v
	}
	for k, v := range f.Instants {
		c.Instants[k] = append([]signal.Instant(nil), v...)
	}
	for k, v := range f.Sections {
		c.Sections[k] = append([]signal.Interval(nil), v...)
	}
	return c
}

// #endregion clone
