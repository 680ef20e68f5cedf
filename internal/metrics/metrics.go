package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tcas"

// #region recorder
// Recorder publishes analysis counters. A nil *Recorder is a valid no-op.
type Recorder struct {
	recordings  *prometheus.CounterVec
	duration    prometheus.Histogram
	episodes    prometheus.Counter
	rejected    *prometheus.CounterVec
	diagnostics *prometheus.CounterVec
	severity    prometheus.Histogram
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		recordings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_total",
			Help:      "Recordings analyzed, by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time spent analyzing one recording.",
			Buckets:   prometheus.DefBuckets,
		}),
		episodes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_total",
			Help:      "RA episodes accepted by the segmenter.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_rejected_total",
			Help:      "Raw RA runs dropped by a quality filter, by reason.",
		}, []string{"reason"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Standard response diagnostics, by kind.",
		}, []string{"kind"}),
		severity: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "altitude_exceedance",
			Help:      "Per-episode altitude exceedance in fpm-minutes.",
			Buckets:   []float64{0, 10, 50, 100, 250, 500, 1000, 2500},
		}),
	}
	for _, c := range []prometheus.Collector{r.recordings, r.duration, r.episodes, r.rejected, r.diagnostics, r.severity} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// #endregion recorder

// #region observe

// ObserveRecording counts one analyzed recording and its duration.
func (r *Recorder) ObserveRecording(elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.recordings.WithLabelValues(result).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// AddEpisodes counts accepted episodes.
func (r *Recorder) AddEpisodes(n int) {
	if r == nil {
		return
	}
	r.episodes.Add(float64(n))
}

// AddRejected counts one rejected run.
func (r *Recorder) AddRejected(reason string) {
	if r == nil {
		return
	}
	r.rejected.WithLabelValues(reason).Inc()
}

// AddDiagnostic counts one simulator diagnostic.
func (r *Recorder) AddDiagnostic(kind string) {
	if r == nil {
		return
	}
	r.diagnostics.WithLabelValues(kind).Inc()
}

// ObserveSeverity records one episode severity.
func (r *Recorder) ObserveSeverity(v float64) {
	if r == nil {
		return
	}
	r.severity.Observe(v)
}

// #endregion observe
