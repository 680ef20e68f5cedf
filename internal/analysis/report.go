package analysis

import (
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/exceedance"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/response"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/segment"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region report
// Report is the analysis output for one recording.
type Report struct {
	Recording   string                 `json:"recording"`
	Frequency   float64                `json:"frequency"`
	Episodes    []signal.Interval      `json:"episodes"`
	CtlSections []signal.Interval      `json:"ctl_sections"`
	Rejected    []segment.Rejection    `json:"rejected,omitempty"`
	Instants    []signal.Instant       `json:"instants"`
	KPVs        []signal.KeyPointValue `json:"kpvs"`
	Severities  []exceedance.Severity  `json:"severities"`
	Trajectory  *signal.Signal         `json:"trajectory,omitempty"`
	Required    *signal.Signal         `json:"required,omitempty"`
	Diagnostics []response.Diagnostic  `json:"diagnostics,omitempty"`
	Ran         []string               `json:"ran"`
	Skipped     []string               `json:"skipped,omitempty"`
}

func newReport(recording string, frequency float64) Report {
	return Report{
		Recording:   recording,
		Frequency:   frequency,
		Episodes:    []signal.Interval{},
		CtlSections: []signal.Interval{},
		Instants:    []signal.Instant{},
		KPVs:        []signal.KeyPointValue{},
		Severities:  []exceedance.Severity{},
	}
}

// #endregion report

// #region absorb
func (r *Report) absorb(m Measure, out Output) {
	switch m.Name {
	case SectionsName:
		r.Episodes = append(r.Episodes, out.Sections...)
	case CtlSectionsName:
		r.CtlSections = append(r.CtlSections, out.Sections...)
	}
	r.Rejected = append(r.Rejected, out.Rejected...)
	r.Instants = append(r.Instants, out.Instants...)
	r.KPVs = append(r.KPVs, out.KPVs...)
	r.Severities = append(r.Severities, out.Severities...)
	r.Diagnostics = append(r.Diagnostics, out.Diagnostics...)
	for i := range out.Signals {
		s := out.Signals[i]
		switch s.Name {
		case response.TrajectoryName:
			r.Trajectory = &s
		case response.RequiredName:
			r.Required = &s
		}
	}
}

// #endregion absorb

// #region lookup

// KPVsNamed returns the KPVs called name, in emission order.
func (r Report) KPVsNamed(name string) []signal.KeyPointValue {
	var out []signal.KeyPointValue
	for _, k := range r.KPVs {
		if k.Name == name {
			out = append(out, k)
		}
	}
	return out
}

// #endregion lookup
