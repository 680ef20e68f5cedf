package analysis

import (
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/exceedance"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/response"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/segment"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region kind
// Kind is the type of node a measure produces.
type Kind string

const (
	KindSection   Kind = "section"
	KindInstant   Kind = "instant"
	KindParameter Kind = "parameter"
	KindKPV       Kind = "kpv"
)

// #endregion kind

// #region measure
// Measure is one entry of the capability table: a named derivation with the input
// combinations it can operate on.
type Measure struct {
	Name string
	Kind Kind
	// Combinations lists alternative input sets; the first one fully present wins.
	Combinations [][]string
	Derive       func(f *Frame) (Output, error)
}

// CanOperate returns the first input combination available in f.
func (m Measure) CanOperate(f *Frame) ([]string, bool) {
	for _, combo := range m.Combinations {
		ok := true
		for _, name := range combo {
			if !f.Has(name) {
				ok = false
				break
			}
		}
		if ok {
			return combo, true
		}
	}
	return nil, false
}

// #endregion measure

// #region output
// Output is everything a measure can emit. Only the fields matching its Kind are set,
// plus whatever side records it produces.
type Output struct {
	Sections    []signal.Interval
	Instants    []signal.Instant
	Signals     []signal.Signal
	KPVs        []signal.KeyPointValue
	Rejected    []segment.Rejection
	Severities  []exceedance.Severity
	Diagnostics []response.Diagnostic
}

// #endregion output
