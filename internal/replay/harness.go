package replay

import (
	"context"
	"fmt"
	"math"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
)

// #region types

// Mismatch is one difference between the expected and the replayed output.
type Mismatch struct {
	Field string
	Want  string
	Got   string
}

// ReplayResult captures the outcome of replaying one fixture.
type ReplayResult struct {
	Name       string
	Passed     bool
	Mismatches []Mismatch
	Report     analysis.Report
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion types

// #region replay

// Replay analyzes a fixture's recording with the fixture's config (or the defaults)
// and compares the report with the expected outputs.
func Replay(ctx context.Context, name string, fx *Fixture, opts ...analysis.Option) (ReplayResult, error) {
	cfg := analysis.DefaultConfig()
	if fx.Config != nil {
		cfg = *fx.Config
	}
	a, err := analysis.NewAnalyzer(cfg, opts...)
	if err != nil {
		return ReplayResult{}, err
	}

	// 1. Frame
	frame, err := fx.Recording.Frame()
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", name, err)
	}

	// 2. Analyze
	rep, err := a.Analyze(ctx, frame)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay %s: %w", name, err)
	}

	// 3. Compare
	mismatches := Compare(fx.Expected, rep)
	return ReplayResult{
		Name:       name,
		Passed:     len(mismatches) == 0,
		Mismatches: mismatches,
		Report:     rep,
	}, nil
}

// Compare lists every difference between exp and rep.
func Compare(exp Expected, rep analysis.Report) []Mismatch {
	var out []Mismatch
	add := func(field string, want, got interface{}) {
		out = append(out, Mismatch{Field: field, Want: fmt.Sprint(want), Got: fmt.Sprint(got)})
	}
	near := func(a, b float64) bool { return math.Abs(a-b) <= exp.Tolerance }

	// Episodes
	if len(exp.Episodes) != len(rep.Episodes) {
		add("episodes", len(exp.Episodes), len(rep.Episodes))
	} else {
		for i := range exp.Episodes {
			if exp.Episodes[i] != rep.Episodes[i] {
				add(fmt.Sprintf("episodes[%d]", i), exp.Episodes[i], rep.Episodes[i])
			}
		}
	}

	// Severities
	if len(exp.Severities) != len(rep.Severities) {
		add("severities", len(exp.Severities), len(rep.Severities))
	} else {
		for i, want := range exp.Severities {
			got := rep.Severities[i]
			if want.Index != got.Index || !near(want.Value, got.Value) {
				add(fmt.Sprintf("severities[%d]", i), want, ExpectedSeverity{Index: got.Index, Value: got.Value})
			}
		}
	}

	// KPVs (subset)
	for _, want := range exp.KPVs {
		found := false
		for _, got := range rep.KPVsNamed(want.Name) {
			if got.Index == want.Index && near(got.Value, want.Value) {
				found = true
				break
			}
		}
		if !found {
			add("kpv "+want.Name, want, rep.KPVsNamed(want.Name))
		}
	}

	if exp.Diagnostics != len(rep.Diagnostics) {
		add("diagnostics", exp.Diagnostics, len(rep.Diagnostics))
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		if r.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
