package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture: a recording and
// the outputs it must reproduce.
type Fixture struct {
	Description string              `json:"description"`
	Config      *analysis.Config    `json:"config,omitempty"` // nil runs the defaults
	Recording   recording.Recording `json:"recording"`
	Expected    Expected            `json:"expected"`
}

// Expected lists the reference outputs. KPVs are matched as a subset; episodes and
// severities must match exactly in count and order.
type Expected struct {
	Episodes    []signal.Interval      `json:"episodes"`
	Severities  []ExpectedSeverity     `json:"severities"`
	KPVs        []signal.KeyPointValue `json:"kpvs,omitempty"`
	Diagnostics int                    `json:"diagnostics"`
	Tolerance   float64                `json:"tolerance"`
}

// ExpectedSeverity is one reference exceedance value.
type ExpectedSeverity struct {
	Index float64 `json:"index"`
	Value float64 `json:"value"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file. The embedded recording is
// validated against the recording schema.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var raw struct {
		Fixture
		Recording json.RawMessage `json:"recording"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	rec, err := recording.Parse(raw.Recording)
	if err != nil {
		return nil, fmt.Errorf("fixture %s recording: %w", path, err)
	}
	f := raw.Fixture
	f.Recording = *rec
	return &f, nil
}

// LoadFixtures reads every *.json fixture in dir, sorted by file name.
func LoadFixtures(dir string) (map[string]*Fixture, []string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, nil, fmt.Errorf("glob fixtures: %w", err)
	}
	sort.Strings(paths)
	out := make(map[string]*Fixture, len(paths))
	for _, p := range paths {
		fx, err := LoadFixture(p)
		if err != nil {
			return nil, nil, err
		}
		out[p] = fx
	}
	return out, paths, nil
}

// #endregion fixture-loader

// #region fixture-export

// NewFixture captures a report as the expected output for rec.
func NewFixture(description string, rec *recording.Recording, rep analysis.Report, tolerance float64) *Fixture {
	exp := Expected{
		Episodes:    rep.Episodes,
		Severities:  make([]ExpectedSeverity, 0, len(rep.Severities)),
		KPVs:        rep.KPVs,
		Diagnostics: len(rep.Diagnostics),
		Tolerance:   tolerance,
	}
	for _, s := range rep.Severities {
		exp.Severities = append(exp.Severities, ExpectedSeverity{Index: s.Index, Value: s.Value})
	}
	return &Fixture{Description: description, Recording: *rec, Expected: exp}
}

// Save writes the fixture as indented JSON.
func (f *Fixture) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", path, err)
	}
	return nil
}

// #endregion fixture-export
