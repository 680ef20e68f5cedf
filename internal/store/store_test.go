package store

import (
	"math"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/exceedance"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/response"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() analysis.Report {
	traj := signal.Signal{
		Name:      response.TrajectoryName,
		Frequency: 1,
		Values:    []float64{0, 0, 480, 960, 0},
		Valid:     []bool{false, true, true, true, false},
	}
	return analysis.Report{
		Recording: "flight-007",
		Frequency: 1,
		Episodes:  []signal.Interval{signal.NewInterval(1, 4), signal.NewInterval(20, 30)},
		Instants:  []signal.Instant{{Index: 1, Name: "TCAS RA Start"}},
		KPVs: []signal.KeyPointValue{
			{Index: 1, Value: 4, Name: "TCAS Combined Control|Up Advisory Corrective"},
			{Index: 1, Value: 12.5, Name: exceedance.Name},
		},
		Severities: []exceedance.Severity{{Episode: 0, Index: 1, Value: 12.5}},
		Trajectory: &traj,
		Diagnostics: []response.Diagnostic{
			{Episode: 1, Index: 25, Kind: response.DiagUnrecognized, Detail: `combined="Spare"`},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := tempDB(t)

	runID, err := s.SaveReport(sampleReport(), map[string]float64{"lag_s": 5})
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	if runID == "" {
		t.Fatal("expected non-empty run ID")
	}

	got, err := s.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Recording != "flight-007" || len(got.Episodes) != 2 {
		t.Fatalf("unexpected run %+v", got.RunRecord)
	}
	if got.EpisodeCount != 2 || got.DiagnosticCount != 1 {
		t.Errorf("expected 2 episodes and 1 diagnostic, got %d and %d", got.EpisodeCount, got.DiagnosticCount)
	}
	if got.ConfigJSON != `{"lag_s":5}` {
		t.Errorf("unexpected config %q", got.ConfigJSON)
	}

	// Severity only on the first episode
	if !got.Episodes[0].Scored || got.Episodes[0].Severity != 12.5 {
		t.Errorf("expected scored episode 0 with 12.5, got %+v", got.Episodes[0])
	}
	if got.Episodes[1].Scored {
		t.Errorf("expected unscored episode 1, got %+v", got.Episodes[1])
	}
	if got.Episodes[1].Interval != signal.NewInterval(20, 30) {
		t.Errorf("unexpected interval %+v", got.Episodes[1].Interval)
	}

	if len(got.KPVs) != 2 || got.KPVs[1].Name != exceedance.Name {
		t.Errorf("unexpected kpvs %+v", got.KPVs)
	}
	if len(got.Instants) != 1 {
		t.Errorf("expected 1 instant, got %d", len(got.Instants))
	}
}

func TestTrajectoryRoundTripKeepsMask(t *testing.T) {
	s := tempDB(t)
	runID, err := s.SaveReport(sampleReport(), nil)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	got, err := s.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Trajectory == nil {
		t.Fatal("expected trajectory")
	}
	want := sampleReport().Trajectory
	for i := range want.Values {
		if got.Trajectory.IsValid(i) != want.IsValid(i) {
			t.Errorf("sample %d: validity %v, want %v", i, got.Trajectory.IsValid(i), want.IsValid(i))
		}
		if want.IsValid(i) && got.Trajectory.Values[i] != want.Values[i] {
			t.Errorf("sample %d: %v, want %v", i, got.Trajectory.Values[i], want.Values[i])
		}
	}
}

func TestRunWithoutTrajectory(t *testing.T) {
	s := tempDB(t)
	rep := sampleReport()
	rep.Trajectory = nil
	rep.Diagnostics = nil

	runID, err := s.SaveReport(rep, nil)
	if err != nil {
		t.Fatalf("SaveReport: %v", err)
	}
	got, err := s.GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Trajectory != nil {
		t.Errorf("expected no trajectory, got %+v", got.Trajectory)
	}
}

func TestListRuns(t *testing.T) {
	s := tempDB(t)
	for i := 0; i < 3; i++ {
		if _, err := s.SaveReport(sampleReport(), nil); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].CreatedAt.Before(runs[1].CreatedAt) {
		t.Error("expected newest first")
	}
}

// A failed diagnostic insert leaves no part of the run behind.
func TestSaveReportIsAtomic(t *testing.T) {
	s := tempDB(t)
	if _, err := s.db.Exec(`DROP TABLE diagnostic_log`); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	runID, err := s.SaveReport(sampleReport(), nil)
	if err == nil {
		t.Fatal("expected error when the diagnostic log is missing")
	}
	if runID != "" {
		t.Errorf("expected empty run ID on failure, got %q", runID)
	}

	for _, table := range []string{"runs", "episodes", "kpvs", "trajectories"} {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != 0 {
			t.Errorf("expected no %s rows after failed save, got %d", table, n)
		}
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)
	if _, err := s.GetRun("missing"); err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestSampleEncoding(t *testing.T) {
	sig := signal.Signal{Values: []float64{1.5, -2, math.Inf(1)}, Valid: []bool{true, false, true}}
	values, valid := decodeSamples(encodeSamples(sig))
	if len(values) != 3 || !valid[0] || valid[1] || !valid[2] {
		t.Fatalf("unexpected decode %v %v", values, valid)
	}
	if values[0] != 1.5 || !math.IsInf(values[2], 1) {
		t.Errorf("unexpected values %v", values)
	}
}
