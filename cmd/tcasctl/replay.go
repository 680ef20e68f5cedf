package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/replay"
)

// #region replay-cmd

func newReplayCmd(a *app) *cobra.Command {
	var export string
	cmd := &cobra.Command{
		Use:   "replay FIXTURE.json|DIR...",
		Short: "Replay fixtures and compare against their expected outputs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if export != "" {
				return runExport(cmd, a, args[0], export)
			}
			return runReplay(cmd, a, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "analyze a recording and write it as a fixture to this path")
	return cmd
}

// #endregion replay-cmd

// #region replay-run

func runReplay(cmd *cobra.Command, a *app, args []string, w io.Writer) error {
	var results []replay.ReplayResult
	for _, arg := range args {
		paths := []string{arg}
		fixtures := map[string]*replay.Fixture{}
		if matches, _ := filepath.Glob(filepath.Join(arg, "*.json")); len(matches) > 0 {
			var err error
			fixtures, paths, err = replay.LoadFixtures(arg)
			if err != nil {
				return err
			}
		} else {
			fx, err := replay.LoadFixture(arg)
			if err != nil {
				return err
			}
			fixtures[arg] = fx
		}

		for _, p := range paths {
			res, err := replay.Replay(cmd.Context(), filepath.Base(p), fixtures[p], analysis.WithLogger(a.logger))
			if err != nil {
				return err
			}
			results = append(results, res)
		}
	}

	for _, r := range results {
		mark := "PASS"
		if !r.Passed {
			mark = "FAIL"
		}
		fmt.Fprintf(w, "%-4s  %s\n", mark, r.Name)
		for _, m := range r.Mismatches {
			fmt.Fprintf(w, "      %s: want %s, got %s\n", m.Field, m.Want, m.Got)
		}
	}

	s := replay.Summarize(results)
	fmt.Fprintf(w, "\n%d fixtures: %d passed, %d failed\n", s.Total, s.Passed, s.Failed)
	if s.Failed > 0 {
		return fmt.Errorf("%d fixture(s) failed", s.Failed)
	}
	return nil
}

// #endregion replay-run

// #region export

// runExport analyzes a recording and stores the report as the fixture's expected output.
func runExport(cmd *cobra.Command, a *app, recPath, out string) error {
	rec, err := recording.Load(recPath)
	if err != nil {
		return err
	}
	frame, err := rec.Frame()
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewAnalyzer(a.cfg.Analysis, analysis.WithLogger(a.logger))
	if err != nil {
		return err
	}
	rep, err := analyzer.Analyze(cmd.Context(), frame)
	if err != nil {
		return err
	}
	fx := replay.NewFixture("exported from "+filepath.Base(recPath), rec, rep, 1e-6)
	cfg := a.cfg.Analysis
	fx.Config = &cfg
	if err := fx.Save(out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d episodes)\n", out, len(rep.Episodes))
	return nil
}

// #endregion export
