package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/metrics"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/rpc"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/store"
)

// #region analyze-cmd

type analyzeOptions struct {
	dbPath   string
	remote   string
	parallel int
	jsonOut  bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	var opts analyzeOptions
	cmd := &cobra.Command{
		Use:   "analyze RECORDING.json...",
		Short: "Analyze one or more recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" {
				opts.dbPath = a.cfg.Store.Path
			}
			if opts.parallel <= 0 {
				opts.parallel = a.cfg.Workers
			}
			return runAnalyze(cmd.Context(), a, opts, args, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite results database (default from config)")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "analyze on a tcasctl serve instance at this gRPC address")
	cmd.Flags().IntVar(&opts.parallel, "parallel", 0, "recordings analyzed concurrently (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print reports as JSON")
	return cmd
}

// #endregion analyze-cmd

// #region analyze-run

func runAnalyze(ctx context.Context, a *app, opts analyzeOptions, paths []string, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var analyze analyzeFunc
	if opts.remote != "" {
		client, err := rpc.NewClient(opts.remote)
		if err != nil {
			return err
		}
		defer client.Close()
		analyze = remoteAnalyze(client)
	} else {
		local, err := localAnalyze(a)
		if err != nil {
			return err
		}
		analyze = local
	}

	// 1. Analyze in parallel; outputs keep argument order
	outputs := make([]analyzeOutput, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.parallel)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			r, err := recording.Load(p)
			if err != nil {
				return err
			}
			out, err := analyze(gctx, r)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// 2. Persist sequentially; a remote server persists on its own side
	if opts.dbPath != "" && opts.remote == "" {
		st, err := store.NewStore(opts.dbPath)
		if err != nil {
			return err
		}
		defer st.Close()
		for i := range outputs {
			id, err := st.SaveReport(outputs[i].Report, a.cfg.Analysis)
			if err != nil {
				return err
			}
			outputs[i].RunID = id
			a.logger.Info("run saved", zap.String("run_id", id), zap.String("recording", outputs[i].Report.Recording))
		}
	}

	// 3. Output
	if opts.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		for _, out := range outputs {
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		return nil
	}
	for _, out := range outputs {
		printReport(w, out.Report, out.RunID)
	}
	return nil
}

// analyzeFunc turns one recording into a report, locally or over gRPC.
type analyzeFunc func(ctx context.Context, r *recording.Recording) (analyzeOutput, error)

func localAnalyze(a *app) (analyzeFunc, error) {
	rec, err := metrics.NewRecorder(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	analyzer, err := analysis.NewAnalyzer(a.cfg.Analysis,
		analysis.WithLogger(a.logger), analysis.WithMetrics(rec))
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, r *recording.Recording) (analyzeOutput, error) {
		frame, err := r.Frame()
		if err != nil {
			return analyzeOutput{}, err
		}
		rep, err := analyzer.Analyze(ctx, frame)
		if err != nil {
			return analyzeOutput{}, err
		}
		return analyzeOutput{Report: rep}, nil
	}, nil
}

func remoteAnalyze(client *rpc.Client) analyzeFunc {
	return func(ctx context.Context, r *recording.Recording) (analyzeOutput, error) {
		resp, err := client.Analyze(ctx, r)
		if err != nil {
			return analyzeOutput{}, err
		}
		return analyzeOutput{RunID: resp.RunID, Report: resp.Report}, nil
	}
}

type analyzeOutput struct {
	RunID  string          `json:"run_id,omitempty"`
	Report analysis.Report `json:"report"`
}

func printReport(w io.Writer, rep analysis.Report, runID string) {
	fmt.Fprintf(w, "Recording:  %s (%.4g Hz)\n", rep.Recording, rep.Frequency)
	if runID != "" {
		fmt.Fprintf(w, "Run:        %s\n", runID)
	}
	fmt.Fprintf(w, "Episodes:   %d  (rejected %d)\n", len(rep.Episodes), len(rep.Rejected))
	if len(rep.Episodes) > 0 {
		fmt.Fprintf(w, "  %-4s  %8s  %8s  %10s  %12s\n", "#", "Start", "Stop", "Duration", "Exceedance")
		for n, ep := range rep.Episodes {
			sev := "-"
			for _, s := range rep.Severities {
				if s.Episode == n {
					sev = fmt.Sprintf("%.1f", s.Value)
				}
			}
			fmt.Fprintf(w, "  %-4d  %8d  %8d  %9.1fs  %12s\n",
				n, ep.Start, ep.Stop, ep.Duration(rep.Frequency), sev)
		}
	}
	if len(rep.Diagnostics) > 0 {
		fmt.Fprintf(w, "Diagnostics: %d\n", len(rep.Diagnostics))
	}
	fmt.Fprintln(w)
}

// #endregion analyze-run
