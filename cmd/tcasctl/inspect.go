package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/store"
)

// #region inspect-cmd

type inspectOptions struct {
	dbPath  string
	last    int
	run     string
	jsonOut bool
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "List stored runs or show one run in detail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dbPath == "" {
				opts.dbPath = a.cfg.Store.Path
			}
			if opts.dbPath == "" {
				return fmt.Errorf("inspect: no database (use --db or store.path)")
			}
			st, err := store.NewStore(opts.dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if opts.run != "" {
				return runDetailMode(st, opts.run, opts.jsonOut, cmd.OutOrStdout())
			}
			return runListMode(st, opts.last, opts.jsonOut, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "SQLite results database (default from config)")
	cmd.Flags().IntVar(&opts.last, "last", 20, "show N most recent runs")
	cmd.Flags().StringVar(&opts.run, "run", "", "show single run detail")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output as JSON instead of table")
	return cmd
}

// #endregion inspect-cmd

// #region list-mode

type listRow struct {
	RunID       string  `json:"run_id"`
	Recording   string  `json:"recording"`
	Frequency   float64 `json:"frequency"`
	Episodes    int     `json:"episodes"`
	Diagnostics int     `json:"diagnostics"`
	CreatedAt   string  `json:"created_at"`
}

func runListMode(st *store.Store, last int, jsonOut bool, w io.Writer) error {
	runs, err := st.ListRuns(last)
	if err != nil {
		return err
	}
	rows := make([]listRow, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, listRow{
			RunID:       r.RunID,
			Recording:   r.Recording,
			Frequency:   r.Frequency,
			Episodes:    r.EpisodeCount,
			Diagnostics: r.DiagnosticCount,
			CreatedAt:   r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	if jsonOut {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-24s  %6s  %8s  %5s  %s\n", "Run", "Recording", "Hz", "Episodes", "Diag", "Time")
	fmt.Fprintf(w, "%-12s+-%-24s+-%6s+-%8s+-%5s+-%s\n",
		"------------", "------------------------", "------", "--------", "-----", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-12s  %-24s  %6.4g  %8d  %5d  %s\n",
			shortID(r.RunID), r.Recording, r.Frequency, r.Episodes, r.Diagnostics, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	RunID     string            `json:"run_id"`
	Recording string            `json:"recording"`
	Frequency float64           `json:"frequency"`
	CreatedAt string            `json:"created_at"`
	Config    json.RawMessage   `json:"config,omitempty"`
	Episodes  []episodeDetail   `json:"episodes"`
	KPVs      map[string]string `json:"kpvs"`
}

type episodeDetail struct {
	Start      int      `json:"start"`
	Stop       int      `json:"stop"`
	Exceedance *float64 `json:"exceedance,omitempty"`
}

func runDetailMode(st *store.Store, runID string, jsonOut bool, w io.Writer) error {
	d, err := st.GetRun(runID)
	if err != nil {
		return err
	}

	out := detailOutput{
		RunID:     d.RunID,
		Recording: d.Recording,
		Frequency: d.Frequency,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
		Episodes:  make([]episodeDetail, 0, len(d.Episodes)),
		KPVs:      make(map[string]string, len(d.KPVs)),
	}
	if json.Valid([]byte(d.ConfigJSON)) {
		out.Config = json.RawMessage(d.ConfigJSON)
	}
	for _, ep := range d.Episodes {
		ed := episodeDetail{Start: ep.Interval.Start, Stop: ep.Interval.Stop}
		if ep.Scored {
			v := ep.Severity
			ed.Exceedance = &v
		}
		out.Episodes = append(out.Episodes, ed)
	}
	for _, k := range d.KPVs {
		out.KPVs[k.Name] = fmt.Sprintf("%.4g @ %.1f", k.Value, k.Index)
	}

	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:        %s\n", out.RunID)
	fmt.Fprintf(w, "Recording:  %s (%.4g Hz)\n", out.Recording, out.Frequency)
	fmt.Fprintf(w, "Created:    %s\n", out.CreatedAt)
	fmt.Fprintf(w, "\nEpisodes:\n")
	for n, ep := range out.Episodes {
		sev := "-"
		if ep.Exceedance != nil {
			sev = fmt.Sprintf("%.1f", *ep.Exceedance)
		}
		fmt.Fprintf(w, "  %d  [%d, %d)  exceedance %s\n", n, ep.Start, ep.Stop, sev)
	}
	fmt.Fprintf(w, "\nKey point values:\n")
	for _, k := range d.KPVs {
		fmt.Fprintf(w, "  %-44s  %s\n", k.Name, out.KPVs[k.Name])
	}
	if d.Trajectory != nil {
		fmt.Fprintf(w, "\nTrajectory: %d samples\n", d.Trajectory.Len())
	}
	return nil
}

// #endregion detail-mode

// #region helpers

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// #endregion helpers
