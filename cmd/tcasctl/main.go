package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/config"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/logging"
)

// #region main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region root

// app carries the state shared by every subcommand.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tcasctl",
		Short: "Analyze TCAS resolution advisories in flight recordings",
		Long: `tcasctl finds TCAS resolution advisory episodes in flight recordings, simulates
the standard pilot response, and scores how far the flown vertical speed
departed from it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")

	root.AddCommand(
		newAnalyzeCmd(a),
		newReplayCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads the configuration (file, then TCAS_* environment) and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// #endregion root
