package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/metrics"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/rpc"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/store"
)

// #region serve-cmd

func newServeCmd(a *app) *cobra.Command {
	var grpcAddr, metricsAddr, dbPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyzer over gRPC with Prometheus metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if grpcAddr != "" {
				a.cfg.Server.GRPCAddr = grpcAddr
			}
			if metricsAddr != "" {
				a.cfg.Server.MetricsAddr = metricsAddr
			}
			if dbPath != "" {
				a.cfg.Store.Path = dbPath
			}
			ctx, stop := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, a)
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC listen address (default from config)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "metrics listen address, empty config value disables (default from config)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite results database (default from config)")
	return cmd
}

// #endregion serve-cmd

// #region serve-run

func runServe(ctx context.Context, a *app) error {
	logger := a.logger

	// 1. Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec, err := metrics.NewRecorder(reg)
	if err != nil {
		return err
	}

	// 2. Analyzer and optional store
	analyzer, err := analysis.NewAnalyzer(a.cfg.Analysis, analysis.WithLogger(logger), analysis.WithMetrics(rec))
	if err != nil {
		return err
	}
	var st *store.Store
	if a.cfg.Store.Path != "" {
		st, err = store.NewStore(a.cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	// 3. gRPC
	lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.cfg.Server.GRPCAddr, err)
	}
	gs := grpc.NewServer()
	rpc.NewServer(analyzer, st, logger).Register(gs)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("grpc listening", zap.String("addr", lis.Addr().String()))
		return gs.Serve(lis)
	})

	// 4. /metrics
	var hs *http.Server
	if a.cfg.Server.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		hs = &http.Server{Addr: a.cfg.Server.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logger.Info("metrics listening", zap.String("addr", hs.Addr))
			if err := hs.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// 5. Shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		gs.GracefulStop()
		if hs != nil {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return hs.Shutdown(sctx)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// #endregion serve-run
