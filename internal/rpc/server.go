package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/store"
)

// AnalyzeResponse is the JSON payload returned by Analyze.
type AnalyzeResponse struct {
	RunID  string          `json:"run_id,omitempty"`
	Report analysis.Report `json:"report"`
}

// #region server
// Server analyzes recordings on behalf of remote callers.
type Server struct {
	analyzer *analysis.Analyzer
	store    *store.Store
	logger   *zap.Logger
}

// NewServer creates a server. st may be nil to skip persistence; logger may be nil.
func NewServer(analyzer *analysis.Analyzer, st *store.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{analyzer: analyzer, store: st, logger: logger}
}

// Register attaches the server to g.
func (s *Server) Register(g *grpc.Server) {
	g.RegisterService(&ServiceDesc, s)
}

// #endregion server

// #region analyze
// Analyze decodes a recording, analyzes it and returns the report as JSON.
// Malformed recordings are InvalidArgument.
func (s *Server) Analyze(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	rec, err := recording.Parse(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	frame, err := rec.Frame()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	rep, err := s.analyzer.Analyze(ctx, frame)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := AnalyzeResponse{Report: rep}
	if s.store != nil {
		if resp.RunID, err = s.store.SaveReport(rep, nil); err != nil {
			s.logger.Error("save report", zap.String("recording", rep.Recording), zap.Error(err))
			return nil, status.Error(codes.Internal, err.Error())
		}
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	s.logger.Info("analyze rpc", zap.String("recording", rep.Recording), zap.Int("episodes", len(rep.Episodes)))
	return wrapperspb.Bytes(raw), nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, signal.ErrMalformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// #endregion analyze
