package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
)

// #region client-struct
// Client calls a remote Analyzer service.
type Client struct {
	conn *grpc.ClientConn
}

// #endregion client-struct

// #region constructor
// NewClient connects to an analyzer server.
func NewClient(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// #endregion close

// #region analyze
// Analyze sends a recording and decodes the returned report.
func (c *Client) Analyze(ctx context.Context, rec *recording.Recording) (AnalyzeResponse, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return AnalyzeResponse{}, fmt.Errorf("marshal recording: %w", err)
	}
	out := new(wrapperspb.BytesValue)
	if err := c.conn.Invoke(ctx, analyzeMethod, wrapperspb.Bytes(raw), out); err != nil {
		return AnalyzeResponse{}, fmt.Errorf("analyze rpc: %w", err)
	}
	var resp AnalyzeResponse
	if err := json.Unmarshal(out.GetValue(), &resp); err != nil {
		return AnalyzeResponse{}, fmt.Errorf("decode report: %w", err)
	}
	return resp, nil
}

// #endregion analyze
