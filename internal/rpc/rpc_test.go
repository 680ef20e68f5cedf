package rpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/advisory"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/analysis"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/recording"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/signal"
	"github.com/danielpatrickdp/tcas-ra/go-analyzer/internal/store"
)

// #region helpers

func startServer(t *testing.T, st *store.Store) *Client {
	t.Helper()
	a, err := analysis.NewAnalyzer(analysis.DefaultConfig())
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	g := grpc.NewServer()
	NewServer(a, st, nil).Register(g)
	go func() { _ = g.Serve(lis) }()
	t.Cleanup(g.Stop)

	client, err := NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

// descendRecording has a Descend RA over [30, 45) in a 90 s flight.
func descendRecording() *recording.Recording {
	const n = 90
	f := analysis.NewFrame("flight-rpc")
	ctl := signal.Discrete{Name: advisory.ChannelCombinedControl, Frequency: 1, Codes: make([]int, n),
		Mapping: map[int]string{0: "No Advisory", 5: "Down Advisory Corrective"}}
	down := signal.Discrete{Name: advisory.ChannelDownAdvisory, Frequency: 1, Codes: make([]int, n),
		Mapping: map[int]string{0: "No Down Advisory", 1: "Descend"}}
	for i := 30; i < 45; i++ {
		ctl.Codes[i] = 5
		down.Codes[i] = 1
	}
	f.Discretes[ctl.Name] = ctl
	f.Discretes[down.Name] = down
	f.Discretes[advisory.ChannelUpAdvisory] = signal.Discrete{Name: advisory.ChannelUpAdvisory, Frequency: 1,
		Codes: make([]int, n), Mapping: map[int]string{0: "No Up Advisory"}}
	f.Discretes[advisory.ChannelVerticalControl] = signal.Discrete{Name: advisory.ChannelVerticalControl, Frequency: 1,
		Codes: make([]int, n), Mapping: map[int]string{0: "Crossing"}}
	f.Signals[analysis.VerticalSpeedName] = signal.Signal{Name: analysis.VerticalSpeedName, Frequency: 1, Values: make([]float64, n)}
	f.Instants[analysis.LiftoffName] = []signal.Instant{{Index: 2, Name: analysis.LiftoffName}}
	f.Instants[analysis.TouchdownName] = []signal.Instant{{Index: 88, Name: analysis.TouchdownName}}
	return recording.FromFrame(f)
}

// #endregion helpers

func TestAnalyzeRPC(t *testing.T) {
	client := startServer(t, nil)

	resp, err := client.Analyze(context.Background(), descendRecording())
	require.NoError(t, err)

	assert.Empty(t, resp.RunID)
	assert.Equal(t, "flight-rpc", resp.Report.Recording)
	require.Len(t, resp.Report.Episodes, 1)
	assert.Equal(t, signal.NewInterval(30, 45), resp.Report.Episodes[0])
	require.Len(t, resp.Report.Severities, 1)
	// level flight under a Descend: every sample after the lag deviates upward
	assert.Greater(t, resp.Report.Severities[0].Value, 0.0)
}

func TestAnalyzeRPC_PersistsWhenStoreConfigured(t *testing.T) {
	st, err := store.NewStore(filepath.Join(t.TempDir(), "rpc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	client := startServer(t, st)

	resp, err := client.Analyze(context.Background(), descendRecording())
	require.NoError(t, err)
	require.NotEmpty(t, resp.RunID)

	run, err := st.GetRun(resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, 1, run.EpisodeCount)
	assert.NotNil(t, run.Trajectory)
}

func TestAnalyzeRPC_InvalidRecording(t *testing.T) {
	client := startServer(t, nil)

	rec := descendRecording()
	rec.Signals[0].Values = rec.Signals[0].Values[:10]

	_, err := client.Analyze(context.Background(), rec)
	require.Error(t, err)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
