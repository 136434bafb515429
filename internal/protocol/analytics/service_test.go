package analytics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

// fakeStreamHost 只记录处理器注册的 StreamHost
type fakeStreamHost struct {
	mu       sync.Mutex
	handlers map[string]pkgif.StreamHandler
}

func newFakeStreamHost() *fakeStreamHost {
	return &fakeStreamHost{handlers: make(map[string]pkgif.StreamHandler)}
}

func (h *fakeStreamHost) ID() string { return "fake" }

func (h *fakeStreamHost) SetStreamHandler(id string, handler pkgif.StreamHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handlers[id] = handler
}

func (h *fakeStreamHost) RemoveStreamHandler(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.handlers, id)
}

func (h *fakeStreamHost) has(id string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.handlers[id]
	return ok
}

func newTestStats() *MemoryStats {
	stats := NewMemoryStats()
	stats.SetGlobal(StaticStats(1000, 2000, 10, 20))
	stats.SetPeer("peerX", StaticStats(10, 20, 1, 2))
	stats.SetPeer("peerY", StaticStats(30, 40, 3, 4))
	stats.SetProtocol("/chat/1.0.0", false, StaticStats(5, 6, 0.5, 0.6))
	stats.SetProtocol(string(protocol.Multistream), true, StaticStats(7, 8, 0, 0))
	stats.SetTransport("tcp", StaticStats(50, 60, 5, 6))
	stats.SetTransport("memory", StaticStats(70, 80, 7, 8))
	return stats
}

func TestNew_NilStats(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilStats)
}

func TestService_Lifecycle(t *testing.T) {
	svc, err := New(newTestStats())
	require.NoError(t, err)

	ctx := context.Background()
	assert.ErrorIs(t, svc.Start(ctx), ErrNotMounted)
	assert.ErrorIs(t, svc.Stop(ctx), ErrNotStarted)
	assert.ErrorIs(t, svc.Mount(nil), ErrNilHost)

	host := newFakeStreamHost()
	require.NoError(t, svc.Mount(host))

	require.NoError(t, svc.Start(ctx))
	assert.True(t, svc.Started())
	assert.True(t, host.has(string(protocol.Analytics)))
	assert.ErrorIs(t, svc.Start(ctx), ErrAlreadyStarted)
	assert.ErrorIs(t, svc.Mount(host), ErrAlreadyStarted)

	require.NoError(t, svc.Stop(ctx))
	assert.False(t, svc.Started())
	assert.False(t, host.has(string(protocol.Analytics)))

	// 可以重新启动
	require.NoError(t, svc.Start(ctx))
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
	assert.False(t, host.has(string(protocol.Analytics)))
}

func TestService_RegistersWireProtocolID(t *testing.T) {
	svc, err := New(newTestStats())
	require.NoError(t, err)

	host := newFakeStreamHost()
	require.NoError(t, svc.Mount(host))
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Close()

	assert.True(t, host.has("/libp2p/analytics/1.0.0"))
	assert.Len(t, host.handlers, 1)
}

func TestService_RespondKnownPeer(t *testing.T) {
	stats := newTestStats()
	svc, err := New(stats)
	require.NoError(t, err)

	resp := svc.Respond(&pb.Request{Queries: []*pb.Query{pb.NewQuery(pb.Type_PEER, "peerX")}})
	require.Equal(t, pb.Status_OK, resp.GetCode())

	peerX, _ := stats.ForPeer("peerX")
	want, err := pb.EncodeResults([]pb.Result{pb.SingleResult(mustNormalize(t, peerX))})
	require.NoError(t, err)
	assert.Equal(t, want, resp.GetResponse())

	results, err := pb.DecodeResults(resp.GetResponse())
	require.NoError(t, err)
	require.Len(t, results, 1)
	view, err := results[0].AsView()
	require.NoError(t, err)
	assert.Equal(t, "10", view.Snapshot.DataReceived)
	assert.Equal(t, "20", view.Snapshot.DataSent)
}

func TestService_RespondUnknownPeer(t *testing.T) {
	svc, err := New(newTestStats())
	require.NoError(t, err)

	resp := svc.Respond(&pb.Request{Queries: []*pb.Query{pb.NewQuery(pb.Type_PEER, "unknownPeer")}})
	assert.Equal(t, pb.Status_E_NO_DATA_FOR_TYPE, resp.GetCode())
	assert.Nil(t, resp.Response)
}

func TestService_RespondInternalError(t *testing.T) {
	stats := newTestStats()
	broken := StaticStats(1, 1, 0, 0)
	delete(broken.MovingAverages[bandwidthif.DataReceived], bandwidthif.Window5m)
	stats.SetTransport("broken", broken)

	svc, err := New(stats)
	require.NoError(t, err)

	// 带过滤条件
	resp := svc.Respond(&pb.Request{Queries: []*pb.Query{pb.NewQuery(pb.Type_TRANSPORT, "broken")}})
	assert.Equal(t, pb.Status_E_INTERNAL_ERR, resp.GetCode())
	assert.Nil(t, resp.Response)

	// 批量查询同样整体失败，不返回部分结果
	resp = svc.Respond(&pb.Request{Queries: []*pb.Query{pb.NewQuery(pb.Type_TRANSPORT, "")}})
	assert.Equal(t, pb.Status_E_INTERNAL_ERR, resp.GetCode())
	assert.Nil(t, resp.Response)
}

func TestService_RespondAll(t *testing.T) {
	svc, err := New(newTestStats())
	require.NoError(t, err)

	resp := svc.Respond(&pb.Request{Queries: []*pb.Query{
		pb.NewQuery(pb.Type_PEER, "unknownPeer"),
		pb.NewQuery(pb.Type_ALL, ""),
	}})
	require.Equal(t, pb.Status_OK, resp.GetCode())

	results, err := pb.DecodeResults(resp.GetResponse())
	require.NoError(t, err)
	require.Len(t, results, 4)

	peers, err := results[0].AsMap()
	require.NoError(t, err)
	assert.Len(t, peers, 2)

	protos, err := results[1].AsMap()
	require.NoError(t, err)
	assert.Contains(t, protos, "/chat/1.0.0")
	assert.NotContains(t, protos, string(protocol.Multistream))
	assert.NotContains(t, protos, "/multistream/1.0.0")

	transports, err := results[2].AsMap()
	require.NoError(t, err)
	assert.Len(t, transports, 2)

	global, err := results[3].AsView()
	require.NoError(t, err)
	assert.Equal(t, "1000", global.Snapshot.DataReceived)

	// 相同统计下两次应答字节相同
	again := svc.Respond(&pb.Request{})
	assert.Equal(t, resp.GetResponse(), again.GetResponse())
}

func TestService_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := New(newTestStats(), WithRegisterer(reg))
	require.NoError(t, err)
	b, err := New(newTestStats(), WithRegisterer(reg))
	require.NoError(t, err)

	a.metrics.decodeErrors.Inc()
	b.metrics.decodeErrors.Inc()
	assert.Equal(t, 2.0, counterValue(t, reg, "analytics_decode_errors_total"))
}

func TestModule(t *testing.T) {
	stats := newTestStats()
	host := newFakeStreamHost()

	var svc *Service
	app := fxtest.New(t,
		fx.Provide(
			func() bandwidthif.StatsSource { return stats },
			func() pkgif.StreamHost { return host },
			func() *Config { return &Config{StreamTimeout: 5 * time.Second} },
		),
		Module(),
		fx.Populate(&svc),
	)

	app.RequireStart()
	assert.True(t, svc.Started())
	assert.True(t, host.has(string(protocol.Analytics)))
	assert.Equal(t, 5*time.Second, svc.config.StreamTimeout)

	app.RequireStop()
	assert.False(t, host.has(string(protocol.Analytics)))
}

// counterValue 从注册表读取无标签计数器或所有标签之和
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
