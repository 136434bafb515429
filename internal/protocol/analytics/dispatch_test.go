package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	"github.com/dep2p/go-analytics/pkg/interfaces/bandwidth/mocks"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

func strPtr(s string) *string { return &s }

func mustNormalize(t *testing.T, s *bandwidthif.Stats) *pb.StatsView {
	t.Helper()
	v, err := Normalize(s)
	require.NoError(t, err)
	return v
}

func TestDispatcher_ResolvePeer(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	peerX := StaticStats(10, 20, 1, 2)
	src.EXPECT().ForPeer("peerX").Return(peerX, true)

	r, err := d.Resolve(pb.Type_PEER, strPtr("peerX"))
	require.NoError(t, err)
	assert.False(t, r.IsMap())
	assert.Equal(t, mustNormalize(t, peerX), r.View)
}

func TestDispatcher_ResolveUnknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	src.EXPECT().ForPeer("unknownPeer").Return(nil, false)
	src.EXPECT().ForProtocol("/nope/1.0.0").Return(nil, false)
	src.EXPECT().ForTransport("carrier-pigeon").Return(nil, false)

	_, err := d.Resolve(pb.Type_PEER, strPtr("unknownPeer"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Resolve(pb.Type_PROTO, strPtr("/nope/1.0.0"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = d.Resolve(pb.Type_TRANSPORT, strPtr("carrier-pigeon"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDispatcher_ResolveAllTransports(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	tcp := StaticStats(1, 1, 0, 0)
	quic := StaticStats(2, 2, 0, 0)
	src.EXPECT().Transports().Return([]string{"quic", "tcp"})
	src.EXPECT().ForTransport("quic").Return(quic, true)
	src.EXPECT().ForTransport("tcp").Return(tcp, true)

	// 空过滤条件与缺省相同
	r, err := d.Resolve(pb.Type_TRANSPORT, strPtr(""))
	require.NoError(t, err)
	assert.True(t, r.IsMap())
	assert.Equal(t, map[string]*pb.StatsView{
		"quic": mustNormalize(t, quic),
		"tcp":  mustNormalize(t, tcp),
	}, r.Views)
}

func TestDispatcher_ResolveAllProtocolsSkipsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	chat := StaticStats(5, 5, 0, 0)
	mss := StaticStats(7, 7, 0, 0)
	src.EXPECT().Protocols().Return([]bandwidthif.ProtocolKey{
		{ID: "/chat/1.0.0"},
		{ID: "/multistream/1.0.0", Internal: true},
	})
	src.EXPECT().ForProtocol("/chat/1.0.0").Return(chat, true)

	r, err := d.Resolve(pb.Type_PROTO, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]*pb.StatsView{"/chat/1.0.0": mustNormalize(t, chat)}, r.Views)

	// 内部键仍可精确查询
	src.EXPECT().ForProtocol("/multistream/1.0.0").Return(mss, true)
	r, err = d.Resolve(pb.Type_PROTO, strPtr("/multistream/1.0.0"))
	require.NoError(t, err)
	assert.Equal(t, mustNormalize(t, mss), r.View)
}

func TestDispatcher_ResolveSkipsVanishedEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	src.EXPECT().Peers().Return([]string{"gone", "here"})
	src.EXPECT().ForPeer("gone").Return(nil, false)
	src.EXPECT().ForPeer("here").Return(StaticStats(1, 2, 0, 0), true)

	r, err := d.Resolve(pb.Type_PEER, nil)
	require.NoError(t, err)
	assert.Len(t, r.Views, 1)
	assert.Contains(t, r.Views, "here")
}

func TestDispatcher_ResolveEmpty(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	src.EXPECT().Peers().Return(nil)

	r, err := d.Resolve(pb.Type_PEER, nil)
	require.NoError(t, err)
	assert.True(t, r.IsMap())
	assert.Empty(t, r.Views)

	data, err := pb.EncodeResults([]pb.Result{r})
	require.NoError(t, err)
	assert.Equal(t, "[{}]", string(data))
}

func TestDispatcher_ResolveInvalidType(t *testing.T) {
	d := NewDispatcher(mocks.NewMockStatsSource(gomock.NewController(t)))

	_, err := d.Resolve(pb.Type_ALL, nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = d.Resolve(pb.Type(42), nil)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestDispatcher_ResolveInternalError(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	broken := StaticStats(1, 1, 0, 0)
	delete(broken.Snapshot, bandwidthif.DataSent)
	src.EXPECT().ForTransport("tcp").Return(broken, true)

	_, err := d.Resolve(pb.Type_TRANSPORT, strPtr("tcp"))
	assert.ErrorIs(t, err, ErrInternal)
}

// expectAll 为一次 ALL 展开设置预期
func expectAll(src *mocks.MockStatsSource, global *bandwidthif.Stats) {
	src.EXPECT().Peers().Return([]string{"peerB"})
	src.EXPECT().ForPeer("peerB").Return(StaticStats(1, 2, 0, 0), true)
	src.EXPECT().Protocols().Return([]bandwidthif.ProtocolKey{{ID: "/chat/1.0.0"}})
	src.EXPECT().ForProtocol("/chat/1.0.0").Return(StaticStats(3, 4, 0, 0), true)
	src.EXPECT().Transports().Return([]string{"tcp"})
	src.EXPECT().ForTransport("tcp").Return(StaticStats(5, 6, 0, 0), true)
	src.EXPECT().Global().Return(global)
}

func TestDispatcher_DispatchAll(t *testing.T) {
	tests := []struct {
		name string
		req  *pb.Request
	}{
		{"nil 请求", nil},
		{"空请求", &pb.Request{}},
		{"显式 ALL", &pb.Request{Queries: []*pb.Query{pb.NewQuery(pb.Type_ALL, "")}}},
		{"缺省类型", &pb.Request{Queries: []*pb.Query{{}}}},
		{"ALL 覆盖其他查询", &pb.Request{Queries: []*pb.Query{
			pb.NewQuery(pb.Type_PEER, "unknownPeer"),
			pb.NewQuery(pb.Type_ALL, ""),
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			src := mocks.NewMockStatsSource(ctrl)
			d := NewDispatcher(src)

			global := StaticStats(100, 200, 1, 2)
			expectAll(src, global)

			results, err := d.Dispatch(tt.req)
			require.NoError(t, err)
			require.Len(t, results, 4)

			assert.Contains(t, results[0].Views, "peerB")
			assert.Contains(t, results[1].Views, "/chat/1.0.0")
			assert.Contains(t, results[2].Views, "tcp")
			assert.False(t, results[3].IsMap())
			assert.Equal(t, mustNormalize(t, global), results[3].View)
		})
	}
}

func TestDispatcher_DispatchPositional(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	peer := StaticStats(1, 1, 0, 0)
	tcp := StaticStats(2, 2, 0, 0)
	gomock.InOrder(
		src.EXPECT().ForTransport("tcp").Return(tcp, true),
		src.EXPECT().ForPeer("peerX").Return(peer, true),
	)

	results, err := d.Dispatch(&pb.Request{Queries: []*pb.Query{
		pb.NewQuery(pb.Type_TRANSPORT, "tcp"),
		pb.NewQuery(pb.Type_PEER, "peerX"),
	}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, mustNormalize(t, tcp), results[0].View)
	assert.Equal(t, mustNormalize(t, peer), results[1].View)
}

func TestDispatcher_DispatchFirstErrorAborts(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := mocks.NewMockStatsSource(ctrl)
	d := NewDispatcher(src)

	src.EXPECT().ForPeer("unknownPeer").Return(nil, false)

	results, err := d.Dispatch(&pb.Request{Queries: []*pb.Query{
		pb.NewQuery(pb.Type_PEER, "unknownPeer"),
		pb.NewQuery(pb.Type_TRANSPORT, "tcp"),
	}})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, results)
}
