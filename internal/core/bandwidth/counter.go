package bandwidth

import (
	"sort"
	"time"

	"github.com/benbjohnson/clock"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	"github.com/dep2p/go-analytics/pkg/protocol"
)

// ============================================================================
//                              带宽计数器
// ============================================================================

// Counter 带宽计数器实现
//
// 实现 bandwidthif.Counter 接口
type Counter struct {
	config bandwidthif.Config
	clock  clock.Clock

	// 总量计量器
	total *Pair

	// 分维度计量器
	peers      *MeterRegistry
	protocols  *MeterRegistry
	transports *MeterRegistry
}

// 确保实现接口
var _ bandwidthif.Counter = (*Counter)(nil)

// CounterOption 计数器选项
type CounterOption func(*Counter)

// WithClock 设置时钟（测试中使用 clock.NewMock()）
func WithClock(clk clock.Clock) CounterOption {
	return func(c *Counter) {
		c.clock = clk
	}
}

// NewCounter 创建带宽计数器
func NewCounter(config bandwidthif.Config, opts ...CounterOption) *Counter {
	c := &Counter{
		config: config,
		clock:  clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.total = newPair(c.clock)
	c.peers = NewMeterRegistry(c.clock)
	c.protocols = NewMeterRegistry(c.clock)
	c.transports = NewMeterRegistry(c.clock)
	return c
}

// ==================== 记录流量 ====================

// LogSentMessage 记录发送的消息大小
func (c *Counter) LogSentMessage(size int64) {
	if !c.config.Enabled || size <= 0 {
		return
	}
	c.total.Out.Mark(uint64(size))
}

// LogRecvMessage 记录接收的消息大小
func (c *Counter) LogRecvMessage(size int64) {
	if !c.config.Enabled || size <= 0 {
		return
	}
	c.total.In.Mark(uint64(size))
}

// LogSentMessageStream 记录流上发送的消息
func (c *Counter) LogSentMessageStream(size int64, proto, peer, transport string) {
	if !c.config.Enabled || size <= 0 {
		return
	}
	n := uint64(size)

	c.total.Out.Mark(n)
	for _, p := range c.pairsFor(proto, peer, transport) {
		p.Out.Mark(n)
	}
}

// LogRecvMessageStream 记录流上接收的消息
func (c *Counter) LogRecvMessageStream(size int64, proto, peer, transport string) {
	if !c.config.Enabled || size <= 0 {
		return
	}
	n := uint64(size)

	c.total.In.Mark(n)
	for _, p := range c.pairsFor(proto, peer, transport) {
		p.In.Mark(n)
	}
}

// pairsFor 按配置返回需要计入的分维度计量器，空键不计入
func (c *Counter) pairsFor(proto, peer, transport string) []*Pair {
	pairs := make([]*Pair, 0, 3)
	if c.config.TrackByProtocol && proto != "" {
		pairs = append(pairs, c.protocols.Get(proto))
	}
	if c.config.TrackByPeer && peer != "" {
		pairs = append(pairs, c.peers.Get(peer))
	}
	if c.config.TrackByTransport && transport != "" {
		pairs = append(pairs, c.transports.Get(transport))
	}
	return pairs
}

// ==================== 获取统计 ====================

// Global 返回进程级统计
func (c *Counter) Global() *bandwidthif.Stats {
	return c.total.Stats()
}

// Peers 返回所有已知 Peer ID（已排序）
func (c *Counter) Peers() []string {
	return sortedKeys(c.peers)
}

// ForPeer 返回指定 Peer 的统计
func (c *Counter) ForPeer(peer string) (*bandwidthif.Stats, bool) {
	return statsOf(c.peers, peer)
}

// Protocols 返回所有协议键（已排序），协商协议标记为内部键
func (c *Counter) Protocols() []bandwidthif.ProtocolKey {
	keys := sortedKeys(c.protocols)
	out := make([]bandwidthif.ProtocolKey, 0, len(keys))
	for _, k := range keys {
		out = append(out, bandwidthif.ProtocolKey{
			ID:       k,
			Internal: protocol.IsInternal(protocol.ID(k)),
		})
	}
	return out
}

// ForProtocol 返回指定协议的统计
func (c *Counter) ForProtocol(proto string) (*bandwidthif.Stats, bool) {
	return statsOf(c.protocols, proto)
}

// Transports 返回所有已知传输名称（已排序）
func (c *Counter) Transports() []string {
	return sortedKeys(c.transports)
}

// ForTransport 返回指定传输的统计
func (c *Counter) ForTransport(transport string) (*bandwidthif.Stats, bool) {
	return statsOf(c.transports, transport)
}

func statsOf(r *MeterRegistry, key string) (*bandwidthif.Stats, bool) {
	p, ok := r.Load(key)
	if !ok {
		return nil, false
	}
	return p.Stats(), true
}

func sortedKeys(r *MeterRegistry) []string {
	keys := r.Keys()
	sort.Strings(keys)
	return keys
}

// ==================== 管理 ====================

// Reset 重置所有统计
func (c *Counter) Reset() {
	c.total.In.Reset()
	c.total.Out.Reset()

	c.peers.Clear()
	c.protocols.Clear()
	c.transports.Clear()
}

// TrimIdle 清理空闲条目
func (c *Counter) TrimIdle(since time.Time) {
	trimmed := c.peers.TrimIdle(since) +
		c.protocols.TrimIdle(since) +
		c.transports.TrimIdle(since)
	if trimmed > 0 {
		log.Debug("清理空闲统计条目", "count", trimmed)
	}
}

// ==================== 额外方法 ====================

// PeerCount 返回跟踪的 Peer 数量
func (c *Counter) PeerCount() int {
	return c.peers.Count()
}

// ProtocolCount 返回跟踪的协议数量
func (c *Counter) ProtocolCount() int {
	return c.protocols.Count()
}

// TransportCount 返回跟踪的传输数量
func (c *Counter) TransportCount() int {
	return c.transports.Count()
}

// KeyStats 单个键的累计统计
type KeyStats struct {
	Key      string
	TotalIn  uint64
	TotalOut uint64
}

// TotalBytes 返回双向总字节数
func (s KeyStats) TotalBytes() uint64 {
	return s.TotalIn + s.TotalOut
}

// TopPeers 返回流量最大的 N 个 Peer
func (c *Counter) TopPeers(n int) []KeyStats {
	return top(c.peers, n)
}

// TopProtocols 返回流量最大的 N 个协议
func (c *Counter) TopProtocols(n int) []KeyStats {
	return top(c.protocols, n)
}

func top(r *MeterRegistry, n int) []KeyStats {
	var result []KeyStats
	r.ForEach(func(key string, p *Pair) {
		result = append(result, KeyStats{Key: key, TotalIn: p.In.Total(), TotalOut: p.Out.Total()})
	})

	sort.Slice(result, func(i, j int) bool {
		if result[i].TotalBytes() != result[j].TotalBytes() {
			return result[i].TotalBytes() > result[j].TotalBytes()
		}
		return result[i].Key < result[j].Key
	})

	if n < len(result) {
		result = result[:n]
	}
	return result
}
