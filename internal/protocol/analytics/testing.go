package analytics

import (
	"sort"
	"sync"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// ============================================================================
//                              内存统计源
// ============================================================================

// MemoryStats 内容固定的内存统计源
//
// 用于测试和演示：条目由调用方显式设置，数值在两次设置之间保持不变，
// 因此对同一请求的两次应答字节相同。
type MemoryStats struct {
	mu         sync.RWMutex
	global     *bandwidthif.Stats
	peers      map[string]*bandwidthif.Stats
	protocols  map[string]*bandwidthif.Stats
	internal   map[string]bool
	transports map[string]*bandwidthif.Stats
}

var _ bandwidthif.StatsSource = (*MemoryStats)(nil)

// NewMemoryStats 创建空的内存统计源，全局统计为零
func NewMemoryStats() *MemoryStats {
	return &MemoryStats{
		global:     StaticStats(0, 0, 0, 0),
		peers:      make(map[string]*bandwidthif.Stats),
		protocols:  make(map[string]*bandwidthif.Stats),
		internal:   make(map[string]bool),
		transports: make(map[string]*bandwidthif.Stats),
	}
}

// StaticStats 构造一份完整的统计，三个窗口使用相同的速率
func StaticStats(recv, sent uint64, recvRate, sentRate float64) *bandwidthif.Stats {
	windows := func(rate float64) map[bandwidthif.Window]bandwidthif.MovingAverage {
		m := make(map[bandwidthif.Window]bandwidthif.MovingAverage, 3)
		for _, w := range bandwidthif.Windows() {
			m[w] = bandwidthif.MovingAverageFunc(func() float64 { return rate })
		}
		return m
	}
	return &bandwidthif.Stats{
		Snapshot: map[bandwidthif.Metric]uint64{
			bandwidthif.DataReceived: recv,
			bandwidthif.DataSent:     sent,
		},
		MovingAverages: map[bandwidthif.Metric]map[bandwidthif.Window]bandwidthif.MovingAverage{
			bandwidthif.DataReceived: windows(recvRate),
			bandwidthif.DataSent:     windows(sentRate),
		},
	}
}

// SetGlobal 设置全局统计
func (m *MemoryStats) SetGlobal(s *bandwidthif.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.global = s
}

// SetPeer 设置 Peer 统计，s 为 nil 时删除
func (m *MemoryStats) SetPeer(id string, s *bandwidthif.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set(m.peers, id, s)
}

// SetProtocol 设置协议统计，s 为 nil 时删除
//
// internal 为 true 的协议不出现在 Protocols 的公开列表中。
func (m *MemoryStats) SetProtocol(id string, internal bool, s *bandwidthif.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set(m.protocols, id, s)
	if s == nil || !internal {
		delete(m.internal, id)
		return
	}
	m.internal[id] = true
}

// SetTransport 设置传输统计，s 为 nil 时删除
func (m *MemoryStats) SetTransport(id string, s *bandwidthif.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	set(m.transports, id, s)
}

// Global 实现 StatsSource
func (m *MemoryStats) Global() *bandwidthif.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.global
}

// Peers 实现 StatsSource
func (m *MemoryStats) Peers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keys(m.peers)
}

// ForPeer 实现 StatsSource
func (m *MemoryStats) ForPeer(peer string) (*bandwidthif.Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.peers[peer]
	return s, ok
}

// Protocols 实现 StatsSource
func (m *MemoryStats) Protocols() []bandwidthif.ProtocolKey {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := keys(m.protocols)
	out := make([]bandwidthif.ProtocolKey, len(ids))
	for i, id := range ids {
		out[i] = bandwidthif.ProtocolKey{ID: id, Internal: m.internal[id]}
	}
	return out
}

// ForProtocol 实现 StatsSource
func (m *MemoryStats) ForProtocol(proto string) (*bandwidthif.Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.protocols[proto]
	return s, ok
}

// Transports 实现 StatsSource
func (m *MemoryStats) Transports() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return keys(m.transports)
}

// ForTransport 实现 StatsSource
func (m *MemoryStats) ForTransport(transport string) (*bandwidthif.Stats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.transports[transport]
	return s, ok
}

func set(m map[string]*bandwidthif.Stats, id string, s *bandwidthif.Stats) {
	if s == nil {
		delete(m, id)
		return
	}
	m[id] = s
}

func keys(m map[string]*bandwidthif.Stats) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
