// Package bandwidth 提供带宽统计模块的实现
//
// Counter 按全局、Peer、协议、传输四个维度累计字节数，
// 并为每个方向维护 1/5/15 分钟三个窗口的指数加权移动平均速率（bytes/sec）。
package bandwidth

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// ============================================================================
//                              流量计量器
// ============================================================================

// tickInterval 是移动平均的最小更新间隔
const tickInterval = time.Second

// Meter 单方向流量计量器
//
// 累计值使用原子操作；移动平均在写入或读取时按经过的时间惰性衰减。
// 所有操作都是线程安全的。
type Meter struct {
	clock clock.Clock

	// 累计字节数
	total atomic.Uint64

	mu       sync.Mutex
	pending  uint64    // 上次 tick 以来的字节数
	lastTick time.Time // 上次 tick 时间
	averages [3]float64

	// 上次活动时间（UnixNano）
	lastActive atomic.Int64
}

// NewMeter 创建新的计量器，clk 为 nil 时使用系统时钟
func NewMeter(clk clock.Clock) *Meter {
	if clk == nil {
		clk = clock.New()
	}
	now := clk.Now()
	m := &Meter{
		clock:    clk,
		lastTick: now,
	}
	m.lastActive.Store(now.UnixNano())
	return m
}

// Mark 记录字节数
func (m *Meter) Mark(n uint64) {
	now := m.clock.Now()
	m.total.Add(n)

	m.mu.Lock()
	m.advance(now)
	m.pending += n
	m.mu.Unlock()

	m.lastActive.Store(now.UnixNano())
}

// advance 将移动平均推进到 now，调用方必须持有 mu
//
// 经过 dt 的窗口 w 衰减因子为 exp(-dt/w)，期间的瞬时速率为 pending/dt。
func (m *Meter) advance(now time.Time) {
	elapsed := now.Sub(m.lastTick)
	if elapsed < tickInterval {
		return
	}

	instant := float64(m.pending) / elapsed.Seconds()
	for i, w := range bandwidthif.Windows() {
		decay := math.Exp(-float64(elapsed) / float64(w))
		m.averages[i] = m.averages[i]*decay + instant*(1-decay)
	}

	m.pending = 0
	m.lastTick = now
}

// Total 获取累计字节数
func (m *Meter) Total() uint64 {
	return m.total.Load()
}

// Average 获取指定窗口的移动平均速率
//
// 窗口不是 1/5/15 分钟之一时返回 false。
func (m *Meter) Average(w bandwidthif.Window) (float64, bool) {
	idx := windowIndex(w)
	if idx < 0 {
		return 0, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.advance(m.clock.Now())
	return m.averages[idx], true
}

// LastActive 获取上次活动时间
func (m *Meter) LastActive() time.Time {
	return time.Unix(0, m.lastActive.Load())
}

// Snapshot 获取统计快照
func (m *Meter) Snapshot() MeterSnapshot {
	m.mu.Lock()
	m.advance(m.clock.Now())
	averages := m.averages
	m.mu.Unlock()

	return MeterSnapshot{
		Total:  m.total.Load(),
		Rate1:  averages[0],
		Rate5:  averages[1],
		Rate15: averages[2],
	}
}

// Reset 重置计量器
func (m *Meter) Reset() {
	now := m.clock.Now()
	m.total.Store(0)

	m.mu.Lock()
	m.pending = 0
	m.averages = [3]float64{}
	m.lastTick = now
	m.mu.Unlock()

	m.lastActive.Store(now.UnixNano())
}

// MeterSnapshot 计量器快照
type MeterSnapshot struct {
	// Total 累计字节数
	Total uint64

	// Rate1/Rate5/Rate15 1/5/15 分钟窗口的速率 (bytes/sec)
	Rate1  float64
	Rate5  float64
	Rate15 float64
}

func windowIndex(w bandwidthif.Window) int {
	for i, known := range bandwidthif.Windows() {
		if known == w {
			return i
		}
	}
	return -1
}

// ============================================================================
//                              双向计量器
// ============================================================================

// Pair 一个统计键上的入站/出站计量器
type Pair struct {
	In  *Meter
	Out *Meter
}

func newPair(clk clock.Clock) *Pair {
	return &Pair{In: NewMeter(clk), Out: NewMeter(clk)}
}

// LastActive 返回两个方向中较晚的活动时间
func (p *Pair) LastActive() time.Time {
	in, out := p.In.LastActive(), p.Out.LastActive()
	if out.After(in) {
		return out
	}
	return in
}

// Stats 返回该键的统计视图
//
// 移动平均访问器直接读取计量器，每次调用得到当前值。
func (p *Pair) Stats() *bandwidthif.Stats {
	return &bandwidthif.Stats{
		Snapshot: map[bandwidthif.Metric]uint64{
			bandwidthif.DataReceived: p.In.Total(),
			bandwidthif.DataSent:     p.Out.Total(),
		},
		MovingAverages: map[bandwidthif.Metric]map[bandwidthif.Window]bandwidthif.MovingAverage{
			bandwidthif.DataReceived: averagesOf(p.In),
			bandwidthif.DataSent:     averagesOf(p.Out),
		},
	}
}

func averagesOf(m *Meter) map[bandwidthif.Window]bandwidthif.MovingAverage {
	out := make(map[bandwidthif.Window]bandwidthif.MovingAverage, 3)
	for _, w := range bandwidthif.Windows() {
		w := w
		out[w] = bandwidthif.MovingAverageFunc(func() float64 {
			v, _ := m.Average(w)
			return v
		})
	}
	return out
}

// ============================================================================
//                              计量器注册表
// ============================================================================

// MeterRegistry 按键管理动态创建的双向计量器
type MeterRegistry struct {
	clock  clock.Clock
	meters sync.Map // map[string]*Pair
}

// NewMeterRegistry 创建注册表
func NewMeterRegistry(clk clock.Clock) *MeterRegistry {
	if clk == nil {
		clk = clock.New()
	}
	return &MeterRegistry{clock: clk}
}

// Get 获取或创建计量器
func (r *MeterRegistry) Get(key string) *Pair {
	if p, ok := r.meters.Load(key); ok {
		return p.(*Pair)
	}
	actual, _ := r.meters.LoadOrStore(key, newPair(r.clock))
	return actual.(*Pair)
}

// Load 加载已存在的计量器，不创建新的
func (r *MeterRegistry) Load(key string) (*Pair, bool) {
	p, ok := r.meters.Load(key)
	if !ok {
		return nil, false
	}
	return p.(*Pair), true
}

// Keys 返回所有键
func (r *MeterRegistry) Keys() []string {
	var keys []string
	r.meters.Range(func(k, _ any) bool {
		keys = append(keys, k.(string))
		return true
	})
	return keys
}

// ForEach 遍历所有计量器
func (r *MeterRegistry) ForEach(fn func(key string, p *Pair)) {
	r.meters.Range(func(k, v any) bool {
		fn(k.(string), v.(*Pair))
		return true
	})
}

// Clear 清除所有计量器
func (r *MeterRegistry) Clear() {
	r.meters.Range(func(k, _ any) bool {
		r.meters.Delete(k)
		return true
	})
}

// TrimIdle 清理自 since 以来无活动的计量器，返回清理数量
func (r *MeterRegistry) TrimIdle(since time.Time) int {
	trimmed := 0
	r.meters.Range(func(k, v any) bool {
		if v.(*Pair).LastActive().Before(since) {
			r.meters.Delete(k)
			trimmed++
		}
		return true
	})
	return trimmed
}

// Count 返回计量器数量
func (r *MeterRegistry) Count() int {
	count := 0
	r.meters.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
