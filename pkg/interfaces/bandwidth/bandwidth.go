// Package bandwidth 定义带宽统计接口
//
// 带宽统计模块负责：
// - 总流量统计（入/出）
// - 按 Peer、Protocol、Transport 分类的流量统计
// - 固定窗口（1/5/15 分钟）的移动平均速率
//
// 分析协议只依赖只读的 StatsSource；写入侧 Counter 由连接层调用。
package bandwidth

import (
	"strconv"
	"time"
)

//go:generate mockgen -destination=mocks/mock_bandwidth.go -package=mocks github.com/dep2p/go-analytics/pkg/interfaces/bandwidth StatsSource

// ============================================================================
//                              统计维度
// ============================================================================

// Metric 统计指标名
type Metric string

const (
	// DataReceived 入站字节
	DataReceived Metric = "dataReceived"

	// DataSent 出站字节
	DataSent Metric = "dataSent"
)

// Window 移动平均窗口
type Window time.Duration

const (
	// Window1m 1 分钟窗口（60000 ms）
	Window1m = Window(time.Minute)

	// Window5m 5 分钟窗口（300000 ms）
	Window5m = Window(5 * time.Minute)

	// Window15m 15 分钟窗口（900000 ms）
	Window15m = Window(15 * time.Minute)
)

// Windows 按固定顺序返回所有移动平均窗口
func Windows() []Window {
	return []Window{Window1m, Window5m, Window15m}
}

// Milliseconds 返回窗口的毫秒数
func (w Window) Milliseconds() int64 {
	return time.Duration(w).Milliseconds()
}

// String 返回窗口的毫秒表示（如 "60000"）
func (w Window) String() string {
	return strconv.FormatInt(w.Milliseconds(), 10)
}

// ============================================================================
//                              统计数据
// ============================================================================

// MovingAverage 移动平均访问器
//
// 每次调用返回当前值，值由统计引擎持续更新。
type MovingAverage interface {
	MovingAverage() float64
}

// MovingAverageFunc 函数适配器
type MovingAverageFunc func() float64

// MovingAverage 实现 MovingAverage 接口
func (f MovingAverageFunc) MovingAverage() float64 {
	return f()
}

// Stats 某个维度（全局、Peer、Protocol、Transport）的原始统计
//
// Snapshot 记录累计字节数；MovingAverages 按指标和窗口提供访问器。
// 缺失的键表示统计引擎未提供该项，由调用方决定如何处理。
type Stats struct {
	// Snapshot 累计计数器
	Snapshot map[Metric]uint64

	// MovingAverages 移动平均访问器
	MovingAverages map[Metric]map[Window]MovingAverage
}

// ProtocolKey 协议统计键
//
// Internal 为 true 的键是统计引擎的内部分桶（例如协议协商阶段的流量），
// 不出现在协议列表中，但仍可按 ID 精确查询。
type ProtocolKey struct {
	ID       string
	Internal bool
}

// ============================================================================
//                              读取接口
// ============================================================================

// StatsSource 只读统计源
//
// 所有方法必须支持并发调用。返回的 Stats 在读取时视为不可变。
type StatsSource interface {
	// Global 返回进程级统计
	Global() *Stats

	// Peers 返回所有已知 Peer ID
	Peers() []string

	// ForPeer 返回指定 Peer 的统计
	ForPeer(peer string) (*Stats, bool)

	// Protocols 返回所有协议键（包括内部键）
	Protocols() []ProtocolKey

	// ForProtocol 返回指定协议的统计
	ForProtocol(proto string) (*Stats, bool)

	// Transports 返回所有已知传输名称
	Transports() []string

	// ForTransport 返回指定传输的统计
	ForTransport(transport string) (*Stats, bool)
}

// ============================================================================
//                              计数器接口
// ============================================================================

// Counter 带宽计数器接口
//
// Counter 跟踪本地节点的入站和出站数据传输，
// 同时作为 StatsSource 对外提供只读视图。
//
// 使用示例:
//
//	counter := bandwidth.NewCounter(cfg)
//
//	// 在 Stream 中记录流量
//	counter.LogSentMessageStream(1024, "/chat/1.0.0", peerID, "tcp")
//
//	// 获取统计
//	stats := counter.Global()
type Counter interface {
	StatsSource

	// LogSentMessage 记录发送的消息大小（只计入全局统计）
	LogSentMessage(size int64)

	// LogRecvMessage 记录接收的消息大小（只计入全局统计）
	LogRecvMessage(size int64)

	// LogSentMessageStream 记录流上发送的消息
	//
	// 参数：
	//   - size: 消息字节数
	//   - proto: 协议 ID
	//   - peer: 远程节点 ID
	//   - transport: 传输名称
	LogSentMessageStream(size int64, proto, peer, transport string)

	// LogRecvMessageStream 记录流上接收的消息
	LogRecvMessageStream(size int64, proto, peer, transport string)

	// Reset 重置所有统计
	Reset()

	// TrimIdle 清理自 since 以来没有活动的条目
	TrimIdle(since time.Time)
}

// ============================================================================
//                              配置
// ============================================================================

// Config 带宽统计配置
type Config struct {
	// Enabled 是否启用带宽统计
	// 默认 true
	Enabled bool

	// TrackByPeer 是否按 Peer 统计
	// 默认 true
	TrackByPeer bool

	// TrackByProtocol 是否按协议统计
	// 默认 true
	TrackByProtocol bool

	// TrackByTransport 是否按传输统计
	// 默认 true
	TrackByTransport bool

	// IdleTimeout 空闲超时
	// 超过此时间没有活动的条目会被清理
	// 默认 1 小时
	IdleTimeout time.Duration

	// TrimInterval 清理间隔
	// 默认 10 分钟
	TrimInterval time.Duration

	// ReportInterval 日志报告间隔，0 表示不报告
	// 默认 0
	ReportInterval time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		TrackByPeer:      true,
		TrackByProtocol:  true,
		TrackByTransport: true,
		IdleTimeout:      time.Hour,
		TrimInterval:     10 * time.Minute,
	}
}
