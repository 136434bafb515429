// Package interfaces 定义公共接口
//
// # 子包
//
//   - bandwidth: 带宽统计（写入侧 Counter、只读侧 StatsSource）
//
// 顶层包定义连接层接口（Host、Stream），由 internal/core/host 实现。
package interfaces
