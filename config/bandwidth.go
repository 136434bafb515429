package config

import (
	"errors"
	"time"
)

// BandwidthConfig 带宽统计配置
//
// 配置带宽统计功能，支持按 Peer、Protocol 和 Transport 分类统计流量。
type BandwidthConfig struct {
	// Enabled 是否启用带宽统计
	// 默认值: true
	Enabled bool `json:"enabled"`

	// EnablePerPeer 是否启用按 Peer 统计
	// 默认值: true
	EnablePerPeer bool `json:"enable_per_peer"`

	// EnablePerProtocol 是否启用按 Protocol 统计
	// 默认值: true
	EnablePerProtocol bool `json:"enable_per_protocol"`

	// EnablePerTransport 是否启用按 Transport 统计
	// 默认值: true
	EnablePerTransport bool `json:"enable_per_transport"`

	// TrimInterval 清理空闲条目的间隔
	// 默认值: 10m
	TrimInterval Duration `json:"trim_interval"`

	// IdleTimeout 空闲超时，超过此时间的条目会被清理
	// 默认值: 1h
	IdleTimeout Duration `json:"idle_timeout"`

	// ReportInterval 日志报告间隔，0 表示不报告
	ReportInterval Duration `json:"report_interval,omitempty"`
}

// DefaultBandwidthConfig 返回默认的带宽统计配置
func DefaultBandwidthConfig() BandwidthConfig {
	return BandwidthConfig{
		Enabled:            true,
		EnablePerPeer:      true,
		EnablePerProtocol:  true,
		EnablePerTransport: true,
		TrimInterval:       Duration(10 * time.Minute),
		IdleTimeout:        Duration(time.Hour),
	}
}

// Validate 验证带宽统计配置
func (c BandwidthConfig) Validate() error {
	if c.TrimInterval < 0 || c.IdleTimeout < 0 || c.ReportInterval < 0 {
		return errors.New("intervals cannot be negative")
	}
	return nil
}
