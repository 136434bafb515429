package config

import (
	"errors"
	"time"
)

// AnalyticsConfig 分析协议配置
type AnalyticsConfig struct {
	// Enabled 是否应答远端的分析查询
	// 默认值: true
	Enabled bool `json:"enabled"`

	// MaxMessageSize 单帧最大字节数
	// 默认值: 4 MiB
	MaxMessageSize int `json:"max_message_size"`

	// StreamTimeout 响应方处理单个入站流的截止时间
	// 默认值: 30s
	StreamTimeout Duration `json:"stream_timeout"`

	// RequestTimeout 请求方单次查询的超时时间
	// 默认值: 30s
	RequestTimeout Duration `json:"request_timeout"`
}

// DefaultAnalyticsConfig 返回默认的分析协议配置
func DefaultAnalyticsConfig() AnalyticsConfig {
	return AnalyticsConfig{
		Enabled:        true,
		MaxMessageSize: 4 << 20,
		StreamTimeout:  Duration(30 * time.Second),
		RequestTimeout: Duration(30 * time.Second),
	}
}

// Validate 验证分析协议配置
func (c AnalyticsConfig) Validate() error {
	if c.MaxMessageSize < 0 {
		return errors.New("max_message_size cannot be negative")
	}
	if c.StreamTimeout < 0 || c.RequestTimeout < 0 {
		return errors.New("timeouts cannot be negative")
	}
	return nil
}
