package config

import (
	"errors"
	"time"
)

// HostConfig 主机配置
type HostConfig struct {
	// ID 本地节点 ID，为空时随机生成
	ID string `json:"id,omitempty"`

	// NegotiationTimeout 协议协商超时
	// 默认值: 10s
	NegotiationTimeout Duration `json:"negotiation_timeout"`

	// Muxer 子流复用配置
	Muxer MuxerConfig `json:"muxer"`
}

// MuxerConfig yamux 配置
type MuxerConfig struct {
	// AcceptBacklog 未被接受的入站流上限
	// 默认值: 256
	AcceptBacklog int `json:"accept_backlog"`

	// MaxStreamWindowSize 单流接收窗口（字节）
	// 默认值: 256 KiB
	MaxStreamWindowSize uint32 `json:"max_stream_window_size"`

	// EnableKeepAlive 是否启用心跳
	// 默认值: true
	EnableKeepAlive bool `json:"enable_keep_alive"`

	// KeepAliveInterval 心跳间隔
	// 默认值: 30s
	KeepAliveInterval Duration `json:"keep_alive_interval"`

	// ConnectionWriteTimeout 连接写超时
	// 默认值: 10s
	ConnectionWriteTimeout Duration `json:"connection_write_timeout"`

	// StreamOpenTimeout 打开流等待确认的超时
	// 默认值: 75s
	StreamOpenTimeout Duration `json:"stream_open_timeout"`
}

// DefaultHostConfig 返回默认主机配置
func DefaultHostConfig() HostConfig {
	return HostConfig{
		NegotiationTimeout: Duration(10 * time.Second),
		Muxer: MuxerConfig{
			AcceptBacklog:          256,
			MaxStreamWindowSize:    256 * 1024,
			EnableKeepAlive:        true,
			KeepAliveInterval:      Duration(30 * time.Second),
			ConnectionWriteTimeout: Duration(10 * time.Second),
			StreamOpenTimeout:      Duration(75 * time.Second),
		},
	}
}

// Validate 验证主机配置
func (c HostConfig) Validate() error {
	if c.NegotiationTimeout < 0 {
		return errors.New("negotiation_timeout cannot be negative")
	}
	if c.Muxer.AcceptBacklog < 0 {
		return errors.New("muxer.accept_backlog cannot be negative")
	}
	if c.Muxer.EnableKeepAlive && c.Muxer.KeepAliveInterval <= 0 {
		return errors.New("muxer.keep_alive_interval must be positive when keep-alive is enabled")
	}
	return nil
}
