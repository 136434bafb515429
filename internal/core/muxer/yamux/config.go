// Package yamux 提供基于 yamux 的多路复用实现
//
// 每条底层连接对应一个 Muxer，上层协议在其上打开相互独立的子流。
package yamux

import (
	"io"
	"time"

	"github.com/hashicorp/yamux"
)

// Config 多路复用配置
type Config struct {
	// AcceptBacklog 未被接受的入站流上限
	AcceptBacklog int

	// MaxStreamWindowSize 单流接收窗口
	MaxStreamWindowSize uint32

	// EnableKeepAlive 是否启用心跳
	EnableKeepAlive bool

	// KeepAliveInterval 心跳间隔
	KeepAliveInterval time.Duration

	// ConnectionWriteTimeout 连接写超时
	ConnectionWriteTimeout time.Duration

	// StreamOpenTimeout 打开流等待 ACK 的超时
	StreamOpenTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		AcceptBacklog:          256,
		MaxStreamWindowSize:    256 * 1024, // 256 KB
		EnableKeepAlive:        true,
		KeepAliveInterval:      30 * time.Second,
		ConnectionWriteTimeout: 10 * time.Second,
		StreamOpenTimeout:      75 * time.Second,
	}
}

// toYamux 将 Config 转换为 yamux.Config
//
// 以 yamux.DefaultConfig 为基础，未设置（零值）的字段保留 yamux 默认值。
func (c Config) toYamux() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = io.Discard
	cfg.EnableKeepAlive = c.EnableKeepAlive

	if c.AcceptBacklog > 0 {
		cfg.AcceptBacklog = c.AcceptBacklog
	}
	if c.MaxStreamWindowSize > cfg.MaxStreamWindowSize {
		cfg.MaxStreamWindowSize = c.MaxStreamWindowSize
	}
	if c.KeepAliveInterval > 0 {
		cfg.KeepAliveInterval = c.KeepAliveInterval
	}
	if c.ConnectionWriteTimeout > 0 {
		cfg.ConnectionWriteTimeout = c.ConnectionWriteTimeout
	}
	if c.StreamOpenTimeout > 0 {
		cfg.StreamOpenTimeout = c.StreamOpenTimeout
	}
	return cfg
}
