package host

import (
	"errors"
	"time"

	"github.com/dep2p/go-analytics/internal/core/muxer/yamux"
)

// Config Host 配置
type Config struct {
	// ID 本地节点 ID，为空时随机生成
	ID string

	// NegotiationTimeout 协议协商超时（默认 10s）
	NegotiationTimeout time.Duration

	// Muxer 多路复用配置
	Muxer yamux.Config
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		NegotiationTimeout: 10 * time.Second,
		Muxer:              yamux.DefaultConfig(),
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.NegotiationTimeout < 0 {
		return errors.New("NegotiationTimeout cannot be negative")
	}
	if c.Muxer.AcceptBacklog < 0 {
		return errors.New("Muxer.AcceptBacklog cannot be negative")
	}
	return nil
}
