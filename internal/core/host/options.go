package host

import (
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// Option Host 构造选项类型
type Option func(*Host) error

// WithCounter 设置带宽计数器，所有子流的流量都会计入
func WithCounter(counter bandwidthif.Counter) Option {
	return func(h *Host) error {
		h.counter = counter
		return nil
	}
}

// WithID 设置本地节点 ID
func WithID(id string) Option {
	return func(h *Host) error {
		h.config.ID = id
		return nil
	}
}

// WithConfig 设置配置
func WithConfig(cfg *Config) Option {
	return func(h *Host) error {
		if cfg == nil {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c := *cfg
		if c.ID == "" {
			c.ID = h.config.ID
		}
		h.config = &c
		return nil
	}
}
