package analytics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config 分析协议配置
type Config struct {
	// MaxMessageSize 单帧最大字节数，超过时在分配内存前拒绝
	MaxMessageSize int

	// StreamTimeout 响应方处理单个入站流的截止时间
	StreamTimeout time.Duration

	// RequestTimeout 请求方单次查询的超时时间
	RequestTimeout time.Duration

	// Registerer Prometheus 注册器，为 nil 时使用私有注册表
	Registerer prometheus.Registerer
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		MaxMessageSize: 4 << 20, // 4 MiB
		StreamTimeout:  30 * time.Second,
		RequestTimeout: 30 * time.Second,
	}
}

// Option 配置选项函数
type Option func(*Config)

// WithMaxMessageSize 设置单帧最大字节数
func WithMaxMessageSize(n int) Option {
	return func(c *Config) {
		c.MaxMessageSize = n
	}
}

// WithStreamTimeout 设置响应方流处理超时
func WithStreamTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.StreamTimeout = timeout
	}
}

// WithRequestTimeout 设置请求超时
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

// WithRegisterer 设置 Prometheus 注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registerer = reg
	}
}

// WithConfig 整体替换配置中的非零字段
func WithConfig(cfg *Config) Option {
	return func(c *Config) {
		if cfg == nil {
			return
		}
		if cfg.MaxMessageSize > 0 {
			c.MaxMessageSize = cfg.MaxMessageSize
		}
		if cfg.StreamTimeout > 0 {
			c.StreamTimeout = cfg.StreamTimeout
		}
		if cfg.RequestTimeout > 0 {
			c.RequestTimeout = cfg.RequestTimeout
		}
		if cfg.Registerer != nil {
			c.Registerer = cfg.Registerer
		}
	}
}

func applyOptions(opts []Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = DefaultConfig().MaxMessageSize
	}
	return cfg
}
