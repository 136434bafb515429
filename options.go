package analytics

import (
	"errors"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-analytics/config"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	config     *config.Config
	clock      clock.Clock
	registerer prometheus.Registerer
	fxOptions  []fx.Option
}

func newOptions() *options {
	return &options{config: config.NewConfig()}
}

// WithConfig 使用完整配置
//
// 配置会被复制，之后对 cfg 的修改不影响节点。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config is nil")
		}
		o.config = cfg.Clone()
		return nil
	}
}

// WithID 设置本地节点 ID
func WithID(id string) Option {
	return func(o *options) error {
		o.config.Host.ID = id
		return nil
	}
}

// WithLogLevel 设置日志级别规格
//
// 格式: "info" 或 "warn,host=debug,protocol/analytics=debug"
func WithLogLevel(spec string) Option {
	return func(o *options) error {
		o.config.Log.Level = spec
		return nil
	}
}

// WithAnalytics 开启或关闭分析协议响应方
//
// 关闭时节点仍然统计流量，也可以作为请求方查询其他节点。
func WithAnalytics(enabled bool) Option {
	return func(o *options) error {
		o.config.Analytics.Enabled = enabled
		return nil
	}
}

// WithClock 设置统计引擎使用的时钟（测试注入 mock）
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithRegisterer 设置 Prometheus 注册器
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithFxOption 追加自定义 Fx 选项
func WithFxOption(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
