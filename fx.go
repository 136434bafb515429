package analytics

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-analytics/config"
	"github.com/dep2p/go-analytics/internal/core/bandwidth"
	"github.com/dep2p/go-analytics/internal/core/host"
	"github.com/dep2p/go-analytics/internal/core/muxer/yamux"
	aproto "github.com/dep2p/go-analytics/internal/protocol/analytics"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. bandwidth: 统计引擎
//  2. host: 连接与子流，计量写入统计引擎
//  3. analytics: 响应方服务（可由配置关闭）
func buildFxApp(opts *options, node *Node) (*fx.App, error) {
	cfg := opts.config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	modules := []fx.Option{
		fx.Supply(cfg),
		fx.Provide(
			provideBandwidthConfig(cfg),
			provideHostConfig(cfg),
		),
		bandwidth.Module(),
		host.Module(),
	}

	if clk := opts.clock; clk != nil {
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}

	if cfg.Analytics.Enabled {
		modules = append(modules,
			fx.Provide(provideAnalyticsConfig(cfg, opts)),
			aproto.Module(),
		)
	}

	modules = append(modules, fx.Invoke(injectNodeComponents(node)))
	modules = append(modules, opts.fxOptions...)

	modules = append(modules, fx.WithLogger(func() fxevent.Logger {
		return &fxevent.ZapLogger{Logger: fxZapLogger(cfg)}
	}))

	return fx.New(modules...), nil
}

// fxZapLogger 调试模式下输出 Fx 事件，否则丢弃
func fxZapLogger(cfg *config.Config) *zap.Logger {
	if !cfg.Debug {
		return zap.NewNop()
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return l.Named("fx")
}

// ════════════════════════════════════════════════════════════════════════════
// 组件注入
// ════════════════════════════════════════════════════════════════════════════

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Host    *host.Host
	Counter *bandwidth.Counter

	// 分析协议关闭时缺失
	Service *aproto.Service `optional:"true"`
}

// injectNodeComponents 创建 Node 组件注入函数
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.host = params.Host
		node.counter = params.Counter
		node.service = params.Service
	}
}

// ════════════════════════════════════════════════════════════════════════════
// 配置转换
// ════════════════════════════════════════════════════════════════════════════

// provideBandwidthConfig 提供带宽统计配置
func provideBandwidthConfig(cfg *config.Config) func() *bandwidthif.Config {
	return func() *bandwidthif.Config {
		return &bandwidthif.Config{
			Enabled:          cfg.Bandwidth.Enabled,
			TrackByPeer:      cfg.Bandwidth.EnablePerPeer,
			TrackByProtocol:  cfg.Bandwidth.EnablePerProtocol,
			TrackByTransport: cfg.Bandwidth.EnablePerTransport,
			TrimInterval:     cfg.Bandwidth.TrimInterval.Duration(),
			IdleTimeout:      cfg.Bandwidth.IdleTimeout.Duration(),
			ReportInterval:   cfg.Bandwidth.ReportInterval.Duration(),
		}
	}
}

// provideHostConfig 提供主机配置
func provideHostConfig(cfg *config.Config) func() *host.Config {
	return func() *host.Config {
		m := cfg.Host.Muxer
		return &host.Config{
			ID:                 cfg.Host.ID,
			NegotiationTimeout: cfg.Host.NegotiationTimeout.Duration(),
			Muxer: yamux.Config{
				AcceptBacklog:          m.AcceptBacklog,
				MaxStreamWindowSize:    m.MaxStreamWindowSize,
				EnableKeepAlive:        m.EnableKeepAlive,
				KeepAliveInterval:      m.KeepAliveInterval.Duration(),
				ConnectionWriteTimeout: m.ConnectionWriteTimeout.Duration(),
				StreamOpenTimeout:      m.StreamOpenTimeout.Duration(),
			},
		}
	}
}

// provideAnalyticsConfig 提供分析协议配置
func provideAnalyticsConfig(cfg *config.Config, opts *options) func() *aproto.Config {
	return func() *aproto.Config {
		return analyticsConfig(cfg, opts)
	}
}

func analyticsConfig(cfg *config.Config, opts *options) *aproto.Config {
	return &aproto.Config{
		MaxMessageSize: cfg.Analytics.MaxMessageSize,
		StreamTimeout:  cfg.Analytics.StreamTimeout.Duration(),
		RequestTimeout: cfg.Analytics.RequestTimeout.Duration(),
		Registerer:     opts.registerer,
	}
}
