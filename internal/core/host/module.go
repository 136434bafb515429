package host

import (
	"context"

	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	// Config Host 配置（可选）
	Config *Config `optional:"true"`

	// Counter 带宽计数器（可选，缺失时不计量）
	Counter bandwidthif.Counter `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Host       pkgif.Host
	StreamHost pkgif.StreamHost
	Opener     pkgif.StreamOpener
	Impl       *Host
}

// ProvideHost 提供 Host 服务
func ProvideHost(input ModuleInput) (ModuleOutput, error) {
	opts := []Option{WithConfig(input.Config)}
	if input.Counter != nil {
		opts = append(opts, WithCounter(input.Counter))
	}

	h, err := New(opts...)
	if err != nil {
		return ModuleOutput{}, err
	}

	return ModuleOutput{
		Host:       h,
		StreamHost: h,
		Opener:     h,
		Impl:       h,
	}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module("host",
		fx.Provide(ProvideHost),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput Lifecycle 注册输入
type lifecycleInput struct {
	fx.In
	LC   fx.Lifecycle
	Host *Host
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(input lifecycleInput) {
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Info("Host 已启动", "id", input.Host.ID())
			return nil
		},
		OnStop: func(_ context.Context) error {
			return input.Host.Close()
		},
	})
}
