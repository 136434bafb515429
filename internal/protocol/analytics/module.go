package analytics

import (
	"go.uber.org/fx"

	pkgif "github.com/dep2p/go-analytics/pkg/interfaces"
	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// 模块元数据
const (
	// Version 模块版本
	Version = "1.0.0"
	// Name 模块名称
	Name = "analytics"
	// Description 模块描述
	Description = "libp2p 分析查询协议：响应远端的带宽统计查询"
)

// ModuleInput 模块输入依赖
type ModuleInput struct {
	fx.In

	Stats bandwidthif.StatsSource
	Host  pkgif.StreamHost

	// Config 协议配置（可选）
	Config *Config `optional:"true"`
}

// ModuleOutput 模块输出
type ModuleOutput struct {
	fx.Out

	Service *Service
}

// ProvideService 创建并挂载分析协议服务
func ProvideService(input ModuleInput) (ModuleOutput, error) {
	svc, err := New(input.Stats, WithConfig(input.Config))
	if err != nil {
		return ModuleOutput{}, err
	}
	if err := svc.Mount(input.Host); err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Service: svc}, nil
}

// Module 返回 Fx 模块
func Module() fx.Option {
	return fx.Module(Name,
		fx.Provide(ProvideService),
		fx.Invoke(registerLifecycle),
	)
}

func registerLifecycle(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: svc.Start,
		OnStop:  svc.Stop,
	})
}
