package bandwidth

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
)

// ============================================================================
//                              模块输入依赖
// ============================================================================

// ModuleInput 定义模块输入依赖
type ModuleInput struct {
	fx.In

	// Config 配置（可选）
	Config *bandwidthif.Config `optional:"true"`

	// Clock 时钟（可选，测试注入 mock）
	Clock clock.Clock `optional:"true"`
}

// ============================================================================
//                              模块输出服务
// ============================================================================

// ModuleOutput 定义模块输出服务
type ModuleOutput struct {
	fx.Out

	// Counter 带宽计数器（写入侧）
	Counter bandwidthif.Counter

	// Source 只读统计源，与 Counter 为同一实例
	Source bandwidthif.StatsSource

	// Impl 具体实现，供报告器使用
	Impl *Counter
}

// ============================================================================
//                              服务提供
// ============================================================================

// ProvideServices 提供模块服务
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	config := bandwidthif.DefaultConfig()
	if input.Config != nil {
		config = *input.Config
	}

	var opts []CounterOption
	if input.Clock != nil {
		opts = append(opts, WithClock(input.Clock))
	}
	counter := NewCounter(config, opts...)

	return ModuleOutput{
		Counter: counter,
		Source:  counter,
		Impl:    counter,
	}, nil
}

// ============================================================================
//                              模块定义
// ============================================================================

// Module 返回 fx 模块配置
func Module() fx.Option {
	return fx.Module("bandwidth",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In
	LC      fx.Lifecycle
	Counter *Counter
	Config  *bandwidthif.Config `optional:"true"`
}

// registerLifecycle 注册生命周期
func registerLifecycle(input lifecycleInput) {
	config := bandwidthif.DefaultConfig()
	if input.Config != nil {
		config = *input.Config
	}

	trimmer := NewTrimmer(input.Counter, config.IdleTimeout)
	reporter := NewReporter(input.Counter)

	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			log.Info("带宽统计模块启动",
				"enabled", config.Enabled,
				"trimInterval", config.TrimInterval,
				"reportInterval", config.ReportInterval)

			trimmer.Start(config.TrimInterval)
			reporter.Start(config.ReportInterval)
			return nil
		},
		OnStop: func(_ context.Context) error {
			log.Info("带宽统计模块停止")

			trimmer.Stop()
			reporter.Stop()
			return nil
		},
	})
}

// ============================================================================
//                              空闲清理
// ============================================================================

// Trimmer 定期清理空闲统计条目
type Trimmer struct {
	counter     *Counter
	idleTimeout time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewTrimmer 创建清理器，idleTimeout 内无活动的条目会被移除
func NewTrimmer(counter *Counter, idleTimeout time.Duration) *Trimmer {
	return &Trimmer{counter: counter, idleTimeout: idleTimeout}
}

// Start 启动定期清理，interval 或 idleTimeout 非正时不启动
func (t *Trimmer) Start(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != nil || interval <= 0 || t.idleTimeout <= 0 {
		return
	}

	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	clk := t.counter.clock
	ticker := clk.Ticker(interval)
	go func(stopCh, doneCh chan struct{}) {
		defer close(doneCh)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				t.counter.TrimIdle(clk.Now().Add(-t.idleTimeout))
			case <-stopCh:
				return
			}
		}
	}(t.stopCh, t.doneCh)
}

// Stop 停止清理并等待后台任务退出
func (t *Trimmer) Stop() {
	t.mu.Lock()
	stopCh, doneCh := t.stopCh, t.doneCh
	t.stopCh, t.doneCh = nil, nil
	t.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// ============================================================================
//                              模块元信息
// ============================================================================

// 模块元信息常量
const (
	Version     = "1.0.0"
	Name        = "bandwidth"
	Description = "带宽统计模块，提供按总量/Peer/协议/传输的流量统计和移动平均"
)
