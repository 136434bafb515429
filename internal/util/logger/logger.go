package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler
)

// Logger 获取指定子系统的 Logger
//
// 级别由 ANALYTICS_LOG_LEVEL 决定，同一子系统多次调用返回相同实例。
//
//	var log = logger.Logger("protocol/analytics")
//	log.Info("请求已处理", "peer", peerID, "queries", n)
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	handler := newHandler(subsystem, ConfigFromEnv())
	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(handler))
	if !loaded {
		handlers.Store(subsystem, handler)
	}
	return actual.(*slog.Logger)
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).level.Set(level)
	}
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).level.Set(level)
		return true
	})
}

// ApplyLevelSpec 按级别配置字符串调整已创建的子系统
//
// 格式与 ANALYTICS_LOG_LEVEL 相同。默认级别只作用于
// 未在级别描述中单独列出的子系统。
func ApplyLevelSpec(spec string) {
	cfg := &Config{DefaultLevel: ConfigFromEnv().DefaultLevel}
	ParseLevelSpec(cfg, spec)
	handlers.Range(func(key, value any) bool {
		value.(*subsystemHandler).level.Set(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// Discard 返回一个丢弃所有日志的 Logger（用于测试）
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样会输出到新的目标。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
