package config

import (
	"fmt"
	"strings"

	"github.com/dep2p/go-analytics/internal/util/logger"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别规格，格式同 ANALYTICS_LOG_LEVEL
	// 例如 "info" 或 "warn,host=debug,protocol/analytics=debug"
	// 为空时沿用环境变量
	Level string `json:"level,omitempty"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{}
}

// Validate 验证日志级别规格
func (c LogConfig) Validate() error {
	for _, part := range strings.Split(c.Level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		level := part
		if _, l, ok := strings.Cut(part, "="); ok {
			level = l
		}
		if _, ok := logger.ParseLevel(strings.TrimSpace(level)); !ok {
			return fmt.Errorf("invalid log level %q", part)
		}
	}
	return nil
}
