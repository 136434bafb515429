// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载和保存。
//
// 使用示例：
//
//	// 创建默认配置
//	cfg := config.NewConfig()
//	cfg.Analytics.RequestTimeout = config.Duration(10 * time.Second)
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Config 节点的完整配置
//
// 配置按照功能模块组织：
//   - Host: 连接与子流复用
//   - Bandwidth: 带宽统计
//   - Analytics: 分析查询协议
//   - Log: 日志级别
type Config struct {
	// Host 主机配置
	Host HostConfig `json:"host"`

	// Bandwidth 带宽统计配置
	Bandwidth BandwidthConfig `json:"bandwidth"`

	// Analytics 分析协议配置
	Analytics AnalyticsConfig `json:"analytics"`

	// Log 日志配置
	Log LogConfig `json:"log"`

	// Debug 打印依赖注入事件
	Debug bool `json:"debug,omitempty"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Host:      DefaultHostConfig(),
		Bandwidth: DefaultBandwidthConfig(),
		Analytics: DefaultAnalyticsConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := c.Host.Validate(); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if err := c.Bandwidth.Validate(); err != nil {
		return fmt.Errorf("bandwidth: %w", err)
	}
	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

// FromJSON 从 JSON 数据创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "host": {"id": "node-1"},
//	  "analytics": {"request_timeout": "10s"},
//	  "log": {"level": "info,protocol/analytics=debug"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 将配置序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Clone 深拷贝配置
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
