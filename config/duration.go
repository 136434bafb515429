package config

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// Duration 配置文件中的时间间隔
//
// 分析协议的 stream_timeout / request_timeout、带宽统计的 trim_interval /
// idle_timeout 以及主机的各项超时都使用该类型。JSON 中可写作：
//   - 字符串: "30s"、"1m30s"、"500ms"，"0" 或 "0s" 表示关闭对应的超时
//   - 整数: 纳秒数，例如 30000000000
//   - null: 保留当前值（通常是默认值）
//
// 负值在解析阶段即被拒绝，不会到达各组件的 Validate。
type Duration time.Duration

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	iter := jsoniter.ParseBytes(json, data)

	var parsed time.Duration
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		return nil
	case jsoniter.StringValue:
		s := iter.ReadString()
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		parsed = v
	case jsoniter.NumberValue:
		parsed = time.Duration(iter.ReadInt64())
	default:
		return fmt.Errorf("invalid duration %s: want a string like \"30s\" or integer nanoseconds", data)
	}
	if iter.Error != nil {
		return fmt.Errorf("invalid duration %s: %w", data, iter.Error)
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %s: must not be negative", data)
	}

	*d = Duration(parsed)
	return nil
}

// MarshalJSON 输出 time.Duration 的字符串形式，如 "30s"
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
