package analytics

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json 标准库兼容配置，map 键按字典序输出
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrInvalidResult 表示结果既不是单个视图也不是视图映射
var ErrInvalidResult = errors.New("invalid analytics result")

// ============================================================================
//                              统计视图
// ============================================================================

// StatSnapshot 累计计数器快照
//
// 计数器以十进制字符串传输，避免超过 2^53 时丢失精度。
type StatSnapshot struct {
	DataReceived string `json:"dataReceived"`
	DataSent     string `json:"dataSent"`
}

// WindowAverages 三个固定窗口的移动平均值，键为窗口毫秒数
type WindowAverages struct {
	M1  float64 `json:"60000"`
	M5  float64 `json:"300000"`
	M15 float64 `json:"900000"`
}

// Set 按窗口毫秒数写入平均值
func (w *WindowAverages) Set(ms int64, v float64) error {
	switch ms {
	case 60000:
		w.M1 = v
	case 300000:
		w.M5 = v
	case 900000:
		w.M15 = v
	default:
		return fmt.Errorf("unsupported window %dms", ms)
	}
	return nil
}

// Get 按窗口毫秒数读取平均值
func (w WindowAverages) Get(ms int64) (float64, bool) {
	switch ms {
	case 60000:
		return w.M1, true
	case 300000:
		return w.M5, true
	case 900000:
		return w.M15, true
	}
	return 0, false
}

// MovingAverages 入站/出站两个方向的移动平均
type MovingAverages struct {
	DataReceived WindowAverages `json:"dataReceived"`
	DataSent     WindowAverages `json:"dataSent"`
}

// StatsView 单个实体（全局、Peer、协议、传输）的可传输统计
type StatsView struct {
	Snapshot       StatSnapshot   `json:"snapshot"`
	MovingAverages MovingAverages `json:"movingAverages"`
}

// ============================================================================
//                              查询结果
// ============================================================================

// Result 单个查询的结果
//
// View 与 Views 恰好设置其一：带过滤条件的查询得到单个视图，
// 否则得到 ID 到视图的映射。
type Result struct {
	View  *StatsView
	Views map[string]*StatsView
}

// SingleResult 创建单视图结果
func SingleResult(v *StatsView) Result {
	return Result{View: v}
}

// MapResult 创建映射结果
func MapResult(views map[string]*StatsView) Result {
	if views == nil {
		views = make(map[string]*StatsView)
	}
	return Result{Views: views}
}

// IsMap 是否为映射结果
func (r Result) IsMap() bool {
	return r.View == nil
}

// MarshalJSON 实现 json.Marshaler
func (r Result) MarshalJSON() ([]byte, error) {
	switch {
	case r.View != nil && r.Views != nil:
		return nil, ErrInvalidResult
	case r.View != nil:
		return json.Marshal(r.View)
	case r.Views != nil:
		return json.Marshal(r.Views)
	}
	return nil, ErrInvalidResult
}

// EncodeResults 将结果序列编码为 Response.response 负载
//
// 相同输入产生字节相同的输出。
func EncodeResults(results []Result) ([]byte, error) {
	if results == nil {
		results = []Result{}
	}
	return json.Marshal(results)
}

// RawResult 未解析的单个结果
//
// 调用方根据发出的查询决定按视图还是按映射解析。
type RawResult jsoniter.RawMessage

// AsView 解析为单个视图
func (r RawResult) AsView() (*StatsView, error) {
	var v StatsView
	if err := json.Unmarshal(r, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	return &v, nil
}

// AsMap 解析为 ID 到视图的映射
func (r RawResult) AsMap() (map[string]*StatsView, error) {
	var m map[string]*StatsView
	if err := json.Unmarshal(r, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: not an object", ErrInvalidResult)
	}
	return m, nil
}

// DecodeResults 解析 Response.response 负载
func DecodeResults(data []byte) ([]RawResult, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var raws []jsoniter.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResult, err)
	}
	out := make([]RawResult, len(raws))
	for i, raw := range raws {
		out[i] = RawResult(raw)
	}
	return out, nil
}
