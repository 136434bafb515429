package analytics

import (
	"fmt"
	"math"
	"strconv"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

// Normalize 将统计引擎的原始统计转换为可传输的 StatsView
//
// 计数器渲染为十进制字符串；移动平均按 dataReceived、dataSent 的顺序，
// 每个方向依次读取 60000、300000、900000 三个窗口。
// 缺少计数器或窗口访问器、或平均值不是有限数时返回 ErrInternal，
// 不会以零值代替。
func Normalize(stats *bandwidthif.Stats) (*pb.StatsView, error) {
	if stats == nil {
		return nil, fmt.Errorf("%w: nil stats", ErrInternal)
	}

	recv, err := counter(stats, bandwidthif.DataReceived)
	if err != nil {
		return nil, err
	}
	sent, err := counter(stats, bandwidthif.DataSent)
	if err != nil {
		return nil, err
	}

	view := &pb.StatsView{
		Snapshot: pb.StatSnapshot{
			DataReceived: recv,
			DataSent:     sent,
		},
	}
	if err := readWindows(stats, bandwidthif.DataReceived, &view.MovingAverages.DataReceived); err != nil {
		return nil, err
	}
	if err := readWindows(stats, bandwidthif.DataSent, &view.MovingAverages.DataSent); err != nil {
		return nil, err
	}
	return view, nil
}

func counter(stats *bandwidthif.Stats, metric bandwidthif.Metric) (string, error) {
	v, ok := stats.Snapshot[metric]
	if !ok {
		return "", fmt.Errorf("%w: missing counter %s", ErrInternal, metric)
	}
	return strconv.FormatUint(v, 10), nil
}

func readWindows(stats *bandwidthif.Stats, metric bandwidthif.Metric, out *pb.WindowAverages) error {
	windows := stats.MovingAverages[metric]
	for _, w := range bandwidthif.Windows() {
		acc := windows[w]
		if acc == nil {
			return fmt.Errorf("%w: missing %s window %sms", ErrInternal, metric, w)
		}
		v := acc.MovingAverage()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s window %sms is not finite", ErrInternal, metric, w)
		}
		if err := out.Set(w.Milliseconds(), v); err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
	}
	return nil
}
