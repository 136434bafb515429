package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bandwidthif "github.com/dep2p/go-analytics/pkg/interfaces/bandwidth"
	pb "github.com/dep2p/go-analytics/pkg/lib/proto/analytics"
)

func TestNormalize(t *testing.T) {
	stats := StaticStats(math.MaxUint64, 42, 1.5, 0.25)

	view, err := Normalize(stats)
	require.NoError(t, err)

	assert.Equal(t, "18446744073709551615", view.Snapshot.DataReceived)
	assert.Equal(t, "42", view.Snapshot.DataSent)
	assert.Equal(t, pb.WindowAverages{M1: 1.5, M5: 1.5, M15: 1.5}, view.MovingAverages.DataReceived)
	assert.Equal(t, pb.WindowAverages{M1: 0.25, M5: 0.25, M15: 0.25}, view.MovingAverages.DataSent)
}

func TestNormalize_WindowOrder(t *testing.T) {
	var order []string
	stats := StaticStats(0, 0, 0, 0)
	for _, metric := range []bandwidthif.Metric{bandwidthif.DataReceived, bandwidthif.DataSent} {
		for _, w := range bandwidthif.Windows() {
			w := w
			name := string(metric) + "/" + w.String()
			stats.MovingAverages[metric][w] = bandwidthif.MovingAverageFunc(func() float64 {
				order = append(order, name)
				return float64(w.Milliseconds())
			})
		}
	}

	view, err := Normalize(stats)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"dataReceived/60000", "dataReceived/300000", "dataReceived/900000",
		"dataSent/60000", "dataSent/300000", "dataSent/900000",
	}, order)
	assert.Equal(t, pb.WindowAverages{M1: 60000, M5: 300000, M15: 900000}, view.MovingAverages.DataSent)
}

func TestNormalize_ZeroAverages(t *testing.T) {
	view, err := Normalize(StaticStats(0, 0, 0, 0))
	require.NoError(t, err)

	data, err := pb.EncodeResults([]pb.Result{pb.SingleResult(view)})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"60000":0`)
	assert.Contains(t, string(data), `"300000":0`)
	assert.Contains(t, string(data), `"900000":0`)
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*bandwidthif.Stats)
	}{
		{"缺少接收计数", func(s *bandwidthif.Stats) {
			delete(s.Snapshot, bandwidthif.DataReceived)
		}},
		{"缺少发送计数", func(s *bandwidthif.Stats) {
			delete(s.Snapshot, bandwidthif.DataSent)
		}},
		{"缺少指标的全部窗口", func(s *bandwidthif.Stats) {
			delete(s.MovingAverages, bandwidthif.DataSent)
		}},
		{"缺少单个窗口", func(s *bandwidthif.Stats) {
			delete(s.MovingAverages[bandwidthif.DataReceived], bandwidthif.Window15m)
		}},
		{"窗口访问器为 nil", func(s *bandwidthif.Stats) {
			s.MovingAverages[bandwidthif.DataReceived][bandwidthif.Window5m] = nil
		}},
		{"平均值为 NaN", func(s *bandwidthif.Stats) {
			s.MovingAverages[bandwidthif.DataSent][bandwidthif.Window1m] = bandwidthif.MovingAverageFunc(math.NaN)
		}},
		{"平均值为无穷大", func(s *bandwidthif.Stats) {
			s.MovingAverages[bandwidthif.DataSent][bandwidthif.Window1m] = bandwidthif.MovingAverageFunc(func() float64 {
				return math.Inf(1)
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := StaticStats(1, 2, 3, 4)
			tt.mutate(stats)

			view, err := Normalize(stats)
			assert.Nil(t, view)
			assert.ErrorIs(t, err, ErrInternal)
		})
	}

	_, err := Normalize(nil)
	assert.ErrorIs(t, err, ErrInternal)
}
