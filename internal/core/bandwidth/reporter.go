package bandwidth

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/dep2p/go-analytics/internal/util/logger"
)

// 包级别日志实例
var log = logger.Logger("bandwidth")

// ============================================================================
//                              报告器实现
// ============================================================================

// Report 带宽统计报告
type Report struct {
	Timestamp    time.Time
	Interval     time.Duration
	Total        MeterSnapshot // 入站
	TotalOut     MeterSnapshot // 出站
	Peers        int
	Protocols    int
	Transports   int
	TopPeers     []KeyStats
	TopProtocols []KeyStats
}

// Reporter 定期把带宽统计写入日志
type Reporter struct {
	counter  *Counter
	interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewReporter 创建报告器
func NewReporter(counter *Counter) *Reporter {
	return &Reporter{
		counter: counter,
	}
}

// Start 启动定期报告，重复调用无效
func (r *Reporter) Start(interval time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil || interval <= 0 {
		return
	}

	r.interval = interval
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	ticker := r.counter.clock.Ticker(interval)
	go func(stopCh, doneCh chan struct{}) {
		defer close(doneCh)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.logReport(r.Report())
			case <-stopCh:
				return
			}
		}
	}(r.stopCh, r.doneCh)
}

// Stop 停止报告并等待后台任务退出
func (r *Reporter) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
}

// Report 生成报告
func (r *Reporter) Report() *Report {
	c := r.counter
	return &Report{
		Timestamp:    c.clock.Now(),
		Interval:     r.interval,
		Total:        c.total.In.Snapshot(),
		TotalOut:     c.total.Out.Snapshot(),
		Peers:        c.PeerCount(),
		Protocols:    c.ProtocolCount(),
		Transports:   c.TransportCount(),
		TopPeers:     c.TopPeers(10),
		TopProtocols: c.TopProtocols(10),
	}
}

// logReport 记录报告
func (r *Reporter) logReport(report *Report) {
	log.Info("带宽统计报告",
		"totalIn", FormatBytes(report.Total.Total),
		"totalOut", FormatBytes(report.TotalOut.Total),
		"rateIn", FormatRate(report.Total.Rate1),
		"rateOut", FormatRate(report.TotalOut.Rate1),
		"peers", report.Peers,
		"protocols", report.Protocols,
		"transports", report.Transports,
	)
}

// ============================================================================
//                              辅助函数
// ============================================================================

// FormatBytes 格式化字节数为人类可读格式
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return formatValue(float64(bytes), "B")
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return formatValue(float64(bytes)/float64(div), "KMGTPE"[exp:exp+1]+"B")
}

// FormatRate 格式化速率为人类可读格式
func FormatRate(bytesPerSec float64) string {
	const unit = 1024
	if math.IsNaN(bytesPerSec) || math.IsInf(bytesPerSec, 0) {
		return formatValue(0, "B/s")
	}
	if bytesPerSec < unit {
		return formatValue(bytesPerSec, "B/s")
	}
	div, exp := float64(unit), 0
	for n := bytesPerSec / unit; n >= unit && exp < 5; n /= unit {
		div *= unit
		exp++
	}
	return formatValue(bytesPerSec/div, "KMGTPE"[exp:exp+1]+"B/s")
}

func formatValue(val float64, suffix string) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return "0 " + suffix
	}
	prec := 0
	switch {
	case val < 10:
		prec = 2
	case val < 100:
		prec = 1
	}
	return strconv.FormatFloat(val, 'f', prec, 64) + " " + suffix
}
