package analytics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics 响应方指标
type metrics struct {
	requests     *prometheus.CounterVec
	decodeErrors prometheus.Counter
	duration     prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_requests_total",
			Help: "Analytics requests answered, by first query type and response status",
		}, []string{"type", "status"}),
		decodeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "analytics_decode_errors_total",
			Help: "Inbound analytics streams closed because the request frame was malformed",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analytics_request_duration_seconds",
			Help:    "Time spent dispatching and encoding one analytics request",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	m.requests = register(reg, m.requests)
	m.decodeErrors = register(reg, m.decodeErrors)
	m.duration = register(reg, m.duration)
	return m
}

// register 注册采集器；已注册时复用已有的采集器
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		log.Warn("注册指标失败", "error", err)
	}
	return c
}
