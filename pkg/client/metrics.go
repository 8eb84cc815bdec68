package client

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK          = "ok"
	resultServerError = "server_error"
	resultError       = "error"
)

type metrics struct {
	requests   *prometheus.CounterVec
	queueDepth prometheus.Gauge
	dropped    prometheus.Counter
}

// newMetrics creates the client metrics and registers them with r when r
// is non-nil. Collectors already registered by another Mux on the same
// registerer are shared.
func newMetrics(r prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shardkv",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Requests performed by the multiplexer, by command and result.",
		}, []string{"command", "result"}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shardkv",
			Subsystem: "client",
			Name:      "queue_depth",
			Help:      "Commands waiting in the multiplexer queue.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shardkv",
			Subsystem: "client",
			Name:      "responses_dropped_total",
			Help:      "Replies discarded because the caller stopped waiting.",
		}),
	}
	if r == nil {
		return m
	}

	m.requests = register(r, m.requests)
	m.queueDepth = register(r, m.queueDepth)
	m.dropped = register(r, m.dropped)
	return m
}

func register[C prometheus.Collector](r prometheus.Registerer, c C) C {
	if err := r.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
	}
	return c
}

func (m *metrics) observe(command string, err error) {
	result := resultOK
	if err != nil {
		result = resultError
		if !isTransport(err) {
			result = resultServerError
		}
	}
	m.requests.WithLabelValues(command, result).Inc()
}
