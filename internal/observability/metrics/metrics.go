package metrics

import "github.com/prometheus/client_golang/prometheus"

// GatewayMetrics exposes counters/histograms for hosted-function calls and
// webhook forwarding.
type GatewayMetrics struct {
	callsTotal    *prometheus.CounterVec
	callLatency   *prometheus.HistogramVec
	webhooksTotal *prometheus.CounterVec
}

func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	m := &GatewayMetrics{
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendasalud",
			Subsystem: "gateway",
			Name:      "calls_total",
			Help:      "Total hosted function invocations",
		}, []string{"function", "status"}),
		callLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agendasalud",
			Subsystem: "gateway",
			Name:      "call_latency_seconds",
			Help:      "Latency of hosted function invocations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"function"}),
		webhooksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agendasalud",
			Subsystem: "webhooks",
			Name:      "forwarded_total",
			Help:      "Total payment provider webhooks forwarded",
		}, []string{"method", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.callsTotal, m.callLatency, m.webhooksTotal)
	return m
}

func (m *GatewayMetrics) ObserveCall(function, status string, seconds float64) {
	if m == nil {
		return
	}
	m.callsTotal.WithLabelValues(function, status).Inc()
	m.callLatency.WithLabelValues(function).Observe(seconds)
}

func (m *GatewayMetrics) ObserveWebhookForward(method, status string) {
	if m == nil {
		return
	}
	m.webhooksTotal.WithLabelValues(method, status).Inc()
}
