package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects gateway counters. All methods are nil-safe so metrics
// stay optional: a client built without a registry simply records nothing.
type Metrics struct {
	requests  *prometheus.CounterVec
	refreshes prometheus.Counter
	retries   prometheus.Counter
}

// NewMetrics registers the gateway counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "authclient",
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Outgoing API requests by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authclient",
			Subsystem: "gateway",
			Name:      "token_refreshes_total",
			Help:      "Token refresh calls triggered by 401 responses.",
		}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "authclient",
			Subsystem: "gateway",
			Name:      "request_retries_total",
			Help:      "Requests replayed after a successful token refresh.",
		}),
	}
	reg.MustRegister(m.requests, m.refreshes, m.retries)
	return m
}

func (m *Metrics) observeRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeRefresh() {
	if m == nil {
		return
	}
	m.refreshes.Inc()
}

func (m *Metrics) observeRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}
