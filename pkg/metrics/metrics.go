package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fixconv"

// Metrics holds the service counters on a private registry
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	encoded       prometheus.Counter
	explained     prometheus.Counter
	explainErrors prometheus.Counter
	rateLimited   prometheus.Counter
	requests      *prometheus.CounterVec
}

// Snapshot is a point-in-time copy of the counters
type Snapshot struct {
	Encoded       uint64 `json:"encoded"`
	Explained     uint64 `json:"explained"`
	ExplainErrors uint64 `json:"explain_errors"`
	RateLimited   uint64 `json:"rate_limited"`
}

// New creates and registers all counters
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		encoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_encoded_total",
			Help:      "Total number of orders encoded into messages",
		}),
		explained: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_explained_total",
			Help:      "Total number of messages decoded and annotated",
		}),
		explainErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explain_errors_total",
			Help:      "Total number of messages rejected as malformed",
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Total number of requests rejected by the rate limiter",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.encoded,
		m.explained,
		m.explainErrors,
		m.rateLimited,
		m.requests,
		collectors.NewGoCollector(),
	)

	return m
}

// MessageEncoded counts one encoded order
func (m *Metrics) MessageEncoded() { m.encoded.Inc() }

// MessageExplained counts one annotated message
func (m *Metrics) MessageExplained() { m.explained.Inc() }

// ExplainFailed counts one rejected message
func (m *Metrics) ExplainFailed() { m.explainErrors.Inc() }

// RateLimited counts one throttled request
func (m *Metrics) RateLimited() { m.rateLimited.Inc() }

// ObserveRequest counts a finished HTTP request
func (m *Metrics) ObserveRequest(route string, code int) {
	m.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot gathers the current counter values
func (m *Metrics) Snapshot() (Snapshot, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return Snapshot{}, err
	}

	var s Snapshot
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}

		switch mf.GetName() {
		case namespace + "_messages_encoded_total":
			s.Encoded = uint64(total)
		case namespace + "_messages_explained_total":
			s.Explained = uint64(total)
		case namespace + "_explain_errors_total":
			s.ExplainErrors = uint64(total)
		case namespace + "_rate_limited_total":
			s.RateLimited = uint64(total)
		}
	}

	return s, nil
}
