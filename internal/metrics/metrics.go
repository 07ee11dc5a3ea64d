package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector defines the interface for coordinator metrics collection.
type Collector interface {
	// Participant lifecycle
	ParticipantConnected()
	ParticipantDisconnected()

	// Matching
	QueueDepth(n int)
	PairCreated()
	PairDissolved()
	ActivePairs(n int)

	// Relay
	MessageRelayed(kind string)
	MessageDropped(kind, reason string)

	// Handler returns an HTTP handler for the metrics endpoint.
	Handler() http.Handler
}

// PrometheusCollector implements Collector using Prometheus.
type PrometheusCollector struct {
	activeParticipants prometheus.Gauge
	connections        prometheus.Counter
	disconnections     prometheus.Counter

	queueDepth     prometheus.Gauge
	activePairs    prometheus.Gauge
	pairsCreated   prometheus.Counter
	pairsDissolved prometheus.Counter

	messagesRelayed *prometheus.CounterVec
	messagesDropped *prometheus.CounterVec
}

// NewPrometheusCollector creates a new PrometheusCollector.
func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		activeParticipants: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_active_participants",
			Help: "Number of currently connected participants",
		}),

		connections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_connections_total",
			Help: "Total number of participant connections",
		}),

		disconnections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_disconnections_total",
			Help: "Total number of participant disconnections",
		}),

		queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_waiting_participants",
			Help: "Number of participants waiting for a partner",
		}),

		activePairs: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "coordinator_active_pairs",
			Help: "Number of active pairings",
		}),

		pairsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_pairs_created_total",
			Help: "Total number of pairings created",
		}),

		pairsDissolved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "coordinator_pairs_dissolved_total",
			Help: "Total number of pairings dissolved",
		}),

		messagesRelayed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_messages_relayed_total",
				Help: "Total number of negotiation messages relayed between partners",
			},
			[]string{"kind"},
		),

		messagesDropped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coordinator_messages_dropped_total",
				Help: "Total number of messages dropped instead of relayed",
			},
			[]string{"kind", "reason"},
		),
	}
}

func (c *PrometheusCollector) ParticipantConnected() {
	c.connections.Inc()
	c.activeParticipants.Inc()
}

func (c *PrometheusCollector) ParticipantDisconnected() {
	c.disconnections.Inc()
	c.activeParticipants.Dec()
}

func (c *PrometheusCollector) QueueDepth(n int) {
	c.queueDepth.Set(float64(n))
}

func (c *PrometheusCollector) PairCreated() {
	c.pairsCreated.Inc()
}

func (c *PrometheusCollector) PairDissolved() {
	c.pairsDissolved.Inc()
}

func (c *PrometheusCollector) ActivePairs(n int) {
	c.activePairs.Set(float64(n))
}

func (c *PrometheusCollector) MessageRelayed(kind string) {
	c.messagesRelayed.WithLabelValues(kind).Inc()
}

func (c *PrometheusCollector) MessageDropped(kind, reason string) {
	c.messagesDropped.WithLabelValues(kind, reason).Inc()
}

// Handler returns an HTTP handler for the metrics endpoint.
func (c *PrometheusCollector) Handler() http.Handler {
	return promhttp.Handler()
}

// NopCollector discards all metrics. Used in tests.
type NopCollector struct{}

func (NopCollector) ParticipantConnected()           {}
func (NopCollector) ParticipantDisconnected()        {}
func (NopCollector) QueueDepth(int)                  {}
func (NopCollector) PairCreated()                    {}
func (NopCollector) PairDissolved()                  {}
func (NopCollector) ActivePairs(int)                 {}
func (NopCollector) MessageRelayed(string)           {}
func (NopCollector) MessageDropped(string, string)   {}
func (NopCollector) Handler() http.Handler           { return http.NotFoundHandler() }
