// Package prometheus supplies the concrete Prometheus gauges/counters
// behind pkg/metrics.RIMMetrics, modeled on the teacher's
// pkg/metrics/prometheus/cache.go promauto.With(registry) pattern.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rocketmq-go/namesrv/pkg/metrics"
)

func init() {
	metrics.RegisterRIMMetricsConstructor(func() metrics.RIMMetrics {
		return newRIMMetrics()
	})
}

type rimMetrics struct {
	registrationsAccepted        *prometheus.CounterVec
	registrationsRejectedStale   *prometheus.CounterVec
	registrationsRejectedPartial *prometheus.CounterVec
	brokersScavenged             *prometheus.CounterVec
	pickupRequests               *prometheus.CounterVec
	topicCount                   prometheus.Gauge
	brokerCount                  prometheus.Gauge
	clusterCount                 prometheus.Gauge
	liveBrokerCount              prometheus.Gauge
}

func newRIMMetrics() metrics.RIMMetrics {
	reg := metrics.GetRegistry()

	return &rimMetrics{
		registrationsAccepted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "namesrv_registrations_accepted_total",
				Help: "Total number of accepted broker registrations by cluster",
			},
			[]string{"cluster"},
		),
		registrationsRejectedStale: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "namesrv_registrations_rejected_stale_total",
				Help: "Total number of registrations rejected for a stale data version",
			},
			[]string{"cluster"},
		),
		registrationsRejectedPartial: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "namesrv_registrations_rejected_partial_total",
				Help: "Total number of registrations rejected as out-of-order partial updates",
			},
			[]string{"cluster"},
		),
		brokersScavenged: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "namesrv_brokers_scavenged_total",
				Help: "Total number of brokers evicted for missed heartbeats",
			},
			[]string{"cluster"},
		),
		pickupRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "namesrv_route_pickup_requests_total",
				Help: "Total number of route-pickup requests by topic and found/not-found",
			},
			[]string{"topic", "found"},
		),
		topicCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "namesrv_topics",
			Help: "Current number of topics in the route table",
		}),
		brokerCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "namesrv_brokers",
			Help: "Current number of registered broker names",
		}),
		clusterCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "namesrv_clusters",
			Help: "Current number of registered clusters",
		}),
		liveBrokerCount: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "namesrv_live_brokers",
			Help: "Current number of broker instances with a live heartbeat entry",
		}),
	}
}

func (m *rimMetrics) RegistrationAccepted(clusterName string) {
	m.registrationsAccepted.WithLabelValues(clusterName).Inc()
}

func (m *rimMetrics) RegistrationRejectedStale(clusterName string) {
	m.registrationsRejectedStale.WithLabelValues(clusterName).Inc()
}

func (m *rimMetrics) RegistrationRejectedPartial(clusterName string) {
	m.registrationsRejectedPartial.WithLabelValues(clusterName).Inc()
}

func (m *rimMetrics) BrokerScavenged(clusterName string) {
	m.brokersScavenged.WithLabelValues(clusterName).Inc()
}

func (m *rimMetrics) PickupRequested(topic string, found bool) {
	foundLabel := "false"
	if found {
		foundLabel = "true"
	}
	m.pickupRequests.WithLabelValues(topic, foundLabel).Inc()
}

func (m *rimMetrics) SetTableSizes(topics, brokers, clusters, liveBrokers int) {
	m.topicCount.Set(float64(topics))
	m.brokerCount.Set(float64(brokers))
	m.clusterCount.Set(float64(clusters))
	m.liveBrokerCount.Set(float64(liveBrokers))
}
