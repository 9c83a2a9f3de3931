// Package metrics exposes the route-information-manager metrics surface
// as an interface, keeping the Prometheus implementation
// (pkg/metrics/prometheus) out of internal/rim's import graph — the same
// indirection the teacher uses between pkg/metrics and
// pkg/metrics/prometheus for its cache/S3/badger metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide Prometheus registry. Must be
// called before any *Metrics constructor if metrics are wanted; callers
// that skip it get nil metrics objects throughout, at zero overhead.
func InitRegistry() *prometheus.Registry {
	registry = prometheus.NewRegistry()
	enabled = true
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the process-wide registry, or nil if metrics are
// disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// RIMMetrics is the metrics surface the route information manager
// reports into. A nil RIMMetrics (the zero value for an interface field)
// must be safe to call methods on via nil-checks at call sites, exactly
// as the teacher's cache.CacheMetrics contract requires.
type RIMMetrics interface {
	RegistrationAccepted(clusterName string)
	RegistrationRejectedStale(clusterName string)
	RegistrationRejectedPartial(clusterName string)
	BrokerScavenged(clusterName string)
	PickupRequested(topic string, found bool)
	SetTableSizes(topics, brokers, clusters, liveBrokers int)
}

// NewRIMMetrics returns the Prometheus-backed RIMMetrics implementation,
// or nil when metrics are disabled.
func NewRIMMetrics() RIMMetrics {
	if !IsEnabled() {
		return nil
	}
	return newPrometheusRIMMetrics()
}

// newPrometheusRIMMetrics is set by pkg/metrics/prometheus's init(),
// mirroring the teacher's RegisterCacheMetricsConstructor indirection to
// avoid an import cycle between this package and its implementation.
var newPrometheusRIMMetrics func() RIMMetrics

// RegisterRIMMetricsConstructor is called by
// pkg/metrics/prometheus.init() to install the concrete constructor.
func RegisterRIMMetricsConstructor(constructor func() RIMMetrics) {
	newPrometheusRIMMetrics = constructor
}
