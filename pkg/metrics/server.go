package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer builds an http.Server exposing GET /metrics for the
// process-wide registry, bound to its own port separate from the query
// API listener (the teacher runs its Prometheus endpoint on a dedicated
// MetricsConfig.Port too).
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{}))

	return &http.Server{
		Addr:    addr,
		Handler: mux,
	}
}

// ListenAddr formats a bare port into a host:port listen address.
func ListenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
