// Package metrics exposes Prometheus instrumentation for outbound chain RPC
// traffic and serves the scrape endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RPCCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_rpc_calls_total",
		Help: "Total number of chain RPC calls by method and outcome.",
	}, []string{"method", "outcome"})
	RPCCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "chain_rpc_call_duration_seconds",
		Help: "Duration of chain RPC calls in seconds by method.",
	}, []string{"method"})
	RPCFallbackRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chain_rpc_fallback_retries_total",
		Help: "Number of calls retried against the default fallback endpoint.",
	})
)

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Handler returns the Prometheus scrape handler for mounting on a mux.
func Handler() http.Handler {
	return promhttp.Handler()
}
