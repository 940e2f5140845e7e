package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(cacheRequestsTotal)
}

var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Cache lookups by object kind and outcome (hit/miss).",
	},
	[]string{"object", "outcome"},
)

func IncCacheRequest(object, outcome string) {
	cacheRequestsTotal.WithLabelValues(norm(object), norm(outcome)).Inc()
}
