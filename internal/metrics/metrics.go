// Package metrics exposes the overlay's operational counters over a
// private Prometheus registry, served by cmd/ztdnsd on a loopback-only
// listener outside the overlay's mTLS trust boundary (metrics are
// operational data, not subject to spec section 6's wire protocols).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every counter/histogram the resolver and proxy update.
type Metrics struct {
	registry *prometheus.Registry

	DotConnections   prometheus.Counter
	DotQueries       *prometheus.CounterVec // labelled by outcome
	DotUpstreamCalls prometheus.Histogram

	ProxyConnections prometheus.Counter
	ProxyDispatches  *prometheus.CounterVec // labelled by outcome
	ProxyBytesSent   prometheus.Counter
	ProxyBackendDial prometheus.Histogram
}

// New builds a fresh registry with every metric pre-registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		DotConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ztdns_dot_connections_total",
			Help: "DoT connections accepted.",
		}),
		DotQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ztdns_dot_queries_total",
			Help: "DoT queries answered, labelled by outcome.",
		}, []string{"outcome"}),
		DotUpstreamCalls: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ztdns_dot_upstream_seconds",
			Help:    "Latency of DoH upstream fallback exchanges.",
			Buckets: prometheus.DefBuckets,
		}),
		ProxyConnections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ztdns_proxy_connections_total",
			Help: "Proxy connections accepted.",
		}),
		ProxyDispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ztdns_proxy_dispatches_total",
			Help: "Proxy dispatch decisions, labelled by outcome.",
		}, []string{"outcome"}),
		ProxyBytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ztdns_proxy_backend_bytes_total",
			Help: "Peek-buffer bytes written to backends; bytes relayed during the splice are not counted.",
		}),
		ProxyBackendDial: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ztdns_proxy_backend_dial_seconds",
			Help:    "Latency of backend dials.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		m.DotConnections, m.DotQueries, m.DotUpstreamCalls,
		m.ProxyConnections, m.ProxyDispatches, m.ProxyBytesSent, m.ProxyBackendDial,
	)

	return m
}

// Handler returns the http.Handler to serve at /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
