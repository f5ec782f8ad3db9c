package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	PagesRendered  *prometheus.CounterVec
	RequestsTotal  *prometheus.CounterVec
	CatalogReloads prometheus.Counter
}

// NewMetrics registers the site metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacuumhub_pages_rendered_total",
				Help: "Pages rendered, by page kind",
			},
			[]string{"kind"},
		),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacuumhub_http_requests_total",
				Help: "HTTP requests served, by route and status code",
			},
			[]string{"route", "code"},
		),
		CatalogReloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vacuumhub_catalog_reloads_total",
				Help: "Catalog invalidations caused by data directory changes",
			},
		),
	}
	m.registry.MustRegister(
		m.PagesRendered,
		m.RequestsTotal,
		m.CatalogReloads,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
