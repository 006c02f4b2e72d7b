// Package metrics exposes Prometheus metrics for sitemap builds.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/folio/internal/models"
)

// Metrics holds the folio collectors on an isolated registry, so tests can
// create as many instances as they need.
type Metrics struct {
	Registry *prometheus.Registry

	BuildsTotal          *prometheus.CounterVec
	BuildDurationSeconds prometheus.Histogram
	Entries              *prometheus.GaugeVec
	LastSuccess          prometheus.Gauge
	BuildInfo            *prometheus.GaugeVec
}

// New creates a Metrics instance with all collectors registered.
func New(version string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_sitemap_builds_total",
				Help: "Total number of sitemap builds by result.",
			},
			[]string{"result"},
		),
		BuildDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "folio_sitemap_build_duration_seconds",
				Help:    "Time taken to build the sitemap.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		Entries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folio_sitemap_entries",
				Help: "Number of entries at any depth in the last successful build.",
			},
			[]string{"tree"},
		),
		LastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "folio_sitemap_last_success_timestamp_seconds",
				Help: "Unix time of the last successful build.",
			},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folio_info",
				Help: "Build information for the running folio instance.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.BuildsTotal,
		m.BuildDurationSeconds,
		m.Entries,
		m.LastSuccess,
		m.BuildInfo,
	)

	m.BuildInfo.WithLabelValues(version, runtime.Version()).Set(1)
	return m
}

// ObserveBuild records the outcome of one build. site is ignored when err
// is non-nil.
func (m *Metrics) ObserveBuild(took time.Duration, site models.Site, err error) {
	m.BuildDurationSeconds.Observe(took.Seconds())
	if err != nil {
		m.BuildsTotal.WithLabelValues("failure").Inc()
		return
	}
	m.BuildsTotal.WithLabelValues("success").Inc()
	m.Entries.WithLabelValues("main").Set(float64(count(site.Main)))
	m.Entries.WithLabelValues("footer").Set(float64(count(site.Footer)))
	m.LastSuccess.SetToCurrentTime()
}

// Handler returns the scrape endpoint for the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func count(entries []models.Entry) int {
	n := len(entries)
	for _, e := range entries {
		n += count(e.Children)
	}
	return n
}
