// Package metrics exposes live coverage percentages as Prometheus gauges,
// the exporter-side counterpart to the teacher lineage's Prometheus
// query-client usage: instead of polling an external Prometheus for chain
// health, this package is scraped by one, for long regression runs where a
// human wants to watch coverage climb in Grafana rather than rerun a CLI
// report.
package metrics

import (
	"net/http"

	"github.com/jihwankim/covcrv/pkg/coverage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter republishes every registered item's cover percentage from a
// CoverageDB as a gauge labeled by its full dotted name, each time Refresh
// is called.
type Exporter struct {
	db      *coverage.CoverageDB
	gauge   *prometheus.GaugeVec
	registry *prometheus.Registry
}

// NewExporter builds an Exporter with its own Prometheus registry, so it can
// be mounted alongside other metrics without name collisions.
func NewExporter(db *coverage.CoverageDB) *Exporter {
	reg := prometheus.NewRegistry()
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "coverage_cover_percentage",
		Help: "Cover percentage of a registered coverage item, 0-100.",
	}, []string{"item"})
	reg.MustRegister(gauge)
	return &Exporter{db: db, gauge: gauge, registry: reg}
}

// Refresh re-reads every registered item's CoverPercentage into the gauge
// vector. Call it on a ticker from the caller's generation loop.
func (e *Exporter) Refresh() {
	for _, name := range e.db.Names() {
		item, err := e.db.Get(name)
		if err != nil {
			continue
		}
		e.gauge.WithLabelValues(name).Set(item.CoverPercentage())
	}
}

// Handler returns the HTTP handler serving this exporter's registry in the
// Prometheus text exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}
