// Package metrics provides Prometheus metrics for indexing runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds every collector on its own registry so each process (and
// each test) starts from zero. All methods are no-ops on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	BillsTotal         *prometheus.CounterVec
	VersionsBuilt      prometheus.Counter
	VersionsRejected   *prometheus.CounterVec
	CitationsExtracted prometheus.Counter

	SinkWritesTotal   *prometheus.CounterVec
	SinkWriteDuration *prometheus.HistogramVec

	LastRunTimestamp prometheus.Gauge
	LastRunDuration  prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		BillsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billindex_bills_total",
			Help: "Bills processed, by outcome",
		}, []string{"outcome"}),
		VersionsBuilt: factory.NewCounter(prometheus.CounterOpts{
			Name: "billindex_versions_built_total",
			Help: "Version records built",
		}),
		VersionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billindex_versions_rejected_total",
			Help: "Version files dropped, by reason",
		}, []string{"reason"}),
		CitationsExtracted: factory.NewCounter(prometheus.CounterOpts{
			Name: "billindex_citations_extracted_total",
			Help: "Deduplicated citations stored on version records",
		}),
		SinkWritesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "billindex_sink_writes_total",
			Help: "Writes to the document store and search index",
		}, []string{"sink", "collection", "status"}),
		SinkWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "billindex_sink_write_duration_seconds",
			Help:    "Duration of sink writes in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"sink", "collection"}),
		LastRunTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "billindex_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		LastRunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "billindex_last_run_duration_seconds",
			Help: "Duration of the last run in seconds",
		}),
	}
}

// RecordBill counts a bill outcome: indexed, skipped or failed.
func (m *Metrics) RecordBill(outcome string) {
	if m == nil {
		return
	}
	m.BillsTotal.WithLabelValues(outcome).Inc()
}

// RecordVersion counts a built version and its citations.
func (m *Metrics) RecordVersion(citations int) {
	if m == nil {
		return
	}
	m.VersionsBuilt.Inc()
	m.CitationsExtracted.Add(float64(citations))
}

// RecordRejection counts a dropped version file.
func (m *Metrics) RecordRejection(reason string) {
	if m == nil {
		return
	}
	m.VersionsRejected.WithLabelValues(reason).Inc()
}

// RecordSinkWrite records one write and how long it took.
func (m *Metrics) RecordSinkWrite(sink, collection string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SinkWritesTotal.WithLabelValues(sink, collection, status).Inc()
	m.SinkWriteDuration.WithLabelValues(sink, collection).Observe(duration.Seconds())
}

// RecordRun stores when the run finished and how long it took.
func (m *Metrics) RecordRun(finished time.Time, duration time.Duration) {
	if m == nil {
		return
	}
	m.LastRunTimestamp.Set(float64(finished.Unix()))
	m.LastRunDuration.Set(duration.Seconds())
}

// Push sends the registry to a Prometheus Pushgateway. Batch runs exit
// before a scrape could reach them.
func (m *Metrics) Push(gatewayURL, job string) error {
	if m == nil || gatewayURL == "" {
		return nil
	}
	if err := push.New(gatewayURL, job).Gatherer(m.Registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
