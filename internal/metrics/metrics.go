// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for the fetch loop.
//
// Collectors:
//   - jstage_pages_total (Counter): pages fetched and parsed
//   - jstage_records_total (Counter): records appended to results
//   - jstage_request_duration_seconds (Histogram): page request latency
//   - jstage_errors_total{class} (Counter): fatal errors by class
//     (transport, status, parse, api)
//   - jstage_total_results (Gauge): last total count reported by the API
//
// The CLI is short-lived, so collectors are registered on a caller-supplied
// registry and dumped in text exposition format with WriteTextfile for a
// node_exporter textfile collector to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Error classes used as the class label of jstage_errors_total.
const (
	ClassTransport = "transport"
	ClassStatus    = "status"
	ClassParse     = "parse"
	ClassAPI       = "api"
)

// Fetch groups the collectors updated by the fetcher. A nil *Fetch is valid
// and records nothing.
type Fetch struct {
	pages        prometheus.Counter
	records      prometheus.Counter
	duration     prometheus.Histogram
	errors       *prometheus.CounterVec
	totalResults prometheus.Gauge
}

// NewFetch registers the fetch collectors on reg.
func NewFetch(reg prometheus.Registerer) *Fetch {
	f := promauto.With(reg)
	return &Fetch{
		pages: f.NewCounter(prometheus.CounterOpts{
			Name: "jstage_pages_total",
			Help: "Search API pages fetched and parsed",
		}),
		records: f.NewCounter(prometheus.CounterOpts{
			Name: "jstage_records_total",
			Help: "Records appended to fetch results",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "jstage_request_duration_seconds",
			Help:    "Search API page request duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "jstage_errors_total",
			Help: "Fatal fetch errors by class",
		}, []string{"class"}),
		totalResults: f.NewGauge(prometheus.GaugeOpts{
			Name: "jstage_total_results",
			Help: "Total result count last reported by the search API",
		}),
	}
}

// ObservePage records one successfully parsed page.
func (m *Fetch) ObservePage(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.pages.Inc()
	m.duration.Observe(elapsed.Seconds())
}

// AddRecords records n appended records.
func (m *Fetch) AddRecords(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.records.Add(float64(n))
}

// ObserveError records one fatal error of the given class.
func (m *Fetch) ObserveError(class string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(class).Inc()
}

// SetTotalResults records the API's total count.
func (m *Fetch) SetTotalResults(total int) {
	if m == nil {
		return
	}
	m.totalResults.Set(float64(total))
}

// WriteTextfile writes everything gathered by g to path in the Prometheus
// text exposition format.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
