// Package metrics defines the Prometheus collectors of an indexing run and
// exposes them for scraping or for a textfile dump.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Document outcomes recorded by DocumentsProcessed.
const (
	OutcomeOK            = "ok"
	OutcomeEmpty         = "empty"
	OutcomeDecodeReplace = "decode_replaced"
)

// Metrics holds all Prometheus collectors for the indexer.
type Metrics struct {
	DocumentsProcessed *prometheus.CounterVec
	TokensAccepted     prometheus.Counter
	VocabularySize     prometheus.Gauge
	PostingsTotal      prometheus.Gauge
	StageDuration      *prometheus.HistogramVec
	RunsTotal          *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and reads them back through
// gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		DocumentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_documents_processed_total",
				Help: "Documents normalized, by outcome. Empty wins over decode_replaced.",
			},
			[]string{"outcome"},
		),
		TokensAccepted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_tokens_accepted_total",
				Help: "Tokens that survived normalization across all documents.",
			},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexer_vocabulary_terms",
				Help: "Distinct terms in the last built index.",
			},
		),
		PostingsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexer_postings",
				Help: "Postings written by the last run.",
			},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "indexer_stage_duration_seconds",
				Help:    "Wall time of each pipeline stage in seconds.",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
			},
			[]string{"stage"},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_runs_total",
				Help: "Indexing runs by status (success, failure).",
			},
			[]string{"status"},
		),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.DocumentsProcessed,
		m.TokensAccepted,
		m.VocabularySize,
		m.PostingsTotal,
		m.StageDuration,
		m.RunsTotal,
	)

	return m
}

// Handler returns the scrape HTTP handler for this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps every collector in the text exposition format, the way
// the node exporter textfile collector expects it.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.gatherer)
}
