// Package metrics declares the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ExportRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reel_export_rows_total",
		Help: "Rows written to exported CSV files.",
	})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_fetch_failures_total",
		Help: "Failed external provider calls by provider and failure kind.",
	}, []string{"provider", "kind"})

	EnrichmentItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_enrichment_items_total",
		Help: "Items processed by the background enrichment worker by resulting status.",
	}, []string{"status"})

	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reel_import_rows_total",
		Help: "Uploaded CSV rows by classification.",
	}, []string{"class"})
)
