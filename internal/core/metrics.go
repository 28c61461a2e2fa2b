package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// inferredColumnsTotal counts preview columns by guessed type.
	inferredColumnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listabob_inferred_columns_total",
		Help: "Columns classified by CSV preview, by guessed type",
	}, []string{"type"})

	// importsTotal counts materializations by result.
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listabob_imports_total",
		Help: "CSV materializations by result",
	}, []string{"result"})

	importRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listabob_import_rows",
		Help:    "Rows per CSV materialization",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// importFallbacksTotal counts cells stored as raw text or dropped
	// because they did not parse as their column type.
	importFallbacksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listabob_import_fallbacks_total",
		Help: "CSV cells that fell back from their declared type",
	})

	importDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "listabob_import_duration_seconds",
		Help:    "CSV materialization duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "listabob_exports_total",
		Help: "CSV exports by result",
	}, []string{"result"})

	itemsPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listabob_items_purged_total",
		Help: "Soft-deleted items removed by the recycle sweeper",
	})
)
