package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ImportEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediahub_import_entries_total",
			Help: "Imported CSV entries by outcome",
		},
		[]string{"outcome"},
	)

	ImportBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediahub_import_batch_duration_seconds",
			Help:    "Wall time of one import batch",
			Buckets: prometheus.DefBuckets,
		},
	)

	ImportRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediahub_import_runs_active",
			Help: "Import runs currently executing",
		},
	)

	VersusComparisons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediahub_versus_comparisons_total",
			Help: "Applied versus mode decisions",
		},
		[]string{"kind"},
	)

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediahub_catalog_requests_total",
			Help: "Requests sent to external catalogs",
		},
		[]string{"provider", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediahub_api_request_duration_seconds",
			Help:    "HTTP API latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Import outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeCatalog   = "catalog_error"
	OutcomeStore     = "store_error"
	OutcomeBatch     = "batch_error"
	OutcomePanic     = "panic"
)

// RecordCatalogRequest counts one provider response; status 0 means the
// request never got a response.
func RecordCatalogRequest(provider string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	CatalogRequests.WithLabelValues(provider, label).Inc()
}

// RecordAPIRequest observes one handled HTTP request.
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
