package metrics

import "github.com/prometheus/client_golang/prometheus"

// Indexing pipeline Prometheus metrics.
var (
	IndexedDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrpress",
			Name:      "indexed_documents_total",
			Help:      "Documents submitted to the search backend",
		},
		[]string{"status"}, // "indexed" / "failed"
	)

	IndexPageDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "solrpress",
			Name:      "index_page_duration_seconds",
			Help:      "Time to build and submit one indexing page",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IndexRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "solrpress",
			Name:      "index_runs_total",
			Help:      "Indexing job runs by outcome",
		},
		[]string{"outcome"}, // "completed" / "paused" / "failed"
	)
)

var registered bool

// Register registers all Prometheus metrics. Must be called once from main.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(IndexedDocumentsTotal)
	prometheus.MustRegister(IndexPageDuration)
	prometheus.MustRegister(IndexRunsTotal)
	registered = true
}
