package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// formatInvalid labels queries with an unknown result format
const formatInvalid = "invalid"

var (
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentserver_topics_queries_total",
			Help: "Total number of topic queries",
		},
		[]string{"format", "status"},
	)

	queryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contentserver_topics_query_duration_seconds",
			Help:    "Duration of topic queries including graph loading",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"format"},
	)

	queryResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contentserver_topics_query_results",
			Help:    "Number of result nodes per topic query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	pathResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contentserver_topics_path_resolutions_total",
			Help: "Total number of inherited path resolutions",
		},
		[]string{"status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
