// Package metrics provides Prometheus metrics for the thread pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trending"

var (
	// SourceFetchTotal counts source fetches by outcome.
	SourceFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_total",
			Help:      "Total number of source fetches",
		},
		[]string{"source", "status"},
	)

	SourceFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Duration of source fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	SourceItems = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_items",
			Help:      "Items returned per source fetch",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"source"},
	)

	// DuplicatesDropped counts items removed by exact-link or fuzzy title dedup.
	DuplicatesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped_total",
			Help:      "Items dropped as duplicates",
		},
		[]string{"reason"},
	)

	GenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_total",
			Help:      "Total number of content generation calls",
		},
		[]string{"provider", "status"},
	)

	DeliveryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_total",
			Help:      "Total number of delivery attempts",
		},
		[]string{"channel", "status"},
	)

	// RunsTotal counts pipeline runs per slot and final status.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of pipeline runs",
		},
		[]string{"slot", "status"},
	)

	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs in seconds",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"slot"},
	)
)

// RecordFetch records one source fetch.
func RecordFetch(source, status string, items int, duration float64) {
	SourceFetchTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration)
	SourceItems.WithLabelValues(source).Observe(float64(items))
}

func RecordDuplicates(reason string, n int) {
	if n > 0 {
		DuplicatesDropped.WithLabelValues(reason).Add(float64(n))
	}
}

func RecordGeneration(provider, status string) {
	GenerationTotal.WithLabelValues(provider, status).Inc()
}

func RecordDelivery(channel, status string) {
	DeliveryTotal.WithLabelValues(channel, status).Inc()
}

// RecordRun records a finished pipeline run.
func RecordRun(slot, status string, duration float64) {
	RunsTotal.WithLabelValues(slot, status).Inc()
	RunDuration.WithLabelValues(slot).Observe(duration)
}
