package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crashwatch_dataset_load_duration_seconds",
			Help:    "Time to fetch, parse and classify the dataset",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	DatasetLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashwatch_dataset_loads_total",
			Help: "Dataset load attempts",
		},
		[]string{"status"},
	)

	RecordsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crashwatch_records_loaded",
			Help: "Accident records held in memory",
		},
	)

	ClassificationFallbacks = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crashwatch_classification_fallbacks",
			Help: "Records classified as Other in the loaded dataset",
		},
		[]string{"dimension"},
	)

	ViewComputations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashwatch_view_computations_total",
			Help: "Derived views recomputed for a request",
		},
		[]string{"view"},
	)

	ViewLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crashwatch_view_latency_seconds",
			Help:    "Time to aggregate and build a figure",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"view"},
	)

	PlaceholdersServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashwatch_placeholders_served_total",
			Help: "Placeholder figures returned for empty selections",
		},
		[]string{"view"},
	)

	NarrativeCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crashwatch_narrative_calls_total",
			Help: "Narrative generation calls",
		},
		[]string{"status"},
	)
)
