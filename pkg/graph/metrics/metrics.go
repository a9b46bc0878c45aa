package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// System metrics
	SystemMemoryUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_memory_bytes",
		Help: "Current heap allocation",
	})

	SystemGoroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notegraph_goroutines",
		Help: "Number of goroutines",
	})

	// Pipeline metrics
	PipelineQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "note_pipeline_queue_length",
		Help: "Number of notes waiting to be extracted",
	})

	NoteProcessingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "note_processing_errors_total",
			Help: "Total number of note processing errors",
		},
		[]string{"stage"},
	)

	// Graph metrics
	GraphNodeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relationship_graph_nodes",
			Help: "Number of nodes in the last generated relationship graph",
		},
		[]string{"node_type"},
	)

	GraphEdgeCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relationship_graph_edges",
			Help: "Number of edges in the last generated relationship graph",
		},
		[]string{"edge_type"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_cache_hits_total",
			Help: "Number of extraction cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_cache_misses_total",
			Help: "Number of extraction cache misses",
		},
		[]string{"cache_type"},
	)
)

// UpdateSystemMetrics refreshes process-level gauges.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	SystemMemoryUsage.Set(float64(m.Alloc))
	SystemGoroutines.Set(float64(runtime.NumGoroutine()))
}
