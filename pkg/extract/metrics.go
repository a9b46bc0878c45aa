package extract

import (
	"github.com/athapong/notegraph/pkg/entity"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	extractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "entity_extraction_duration_seconds",
			Help: "Time spent extracting entities from a note",
		},
		[]string{"mode"},
	)

	entitiesExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entity_extracted_total",
			Help: "Number of entities extracted",
		},
		[]string{"entity_type", "source"},
	)
)

func init() {
	prometheus.MustRegister(extractionDuration)
	prometheus.MustRegister(entitiesExtracted)
}

func recordEntities(entities []entity.ParsedEntity) {
	for _, e := range entities {
		entitiesExtracted.WithLabelValues(string(e.Type), string(e.Source)).Inc()
	}
}
