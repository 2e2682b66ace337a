package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics tracks classification outcomes and deletions. It
// implements the core MetricsRecorder port.
type PipelineMetrics struct {
	classificationTotal    *prometheus.CounterVec
	classificationDuration *prometheus.HistogramVec
	deletionsTotal         prometheus.Counter
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	classificationTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenvault",
			Subsystem: "pipeline",
			Name:      "classifications_total",
			Help:      "Total classification attempts by outcome (ok or fallback).",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"outcome"},
	)
	classificationDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "screenvault",
			Subsystem: "pipeline",
			Name:      "classification_duration_seconds",
			Help:      "Vision classifier call duration in seconds by outcome.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"outcome"},
	)
	deletionsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenvault",
			Subsystem: "pipeline",
			Name:      "screenshots_deleted_total",
			Help:      "Total screenshots removed by explicit deletion or cleanup.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)

	return &PipelineMetrics{
		classificationTotal:    classificationTotal,
		classificationDuration: classificationDuration,
		deletionsTotal:         deletionsTotal,
	}
}

// Collectors exposes the underlying collectors for registry registration.
func (m *PipelineMetrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.classificationTotal,
		m.classificationDuration,
		m.deletionsTotal,
	}
}

func (m *PipelineMetrics) ObserveClassification(outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.classificationTotal.WithLabelValues(outcome).Inc()
	m.classificationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveDeletions(count int) {
	if count <= 0 {
		return
	}
	m.deletionsTotal.Add(float64(count))
}
