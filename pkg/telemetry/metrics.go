// Package telemetry exposes engine metrics for the /metrics endpoint.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSignalsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "signals_detected_total",
		Help:      "Number of fresh signals returned by detection passes.",
	})
	metricSignalsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "signals_processed_total",
		Help:      "Number of signals completing the pipeline, by outcome.",
	}, []string{"status"})
	metricGenerationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "generation_fallbacks_total",
		Help:      "Number of posts rendered by the fallback template.",
	})
	metricQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "engine",
		Name:      "queue_depth",
		Help:      "Pending items in the manual-review queue.",
	})
	metricRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "engine",
		Name:      "pipeline_runs_total",
		Help:      "Pipeline runs, by outcome.",
	}, []string{"status"})
)

// RecordDetected counts fresh signals from a detection pass
func RecordDetected(n int) {
	if n > 0 {
		metricSignalsDetected.Add(float64(n))
	}
}

// RecordSignalOutcome counts one signal's terminal pipeline status
func RecordSignalOutcome(status string) {
	metricSignalsProcessed.WithLabelValues(status).Inc()
}

// RecordFallback counts a fallback-template render
func RecordFallback() {
	metricGenerationFallbacks.Inc()
}

// SetQueueDepth reports the current pending queue depth
func SetQueueDepth(depth int) {
	metricQueueDepth.Set(float64(depth))
}

// RecordRun counts one pipeline run outcome
func RecordRun(status string) {
	metricRuns.WithLabelValues(status).Inc()
}
