package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InferenceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdstudio",
			Name:      "inference_requests_total",
			Help:      "Total inference invocations",
		},
		[]string{"endpoint", "status"},
	)

	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "sdstudio",
			Name:      "inference_duration_seconds",
			Help:      "Inference invocation duration in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		},
		[]string{"endpoint"},
	)

	ObjectOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "sdstudio",
			Name:      "object_operations_total",
			Help:      "Total object store operations",
		},
		[]string{"operation", "status"},
	)

	GenerationsPersistedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sdstudio",
			Name:      "generations_persisted_total",
			Help:      "Generations written to the index",
		},
	)

	PartialDeletesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "sdstudio",
			Name:      "partial_deletes_total",
			Help:      "Deletes that left the index record in place",
		},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordInference records one endpoint invocation.
func RecordInference(endpoint string, err error, durationSec float64) {
	InferenceRequestsTotal.WithLabelValues(endpoint, status(err)).Inc()
	InferenceDuration.WithLabelValues(endpoint).Observe(durationSec)
}

// RecordObjectOperation records one object store call.
func RecordObjectOperation(operation string, err error) {
	ObjectOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

func RecordPersisted() {
	GenerationsPersistedTotal.Inc()
}

func RecordPartialDelete() {
	PartialDeletesTotal.Inc()
}
