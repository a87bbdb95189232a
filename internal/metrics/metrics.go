package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	MessagesProcessed *prometheus.CounterVec
	CrisisDetected    prometheus.Counter
	AnalyzeDuration   prometheus.Histogram
	ResponderFallback prometheus.Counter
}

// New registers the metrics with the given registerer. Tests pass a fresh
// registry so repeated construction does not panic on double registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		MessagesProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_messages_processed_total",
			Help: "Total number of messages folded into user contexts",
		}, []string{"role"}),
		CrisisDetected: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_crisis_detected_total",
			Help: "Total number of messages classified as a crisis",
		}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "chat_analyze_duration_seconds",
			Help:    "Time taken to classify, fold and persist one message",
			Buckets: prometheus.DefBuckets,
		}),
		ResponderFallback: factory.NewCounter(prometheus.CounterOpts{
			Name: "chat_responder_fallback_total",
			Help: "Total number of responses served from the static fallback text",
		}),
	}
}
