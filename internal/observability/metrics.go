package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the chat pipeline instrumentation. All vectors are
// labelled by chatbot so per-bot dashboards work without relabelling.
type Metrics struct {
	MessagesTotal      *prometheus.CounterVec
	GenerationFallback *prometheus.CounterVec
	PipelineFailures   *prometheus.CounterVec
	LeadsCaptured      *prometheus.CounterVec
	GenerationSeconds  prometheus.Histogram
}

// NewMetrics builds and registers the chat metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MessagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitchat_messages_total",
			Help: "Chat messages processed, by chatbot.",
		}, []string{"chatbot_id"}),
		GenerationFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitchat_generation_fallback_total",
			Help: "Replies served from the fixed fallback string, by chatbot.",
		}, []string{"chatbot_id"}),
		PipelineFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitchat_pipeline_failures_total",
			Help: "Catastrophic pipeline failures absorbed at the top level, by chatbot.",
		}, []string{"chatbot_id"}),
		LeadsCaptured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orbitchat_leads_captured_total",
			Help: "Leads captured from chat transcripts, by chatbot.",
		}, []string{"chatbot_id"}),
		GenerationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "orbitchat_generation_seconds",
			Help:    "Reply generation latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
	reg.MustRegister(
		m.MessagesTotal,
		m.GenerationFallback,
		m.PipelineFailures,
		m.LeadsCaptured,
		m.GenerationSeconds,
	)
	return m
}
