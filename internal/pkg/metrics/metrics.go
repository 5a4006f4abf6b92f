package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trust boundary counters. Labels are kept low-cardinality; never put user
// identifiers or message text in them.
var (
	ModerationVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorfox_moderation_verdicts_total",
			Help: "Moderation decisions by layer (external, keyword, none)",
		},
		[]string{"layer"},
	)

	ClassifierFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorfox_moderation_classifier_failures_total",
			Help: "External classifier calls that failed open to the keyword layer",
		},
		[]string{"reason"},
	)

	WebhookOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorfox_webhook_outcomes_total",
			Help: "Payment webhook deliveries by terminal stage",
		},
		[]string{"outcome"},
	)

	UpstreamCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutorfox_upstream_calls_total",
			Help: "Generator call sequences by result",
		},
		[]string{"result"},
	)

	UpstreamRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tutorfox_upstream_retries_total",
			Help: "Retries scheduled because the generator reported it was loading",
		},
	)
)
