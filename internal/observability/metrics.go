package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "powerbot"

var (
	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Total number of processed updates",
		},
		[]string{"type", "status"},
	)

	updateProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_processing_duration_seconds",
			Help:      "Time spent processing updates",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of dispatched commands",
		},
		[]string{"command", "status"},
	)

	spamActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spam_actions_total",
			Help:      "Total number of anti-spam triggers",
		},
		[]string{"action"},
	)

	priceAPIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "price_api_requests_total",
			Help:      "Total number of price API requests",
		},
		[]string{"endpoint", "status"},
	)
)

// RecordUpdate records one processed update
func RecordUpdate(updateType, status string, elapsed time.Duration) {
	updatesTotal.WithLabelValues(updateType, status).Inc()
	updateProcessingDuration.WithLabelValues(updateType).Observe(elapsed.Seconds())
}

func RecordCommand(command, status string) {
	commandsTotal.WithLabelValues(command, status).Inc()
}

// RecordSpamAction records an anti-spam trigger
func RecordSpamAction(action string) {
	spamActionsTotal.WithLabelValues(action).Inc()
}

func RecordPriceAPIRequest(endpoint, status string) {
	priceAPIRequestsTotal.WithLabelValues(endpoint, status).Inc()
}
