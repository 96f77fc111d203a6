// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route pattern.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "method", "status"},
	)

	// HTTPRequestDuration tracks HTTP request duration by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	// BarterTransitionsTotal counts applied barter status transitions.
	BarterTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_transitions_total",
			Help: "Total barter request status transitions",
		},
		[]string{"from", "to"},
	)

	// BarterRequestsCreatedTotal counts created barter requests.
	BarterRequestsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_requests_created_total",
			Help: "Total barter requests created",
		},
	)

	// ConfirmationFailuresTotal counts rejected confirmation codes.
	ConfirmationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "barter_confirmation_failures_total",
			Help: "Total completion attempts with a wrong confirmation code",
		},
	)

	// NotificationFailuresTotal counts notifications that could not be stored.
	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "barter_notification_failures_total",
			Help: "Total notifications dropped because the emitter failed",
		},
		[]string{"type"},
	)

	// TrustEventsTotal counts trust-affecting events.
	TrustEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trust_events_total",
			Help: "Total trust-affecting events recorded",
		},
		[]string{"event"},
	)
)

// RecordTransition records a barter status change.
func RecordTransition(from, to string) {
	BarterTransitionsTotal.WithLabelValues(from, to).Inc()
}

// RecordNotificationFailure records a dropped notification.
func RecordNotificationFailure(notificationType string) {
	NotificationFailuresTotal.WithLabelValues(notificationType).Inc()
}

// RecordTrustEvent records a trust-affecting event.
func RecordTrustEvent(event string) {
	TrustEventsTotal.WithLabelValues(event).Inc()
}
