// Package metrics holds the Prometheus collectors for the notification subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StreamConnections is the number of open live connections by transport (sse, websocket).
	StreamConnections = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "notification_stream_connections",
			Help: "Open live notification connections",
		},
		[]string{"transport"},
	)

	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_events_published_total",
			Help: "Events handed to the live bus",
		},
	)

	EventsDelivered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_events_delivered_total",
			Help: "Event writes that reached a connection",
		},
	)

	EventWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notification_event_write_failures_total",
			Help: "Event writes that failed and dropped the connection",
		},
	)

	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Notification records created",
		},
		[]string{"type"},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_creation_failures_total",
			Help: "Notification decisions that failed and were swallowed",
		},
		[]string{"type"},
	)

	RevokedTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "auth_revoked_tokens",
			Help: "Tokens currently held in the logout blacklist",
		},
	)

	RevokedTokensSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_revoked_tokens_swept_total",
			Help: "Expired blacklist entries removed by the sweep",
		},
	)
)
