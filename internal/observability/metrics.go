// Package observability provides tracing initialization and Prometheus
// metric vectors shared across the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instakilo_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedPagesServed counts feed pages returned, labeled by whether the
	// page was the last one (has_more=false).
	FeedPagesServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instakilo_feed_pages_served_total",
		Help: "Total number of feed pages served",
	}, []string{"has_more"})

	// LikeMutations counts like/unlike mutations by kind and outcome
	// ("ok", "error", "not_found"). Idempotent repeats count as "ok"; the
	// storage layer swallows the conflict, so they are not distinguishable
	// here.
	LikeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instakilo_like_mutations_total",
		Help: "Total number of like mutations by kind and outcome",
	}, []string{"kind", "outcome"})

	// ActiveWebSockets is the gauge of currently connected feed-event clients.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "instakilo_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "instakilo_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)
