package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueueOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfair_queue_operations_total",
			Help: "Queue operations by outcome",
		},
		[]string{"operation", "status"},
	)

	CallOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfair_call_operations_total",
			Help: "Call session operations by outcome",
		},
		[]string{"operation", "status"},
	)

	ActiveCalls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfair_active_calls",
			Help: "Active call sessions, reset from the store on startup and on every staleness sweep",
		},
	)

	CallsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfair_calls_ended_total",
			Help: "Ended call sessions by reason",
		},
		[]string{"reason"},
	)

	CallDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobfair_call_duration_seconds",
			Help:    "Duration of ended call sessions",
			Buckets: prometheus.ExponentialBuckets(30, 2, 9),
		},
	)

	RoomProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfair_room_provider_errors_total",
			Help: "Failed calls to the video room provider",
		},
		[]string{"operation"},
	)

	FanoutPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobfair_fanout_publishes_total",
			Help: "Notification publishes by outcome",
		},
		[]string{"status"},
	)

	StaleSessionsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobfair_stale_sessions_swept_total",
			Help: "Active sessions force-ended by the staleness sweep",
		},
	)

	OnlineUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "jobfair_online_users",
			Help: "Users with an open websocket on this instance",
		},
	)
)

// Outcome maps an error to a status label.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
