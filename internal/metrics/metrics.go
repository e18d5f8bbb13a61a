package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habit_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "path", "status"},
	)

	CheckInMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "habit_checkin_mutations_total",
			Help: "Check-in mutations by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	StreakLength = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "habit_streak_length",
			Help:    "Streak observed when a habit is re-evaluated",
			Buckets: []float64{0, 1, 3, 7, 14, 30, 60, 100, 365},
		},
		[]string{"frequency"},
	)

	WorkerDroppedJobs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "habit_streak_worker_dropped_jobs_total",
			Help: "Re-evaluation jobs dropped because the queue was full",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func RecordCheckInMutation(action string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	CheckInMutations.WithLabelValues(action, outcome).Inc()
}

func ObserveStreak(frequency string, streak int) {
	StreakLength.WithLabelValues(frequency).Observe(float64(streak))
}

func IncWorkerDropped() {
	WorkerDroppedJobs.Inc()
}
