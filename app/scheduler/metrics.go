package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler cycles, partitioned by outcome (completed, no_token, list_failed, overlapped)
	schedulerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_scheduler_ticks_total",
			Help: "Total number of scheduler cycles by outcome",
		},
		[]string{"outcome"},
	)

	// Publication attempts, partitioned by platform and resulting status
	publishAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_attempts_total",
			Help: "Total number of platform publication attempts by result",
		},
		[]string{"platform", "status"},
	)

	// Duplicate publications prevented by the guard
	publishSkipsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "publish_skips_total",
			Help: "Publications short-circuited because the entry was already published",
		},
		[]string{"platform"},
	)

	// Content items currently being dispatched
	publishInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "publish_inflight_items",
			Help: "Number of content items currently being dispatched",
		},
	)
)
