package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_events_created_total",
			Help: "Total number of scheduled events created",
		},
	)

	conflictsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_conflicts_detected_total",
			Help: "Total number of scheduling conflicts detected, by kind",
		},
		[]string{"kind"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_resolutions_total",
			Help: "Total number of conflict resolutions applied, by strategy",
		},
		[]string{"strategy"},
	)

	sweepProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_events_processed_total",
			Help: "Total number of due events promoted to completed",
		},
	)

	sweepFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sweep_failures_total",
			Help: "Total number of due-event promotions that failed and were left for retry",
		},
	)
)
