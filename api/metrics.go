package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// calculationsTotal counts calculations by solve mode and outcome.
	calculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_calculations_total",
			Help: "Loan calculations by solve mode and outcome",
		},
		[]string{"mode", "status"},
	)

	calculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "loan_calculation_duration_seconds",
			Help:    "Time spent solving and simulating one loan",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
		[]string{"mode"},
	)

	exportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_exports_total",
			Help: "Rendered loan reports by format",
		},
		[]string{"format"},
	)

	profileOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_profile_operations_total",
			Help: "Saved profile operations by kind and outcome",
		},
		[]string{"op", "status"},
	)
)
