// Package metrics defines the Prometheus instruments the server exports
// at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_http_requests_total",
			Help: "HTTP requests handled, by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	// StatusComputations counts accrual engine evaluations.
	StatusComputations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_status_computations_total",
			Help: "Loan status evaluations performed",
		},
	)

	// ComputationErrors counts rejected accrual inputs.
	ComputationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_computation_errors_total",
			Help: "Loan status evaluations rejected as invalid input",
		},
	)

	// Portfolio gauges, refreshed by the snapshot scheduler.
	PortfolioLoans = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_portfolio_loans",
			Help: "Number of loans on the books",
		},
	)
	PortfolioOverdue = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_portfolio_overdue_loans",
			Help: "Number of loans currently overdue",
		},
	)
	PortfolioOutstanding = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_portfolio_outstanding",
			Help: "Total outstanding across the portfolio (principal plus dues)",
		},
	)
	PortfolioCollected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loan_portfolio_collected",
			Help: "Total payments collected across the portfolio",
		},
	)
)
