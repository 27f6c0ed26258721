/*
scheduler.go - Portfolio snapshot scheduler

PURPOSE:
  Periodically recomputes the portfolio summary and publishes it to the
  Prometheus gauges, so dashboards see fresh aggregates without a client
  hitting /api/summary. The engine itself stays pure; the scheduler is
  just a clocked caller.

CONFIGURATION:
  - Schedule: cron expression (default "@hourly")
  - Enabled: whether the scheduler runs at all

USAGE:
  scheduler := NewSnapshotScheduler(service, log, "@hourly")
  if err := scheduler.Start(); err != nil { ... }
  // ... later
  scheduler.Stop()

SEE ALSO:
  - metrics/metrics.go: The gauges this refreshes
  - ledger/summary.go: The computation
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/warp/loan-engine/accrual"
	"github.com/warp/loan-engine/ledger"
	"github.com/warp/loan-engine/metrics"
)

// SnapshotScheduler refreshes portfolio gauges on a cron schedule.
type SnapshotScheduler struct {
	Service  *ledger.Service
	Log      *logrus.Logger
	Schedule string

	cron *cron.Cron
}

// NewSnapshotScheduler creates a scheduler. schedule is a cron expression
// ("@hourly", "*/15 * * * *", ...).
func NewSnapshotScheduler(service *ledger.Service, log *logrus.Logger, schedule string) *SnapshotScheduler {
	return &SnapshotScheduler{
		Service:  service,
		Log:      log,
		Schedule: schedule,
	}
}

// Start registers the cron job and runs one snapshot immediately.
func (s *SnapshotScheduler) Start() error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.Schedule, s.Snapshot); err != nil {
		return err
	}
	s.cron.Start()
	s.Log.WithField("schedule", s.Schedule).Info("snapshot scheduler started")

	s.Snapshot()
	return nil
}

// Stop halts the scheduler and waits for a running snapshot to finish.
func (s *SnapshotScheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		s.Log.Info("snapshot scheduler stopped")
	}
}

// Snapshot recomputes the summary at today's date and publishes the gauges.
func (s *SnapshotScheduler) Snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sum, err := s.Service.Summary(ctx, accrual.DateOf(time.Now()))
	if err != nil {
		s.Log.WithError(err).Error("portfolio snapshot failed")
		return
	}

	metrics.PortfolioLoans.Set(float64(sum.TotalCustomers))
	metrics.PortfolioOverdue.Set(float64(sum.OverdueCount))
	metrics.PortfolioOutstanding.Set(sum.TotalOutstanding.InexactFloat64())
	metrics.PortfolioCollected.Set(sum.TotalCollected.InexactFloat64())

	s.Log.WithFields(logrus.Fields{
		"loans":       sum.TotalCustomers,
		"overdue":     sum.OverdueCount,
		"outstanding": sum.TotalOutstanding.String(),
		"collected":   sum.TotalCollected.String(),
	}).Info("portfolio snapshot")
}
