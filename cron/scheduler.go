package cron

import (
	"context"
	"fmt"
	"time"

	"vastramitra/services/orders"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper fires every reminder that is due.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

// Reconciler replays queued mirror writes.
type Reconciler interface {
	Reconcile(ctx context.Context) (orders.ReconcileReport, error)
}

const jobTimeout = 5 * time.Minute

// StartJobs schedules the reminder sweep and the outbox reconciler and
// starts the cron runner. Stop the returned runner on exit.
func StartJobs(sweepSpec, reconcileSpec string, reminders Sweeper, outbox Reconciler, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(sweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		sent, err := reminders.Sweep(ctx)
		if err != nil {
			logger.Error("Reminder sweep failed", zap.Error(err))
			return
		}
		logger.Info("Reminder sweep done", zap.Int("sent", sent))
	}); err != nil {
		return nil, fmt.Errorf("invalid reminder sweep spec %q: %w", sweepSpec, err)
	}

	if _, err := c.AddFunc(reconcileSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		report, err := outbox.Reconcile(ctx)
		if err != nil {
			logger.Error("Outbox reconcile failed", zap.Error(err))
			return
		}
		if report.Applied > 0 || report.Failed > 0 {
			logger.Info("Outbox reconciled", zap.Int("applied", report.Applied), zap.Int("failed", report.Failed))
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid outbox reconcile spec %q: %w", reconcileSpec, err)
	}

	c.Start()
	logger.Info("Background jobs started", zap.String("reminderSweep", sweepSpec), zap.String("outboxReconcile", reconcileSpec))
	return c, nil
}
