package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/utils"

	"go.uber.org/zap"
)

// Outbox queues mirror writes so a failed copy is retried until every view
// of a booking converges. There is at most one entry per target document.
type Outbox struct {
	ledger ledgerRepo.Ledger
	logger *zap.Logger
	locks  *utils.KeyedMutex
	now    func() time.Time
}

func NewOutbox(l ledgerRepo.Ledger, logger *zap.Logger) *Outbox {
	return &Outbox{ledger: l, logger: logger, locks: utils.NewKeyedMutex(), now: time.Now}
}

// ReconcileReport summarises one reconciler pass.
type ReconcileReport struct {
	Applied int
	Failed  int
}

// Mirror writes fields to target, folding them over any pending entry for
// the same target first. On failure the merged entry stays queued and a
// PartialWrite error is returned.
func (o *Outbox) Mirror(ctx context.Context, bookingID string, target models.DocRef, fields map[string]any) error {
	unlock := o.locks.Lock(target.Path())
	defer unlock()

	now := o.now()
	entry, err := o.load(ctx, target)
	if err != nil {
		o.logger.Warn("Outbox read failed, queueing fresh entry", zap.String("target", target.Path()), zap.Error(err))
	}
	if entry == nil {
		entry = &models.OutboxEntry{
			ID:        target.Path(),
			BookingID: bookingID,
			Target:    target,
			Fields:    map[string]any{},
			CreatedAt: now,
		}
	}
	for k, v := range fields {
		entry.Fields[k] = v
	}
	entry.UpdatedAt = now

	queued := true
	if err := o.ledger.Set(ctx, models.OutboxRef(target), entry); err != nil {
		queued = false
		o.logger.Warn("Could not queue mirror write", zap.String("target", target.Path()), zap.Error(err))
	}
	return o.apply(ctx, entry, queued)
}

// Reconcile retries every pending entry, oldest first.
func (o *Outbox) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport
	pending, err := ledgerRepo.QueryAs[models.OutboxEntry](ctx, o.ledger, models.CollOutbox, "", nil)
	if err != nil {
		return report, fmt.Errorf("failed to list outbox: %w", err)
	}
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if o.retry(ctx, p.Target) {
			report.Applied++
		} else {
			report.Failed++
		}
	}
	if report.Applied+report.Failed > 0 {
		o.logger.Info("Outbox reconciled", zap.Int("applied", report.Applied), zap.Int("failed", report.Failed))
	}
	return report, nil
}

// Pending lists queued mirror writes for one booking.
func (o *Outbox) Pending(ctx context.Context, bookingID string) ([]models.OutboxEntry, error) {
	return ledgerRepo.QueryAs[models.OutboxEntry](ctx, o.ledger, models.CollOutbox, "", map[string]any{"bookingId": bookingID})
}

func (o *Outbox) retry(ctx context.Context, target models.DocRef) bool {
	unlock := o.locks.Lock(target.Path())
	defer unlock()

	entry, err := o.load(ctx, target)
	if err != nil {
		o.logger.Error("Failed to load outbox entry", zap.String("target", target.Path()), zap.Error(err))
		return false
	}
	if entry == nil {
		return true
	}
	return o.apply(ctx, entry, true) == nil
}

// apply writes entry to its target. Caller holds the target lock.
func (o *Outbox) apply(ctx context.Context, entry *models.OutboxEntry, queued bool) error {
	ref := models.OutboxRef(entry.Target)
	if err := o.ledger.Merge(ctx, entry.Target, entry.Fields); err != nil {
		if queued {
			entry.Attempts++
			entry.LastError = err.Error()
			entry.UpdatedAt = o.now()
			if serr := o.ledger.Set(ctx, ref, entry); serr != nil {
				o.logger.Error("Failed to record outbox attempt", zap.String("target", entry.ID), zap.Error(serr))
			}
		}
		o.logger.Warn("Mirror write failed",
			zap.String("bookingId", entry.BookingID),
			zap.String("target", entry.ID),
			zap.Int("attempts", entry.Attempts),
			zap.Error(err))
		return models.PartialWrite("%s not updated: %v", entry.ID, err)
	}
	if queued {
		if err := o.ledger.Delete(ctx, ref); err != nil {
			o.logger.Warn("Failed to clear outbox entry", zap.String("target", entry.ID), zap.Error(err))
		}
	}
	return nil
}

func (o *Outbox) load(ctx context.Context, target models.DocRef) (*models.OutboxEntry, error) {
	var entry models.OutboxEntry
	err := o.ledger.Get(ctx, models.OutboxRef(target), &entry)
	if errors.Is(err, ledgerRepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox entry for %s: %w", target.Path(), err)
	}
	if entry.Fields == nil {
		entry.Fields = map[string]any{}
	}
	return &entry, nil
}
