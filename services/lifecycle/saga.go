package lifecycle

import (
	"context"
	"errors"
	"fmt"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"

	"go.uber.org/zap"
)

// Transition names used as saga keys.
const (
	transitionConfirm = "appointment.confirm"
	transitionReject  = "appointment.reject"
)

func verifyTransition(paymentID string) string { return "payment.verify." + paymentID }

// sagaStep is one idempotent step of a multi-document transition.
type sagaStep struct {
	name string
	run  func(ctx context.Context) error
}

// loadCursor returns the cursor of transition for bookingID, or nil.
func (c *Coordinator) loadCursor(ctx context.Context, bookingID, transition string) (*models.SagaCursor, error) {
	var cur models.SagaCursor
	err := c.ledger.Get(ctx, models.SagaRef(bookingID, transition), &cur)
	if errors.Is(err, ledgerRepo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saga cursor for %s: %w", bookingID, err)
	}
	return &cur, nil
}

// Cursor exposes the saga cursor of a booking's transition.
func (c *Coordinator) Cursor(ctx context.Context, bookingID, transition string) (*models.SagaCursor, error) {
	return c.loadCursor(ctx, bookingID, transition)
}

// incomplete reports whether cur is an unfinished run.
func incomplete(cur *models.SagaCursor) bool {
	return cur != nil && !cur.Completed
}

// runSaga executes steps in order, resuming after the last completed step of
// an unfinished cursor. PartialWrite errors become warnings and the step
// counts as done. Any other error stops the run and is recorded on the
// cursor. A run that fails before completing any step leaves no cursor.
func (c *Coordinator) runSaga(ctx context.Context, bookingID, transition string, cur *models.SagaCursor, steps []sagaStep, res *Result) error {
	start := 0
	if incomplete(cur) {
		start = cur.LastStep + 1
		c.logger.Info("Resuming saga",
			zap.String("bookingId", bookingID),
			zap.String("transition", transition),
			zap.Int("fromStep", start),
			zap.String("lastError", cur.LastError))
	} else {
		cur = &models.SagaCursor{BookingID: bookingID, Transition: transition, LastStep: -1}
	}

	for i := start; i < len(steps); i++ {
		step := steps[i]
		err := step.run(ctx)
		if err != nil && !errors.Is(err, models.ErrPartialWrite) {
			c.logger.Error("Saga step failed",
				zap.String("bookingId", bookingID),
				zap.String("transition", transition),
				zap.String("step", step.name),
				zap.Error(err))
			if cur.LastStep >= 0 {
				cur.LastError = fmt.Sprintf("%s: %v", step.name, err)
				c.saveCursor(ctx, cur)
			}
			return fmt.Errorf("%s failed at %s: %w", transition, step.name, err)
		}
		res.warn(err)

		cur.LastStep = i
		cur.LastError = ""
		cur.Completed = i == len(steps)-1
		c.saveCursor(ctx, cur)
	}
	return nil
}

// saveCursor persists cur. A lost cursor only means a retry repeats
// idempotent steps, so failures are logged.
func (c *Coordinator) saveCursor(ctx context.Context, cur *models.SagaCursor) {
	cur.UpdatedAt = c.now()
	if err := c.ledger.Set(ctx, models.SagaRef(cur.BookingID, cur.Transition), cur); err != nil {
		c.logger.Warn("Failed to save saga cursor",
			zap.String("bookingId", cur.BookingID),
			zap.String("transition", cur.Transition),
			zap.Error(err))
	}
}
