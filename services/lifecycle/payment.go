package lifecycle

import (
	"context"
	"fmt"
	"strings"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var submittedEvents = map[models.PaymentKind]notification.Event{
	models.PaymentKindAdvance: notification.EventAdvanceSubmitted,
	models.PaymentKindFinal:   notification.EventFinalSubmitted,
}

var verifiedEvents = map[models.PaymentKind]notification.Event{
	models.PaymentKindAdvance: notification.EventAdvanceVerified,
	models.PaymentKindFinal:   notification.EventFinalVerified,
}

// SubmitPayment records a customer's payment for the tailor to verify. The
// amount is computed here, never taken from the client.
func (c *Coordinator) SubmitPayment(ctx context.Context, actor models.Actor, bookingID string, kind models.PaymentKind, transactionRef string) (*Result, error) {
	if err := Authorize(actor, CmdSubmitPayment); err != nil {
		return nil, err
	}
	if _, ok := submittedEvents[kind]; !ok {
		return nil, models.Validation("unknown payment kind %q", kind)
	}
	transactionRef = strings.TrimSpace(transactionRef)
	if transactionRef == "" {
		return nil, models.Validation("transactionRef is required")
	}

	res := &Result{BookingID: bookingID}
	err := c.withBooking(ctx, bookingID, func() error {
		appt, err := c.getAppointment(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := authorizeOwner(actor, appt.CustomerID); err != nil {
			return err
		}
		amount, err := dueAmount(appt, kind)
		if err != nil {
			return err
		}

		open, err := ledgerRepo.QueryAs[models.Payment](ctx, c.ledger, models.CollPayments, "", map[string]any{
			"orderId": bookingID,
			"kind":    kind,
			"status":  models.PaymentSubmitted,
		})
		if err != nil {
			return fmt.Errorf("failed to check open payments of %s: %w", bookingID, err)
		}
		if len(open) > 0 {
			return models.InvalidTransition("a %s payment for %s is already awaiting verification", kind, bookingID)
		}

		p := models.Payment{
			ID:             uuid.NewString(),
			UserID:         actor.ID,
			OrderID:        bookingID,
			Kind:           kind,
			Amount:         amount,
			Status:         models.PaymentSubmitted,
			TransactionRef: transactionRef,
			CreatedAt:      c.now(),
		}
		if err := c.ledger.Set(ctx, models.PaymentRef(p.ID), p); err != nil {
			return fmt.Errorf("failed to record payment: %w", err)
		}
		res.Payment = &p
		res.Status = string(p.Status)

		facts := appointmentFacts(appt)
		facts.Amount = amount
		c.dispatcher.Notify(ctx, submittedEvents[kind], facts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Payment submitted",
		zap.String("bookingId", bookingID),
		zap.String("kind", string(kind)),
		zap.Float64("amount", res.Payment.Amount))
	return res, nil
}

// dueAmount is what a payment of kind must be for appt right now.
func dueAmount(appt models.Appointment, kind models.PaymentKind) (float64, error) {
	if appt.Status == models.AppointmentRejected {
		return 0, models.InvalidTransition("appointment %s was rejected", appt.ID)
	}
	switch kind {
	case models.PaymentKindAdvance:
		if appt.PaymentStatus != models.PaymentPending {
			return 0, models.InvalidTransition("advance is not due, payment is %s", appt.PaymentStatus)
		}
		return payment.AdvanceAmount(appt.TotalCost), nil
	default:
		if appt.PaymentStatus != models.PaymentAdvancePaid {
			return 0, models.InvalidTransition("final payment is not due, payment is %s", appt.PaymentStatus)
		}
		return appt.BalanceDue, nil
	}
}

// verifiedTotals are the booking totals once p is verified. They depend
// only on the payment and the booking cost, so reapplying them is safe.
func verifiedTotals(appt models.Appointment, p models.Payment) payment.Totals {
	t := payment.Totals{TotalCost: appt.TotalCost, AdvancePaid: appt.AdvancePaid}
	switch p.Kind {
	case models.PaymentKindAdvance:
		t.AdvancePaid = p.Amount
		t.PaymentStatus = models.PaymentAdvancePaid
	case models.PaymentKindFinal:
		t.PaymentStatus = models.PaymentFullPaid
	}
	return payment.Reconcile(t)
}

// reflected reports whether appt already shows the effect of verifying p.
func reflected(appt models.Appointment, p models.Payment) bool {
	switch p.Kind {
	case models.PaymentKindAdvance:
		return appt.PaymentStatus != models.PaymentPending
	case models.PaymentKindFinal:
		return appt.PaymentStatus == models.PaymentFullPaid
	}
	return true
}

// VerifyPayment marks a submitted payment verified, exactly once, and moves
// the booking's payment status everywhere it is shown.
func (c *Coordinator) VerifyPayment(ctx context.Context, actor models.Actor, paymentID string) (*Result, error) {
	if err := Authorize(actor, CmdVerifyPayment); err != nil {
		return nil, err
	}
	var p models.Payment
	if err := c.ledger.Get(ctx, models.PaymentRef(paymentID), &p); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("payment %s does not exist", paymentID)
		}
		return nil, err
	}

	bookingID := p.OrderID
	transition := verifyTransition(paymentID)
	res := &Result{BookingID: bookingID}
	err := c.withBooking(ctx, bookingID, func() error {
		appt, err := c.getAppointment(ctx, bookingID)
		if err != nil {
			return err
		}
		p = models.Payment{}
		if err := c.ledger.Get(ctx, models.PaymentRef(paymentID), &p); err != nil {
			return err
		}
		if appt.Status == models.AppointmentRejected {
			return models.InvalidTransition("appointment %s was rejected", bookingID)
		}
		cur, err := c.loadCursor(ctx, bookingID, transition)
		if err != nil {
			return err
		}

		resuming := incomplete(cur) || (p.Status == models.PaymentVerified && !reflected(appt, p))
		if !resuming {
			if p.Status == models.PaymentVerified {
				return models.InvalidTransition("payment %s is already verified", paymentID)
			}
			if _, err := payment.NextPaymentStatus(appt.PaymentStatus, p.Kind); err != nil {
				return err
			}
		}

		totals := verifiedTotals(appt, p)
		steps := []sagaStep{
			{name: "claim_payment", run: func(ctx context.Context) error {
				claimed, err := c.ledger.CompareAndSet(ctx, models.PaymentRef(paymentID), "status",
					models.PaymentSubmitted, models.PaymentVerified,
					map[string]any{"verifiedAt": c.now()})
				if err != nil {
					return err
				}
				if !claimed && !resuming {
					return models.StaleRead("payment %s was verified concurrently", paymentID)
				}
				return nil
			}},
			{name: "apply_totals", run: func(ctx context.Context) error {
				fields := totals.Fields()
				fields["updatedAt"] = c.now()
				err := c.views.WriteAppointment(ctx, bookingID, appt.CustomerID, fields)
				if err != nil && !isPartial(err) {
					return err
				}
				exists, xerr := ledgerRepo.Exists(ctx, c.ledger, models.OrderRef(bookingID))
				if xerr != nil {
					return xerr
				}
				if !exists {
					return err
				}
				if oerr := c.views.WriteOrder(ctx, bookingID, appt.CustomerID, fields); oerr != nil {
					return oerr
				}
				return err
			}},
			{name: "issue_invoice", run: func(ctx context.Context) error {
				if totals.PaymentStatus != models.PaymentFullPaid {
					return nil
				}
				inv := payment.NewInvoice(appt, p, totals, c.now())
				if err := c.ledger.Set(ctx, models.InvoiceRef(bookingID), inv); err != nil {
					return fmt.Errorf("failed to issue invoice for %s: %w", bookingID, err)
				}
				return nil
			}},
			{name: "notify_verified", run: func(ctx context.Context) error {
				facts := appointmentFacts(appt)
				facts.Amount = p.Amount
				facts.AdvancePaid = totals.AdvancePaid
				facts.BalanceDue = totals.BalanceDue
				c.dispatcher.Notify(ctx, verifiedEvents[p.Kind], facts)
				return nil
			}},
		}
		if err := c.runSaga(ctx, bookingID, transition, cur, steps, res); err != nil {
			return err
		}

		p.Status = models.PaymentVerified
		res.Payment = &p
		res.Status = string(totals.PaymentStatus)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Payment verified",
		zap.String("paymentId", paymentID),
		zap.String("bookingId", bookingID),
		zap.String("paymentStatus", res.Status))
	return res, nil
}

// ListPayments returns payments with the given status, or all of them.
func (c *Coordinator) ListPayments(ctx context.Context, actor models.Actor, status models.PaymentRecordStatus) ([]models.Payment, error) {
	if err := Authorize(actor, CmdListPayments); err != nil {
		return nil, err
	}
	var filter map[string]any
	if status != "" {
		filter = map[string]any{"status": status}
	}
	return ledgerRepo.QueryAs[models.Payment](ctx, c.ledger, models.CollPayments, "", filter)
}

// GetInvoice returns the invoice of a fully paid booking.
func (c *Coordinator) GetInvoice(ctx context.Context, actor models.Actor, orderID string) (*models.Invoice, error) {
	if err := Authorize(actor, CmdReadInvoice); err != nil {
		return nil, err
	}
	var inv models.Invoice
	if err := c.ledger.Get(ctx, models.InvoiceRef(orderID), &inv); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("no invoice for %s yet", orderID)
		}
		return nil, err
	}
	if err := authorizeOwner(actor, inv.CustomerID); err != nil {
		return nil, err
	}
	return &inv, nil
}
