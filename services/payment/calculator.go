// Package payment computes the advance/balance split of a booking and the
// payment-status transitions that follow verified payments.
package payment

import (
	"math"

	"vastramitra/models"
)

// AdvanceRate is the share of the total collected before work starts.
const AdvanceRate = 0.30

// AdvanceAmount returns the advance due for totalCost, rounded to a whole
// currency unit (half away from zero).
func AdvanceAmount(totalCost float64) float64 {
	return math.Round(totalCost * AdvanceRate)
}

// BalanceDue returns what is left to pay, never negative.
func BalanceDue(totalCost, advancePaid float64) float64 {
	return math.Max(0, totalCost-advancePaid)
}

// FinalAmount is the final instalment when the advance was paid in full.
func FinalAmount(totalCost float64) float64 {
	return totalCost - AdvanceAmount(totalCost)
}

// NextPaymentStatus returns the status after a payment of kind has been
// verified against a booking currently in status current.
func NextPaymentStatus(current models.PaymentStatus, verified models.PaymentKind) (models.PaymentStatus, error) {
	switch {
	case current == models.PaymentPending && verified == models.PaymentKindAdvance:
		return models.PaymentAdvancePaid, nil
	case current == models.PaymentAdvancePaid && verified == models.PaymentKindFinal:
		return models.PaymentFullPaid, nil
	case current == models.PaymentFullPaid:
		return current, models.InvalidTransition("payment is already %s", current)
	}
	return current, models.InvalidTransition("cannot apply a verified %s payment while payment status is %s", verified, current)
}

// Totals is the money snapshot written together onto every view.
type Totals struct {
	TotalCost     float64
	AdvancePaid   float64
	BalanceDue    float64
	PaymentStatus models.PaymentStatus
}

// Reconcile recomputes the balance from total and advance, and forces it to
// zero once the booking is fully paid.
func Reconcile(t Totals) Totals {
	if t.PaymentStatus == "" {
		t.PaymentStatus = models.PaymentPending
	}
	t.BalanceDue = BalanceDue(t.TotalCost, t.AdvancePaid)
	if t.PaymentStatus == models.PaymentFullPaid {
		t.BalanceDue = 0
	}
	return t
}

// Fields renders t as ledger merge fields.
func (t Totals) Fields() map[string]any {
	return map[string]any{
		"totalCost":     t.TotalCost,
		"advancePaid":   t.AdvancePaid,
		"balanceDue":    t.BalanceDue,
		"paymentStatus": t.PaymentStatus,
	}
}
