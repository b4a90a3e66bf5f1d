package payment

import (
	"time"

	"vastramitra/models"
)

// NewInvoice issues the invoice of appt once final payment p has been
// verified and the booking totals are t.
func NewInvoice(appt models.Appointment, p models.Payment, t Totals, now time.Time) models.Invoice {
	return models.Invoice{
		ID:             appt.ID,
		OrderID:        appt.ID,
		CustomerID:     appt.CustomerID,
		CustomerName:   appt.CustomerName,
		Address:        appt.Address,
		StyleCategory:  appt.StyleCategory,
		FabricSource:   appt.FabricSource,
		TotalCost:      t.TotalCost,
		AdvancePaid:    t.AdvancePaid,
		FinalPaid:      p.Amount,
		BalanceDue:     t.BalanceDue,
		PaymentStatus:  t.PaymentStatus,
		PaymentID:      p.ID,
		TransactionRef: p.TransactionRef,
		IssuedAt:       now,
	}
}
