// Package orders keeps the tailor-global and per-customer views of an
// appointment and its order in step. The tailor-global document is written
// first and is authoritative; customer copies go through the Outbox.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/payment"

	"go.uber.org/zap"
)

type Materializer struct {
	ledger ledgerRepo.Ledger
	outbox *Outbox
	logger *zap.Logger
	now    func() time.Time
}

func NewMaterializer(l ledgerRepo.Ledger, outbox *Outbox, logger *zap.Logger) *Materializer {
	return &Materializer{ledger: l, outbox: outbox, logger: logger, now: time.Now}
}

// Build derives the order of a confirmed appointment. The order shares the
// appointment id and carries its totals as of now.
func Build(appt models.Appointment, now time.Time) models.Order {
	totals := payment.Reconcile(payment.Totals{
		TotalCost:     appt.TotalCost,
		AdvancePaid:   appt.AdvancePaid,
		PaymentStatus: appt.PaymentStatus,
	})
	return models.Order{
		ID:             appt.ID,
		AppointmentID:  appt.ID,
		CustomerID:     appt.CustomerID,
		CustomerName:   appt.CustomerName,
		StyleCategory:  appt.StyleCategory,
		StyleReference: appt.StyleReference,
		FabricSource:   appt.FabricSource,
		Address:        appt.Address,
		DeliveryDate:   appt.ScheduledDate,
		DeliveryTime:   appt.ScheduledTime,
		TotalCost:      totals.TotalCost,
		AdvancePaid:    totals.AdvancePaid,
		BalanceDue:     totals.BalanceDue,
		PaymentStatus:  totals.PaymentStatus,
		Status:         models.OrderConfirmed,
		ReminderSent:   appt.ReminderSent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Materialize creates the order of appt in both views. If the order already
// exists it is left as is and only re-mirrored, so repeated calls converge
// on one order. A returned ErrPartialWrite means the authoritative copy was
// written and the customer copy is queued.
func (m *Materializer) Materialize(ctx context.Context, appt models.Appointment) (models.Order, error) {
	var order models.Order
	err := m.ledger.Get(ctx, models.OrderRef(appt.ID), &order)
	switch {
	case err == nil:
		m.logger.Debug("Order already materialized", zap.String("orderId", order.ID))
	case errors.Is(err, ledgerRepo.ErrNotFound):
		order = Build(appt, m.now())
	default:
		return models.Order{}, fmt.Errorf("failed to check order %s: %w", appt.ID, err)
	}

	fields, err := ledgerRepo.ToFields(order)
	if err != nil {
		return models.Order{}, err
	}
	if err := m.WriteOrder(ctx, order.ID, order.CustomerID, fields); err != nil {
		return order, err
	}
	return order, nil
}

// WriteOrder merges fields into orders/{id} and mirrors them to the
// customer's copy.
func (m *Materializer) WriteOrder(ctx context.Context, id, customerID string, fields map[string]any) error {
	if err := m.ledger.Merge(ctx, models.OrderRef(id), fields); err != nil {
		return fmt.Errorf("failed to write order %s: %w", id, err)
	}
	return m.outbox.Mirror(ctx, id, models.CustomerOrderRef(customerID, id), fields)
}

// WriteAppointment merges fields into appointments/{id} and mirrors them to
// the customer's copy.
func (m *Materializer) WriteAppointment(ctx context.Context, id, customerID string, fields map[string]any) error {
	if err := m.ledger.Merge(ctx, models.AppointmentRef(id), fields); err != nil {
		return fmt.Errorf("failed to write appointment %s: %w", id, err)
	}
	return m.outbox.Mirror(ctx, id, models.CustomerAppointmentRef(customerID, id), fields)
}

// Outbox exposes the mirror queue for reconciliation.
func (m *Materializer) Outbox() *Outbox { return m.outbox }
