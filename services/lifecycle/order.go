package lifecycle

import (
	"context"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/payment"

	"go.uber.org/zap"
)

// orderFlow is the only path an order may take, one step at a time.
var orderFlow = map[models.OrderStatus]models.OrderStatus{
	models.OrderConfirmed:        models.OrderInProgress,
	models.OrderInProgress:       models.OrderReadyForDelivery,
	models.OrderReadyForDelivery: models.OrderCompleted,
}

var orderEvents = map[models.OrderStatus]notification.Event{
	models.OrderInProgress:       notification.EventOrderInProgress,
	models.OrderReadyForDelivery: notification.EventOrderReady,
	models.OrderCompleted:        notification.EventOrderCompleted,
}

// TransitionOrder advances an order by exactly one status. The new status
// and recomputed balance go to both order views and to the source
// appointment, then the customer is told.
func (c *Coordinator) TransitionOrder(ctx context.Context, actor models.Actor, id string, next models.OrderStatus) (*Result, error) {
	if err := Authorize(actor, CmdTransitionOrder); err != nil {
		return nil, err
	}
	if _, ok := orderEvents[next]; !ok {
		return nil, models.InvalidTransition("orders cannot move to %q", next)
	}

	res := &Result{BookingID: id, Status: string(next)}
	err := c.withBooking(ctx, id, func() error {
		order, err := c.getOrder(ctx, id)
		if err != nil {
			return err
		}
		if want, ok := orderFlow[order.Status]; !ok || want != next {
			return models.InvalidTransition("order %s cannot move from %s to %s", id, order.Status, next)
		}
		appt, err := c.getAppointment(ctx, order.AppointmentID)
		if err != nil {
			return err
		}
		if appt.Status != models.AppointmentConfirmed {
			return models.InvalidTransition("order %s cannot progress while its appointment is %s", id, appt.Status)
		}

		now := c.now()
		totals := payment.Reconcile(payment.Totals{
			TotalCost:     order.TotalCost,
			AdvancePaid:   order.AdvancePaid,
			PaymentStatus: order.PaymentStatus,
		})
		fields := totals.Fields()
		fields["status"] = next
		fields["updatedAt"] = now
		err = c.views.WriteOrder(ctx, id, order.CustomerID, fields)
		res.warn(err)
		if err != nil && !isPartial(err) {
			return err
		}

		apptFields := totals.Fields()
		apptFields["orderStatus"] = next
		apptFields["updatedAt"] = now
		res.warn(c.views.WriteAppointment(ctx, order.AppointmentID, order.CustomerID, apptFields))

		order.Status = next
		order.BalanceDue = totals.BalanceDue
		order.PaymentStatus = totals.PaymentStatus
		order.UpdatedAt = now
		res.Order = &order

		c.dispatcher.Notify(ctx, orderEvents[next], orderFacts(order))
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Order transitioned", zap.String("orderId", id), zap.String("status", string(next)))
	return res, nil
}

// ListOrders returns every order for the tailor and the customer's own ones
// otherwise.
func (c *Coordinator) ListOrders(ctx context.Context, actor models.Actor) ([]models.Order, error) {
	if err := Authorize(actor, CmdReadBookings); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTailor {
		return ledgerRepo.QueryAs[models.Order](ctx, c.ledger, models.CollOrders, "", nil)
	}
	return ledgerRepo.QueryAs[models.Order](ctx, c.ledger, models.CollCustomerOrders, actor.ID, nil)
}

func (c *Coordinator) GetOrder(ctx context.Context, actor models.Actor, id string) (*models.Order, error) {
	if err := Authorize(actor, CmdReadBookings); err != nil {
		return nil, err
	}
	ref := models.OrderRef(id)
	if actor.Role == models.RoleCustomer {
		ref = models.CustomerOrderRef(actor.ID, id)
	}
	var order models.Order
	if err := c.ledger.Get(ctx, ref, &order); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("order %s does not exist", id)
		}
		return nil, err
	}
	return &order, nil
}
