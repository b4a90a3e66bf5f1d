package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/payment"
	"vastramitra/services/reminder"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func validateDraft(d models.AppointmentDraft) error {
	var missing []string
	for name, v := range map[string]string{
		"customerName":  d.CustomerName,
		"phone":         d.Phone,
		"scheduledDate": d.ScheduledDate,
		"scheduledTime": d.ScheduledTime,
		"styleCategory": d.StyleCategory,
		"address":       d.Address,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return models.Validation("missing fields: %s", strings.Join(sorted(missing), ", "))
	}
	if _, err := time.Parse("2006-01-02", d.ScheduledDate); err != nil {
		return models.Validation("scheduledDate must be YYYY-MM-DD, got %q", d.ScheduledDate)
	}
	if d.TotalCost < 0 {
		return models.Validation("totalCost must not be negative")
	}
	return nil
}

// CreateAppointment books a new request for the acting customer. The
// tailor-global view is written first, then the customer's own copy.
func (c *Coordinator) CreateAppointment(ctx context.Context, actor models.Actor, draft models.AppointmentDraft) (*Result, error) {
	if err := Authorize(actor, CmdCreateAppointment); err != nil {
		return nil, err
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	now := c.now()
	totals := payment.Reconcile(payment.Totals{TotalCost: draft.TotalCost})
	appt := models.Appointment{
		ID:             uuid.NewString(),
		CustomerID:     actor.ID,
		CustomerName:   strings.TrimSpace(draft.CustomerName),
		Phone:          draft.Phone,
		Email:          draft.Email,
		ScheduledDate:  draft.ScheduledDate,
		ScheduledTime:  draft.ScheduledTime,
		VisitType:      draft.VisitType,
		StyleCategory:  draft.StyleCategory,
		StyleReference: draft.StyleReference,
		FabricSource:   draft.FabricSource,
		Address:        draft.Address,
		Note:           draft.Note,
		TotalCost:      totals.TotalCost,
		AdvancePaid:    totals.AdvancePaid,
		BalanceDue:     totals.BalanceDue,
		PaymentStatus:  totals.PaymentStatus,
		Status:         models.AppointmentPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	fields, err := ledgerRepo.ToFields(appt)
	if err != nil {
		return nil, err
	}

	res := &Result{BookingID: appt.ID, Status: string(appt.Status), Appointment: &appt}
	err = c.views.WriteAppointment(ctx, appt.ID, appt.CustomerID, fields)
	res.warn(err)
	if err != nil && !isPartial(err) {
		return nil, err
	}
	c.logger.Info("Appointment created", zap.String("appointmentId", appt.ID), zap.String("customerId", appt.CustomerID))
	return res, nil
}

// TransitionAppointment confirms or rejects a pending appointment. A
// confirmation that stopped part way is resumed by issuing it again.
func (c *Coordinator) TransitionAppointment(ctx context.Context, actor models.Actor, id string, next models.AppointmentStatus) (*Result, error) {
	if err := Authorize(actor, CmdTransitionAppointment); err != nil {
		return nil, err
	}
	var transition string
	switch next {
	case models.AppointmentConfirmed:
		transition = transitionConfirm
	case models.AppointmentRejected:
		transition = transitionReject
	default:
		return nil, models.InvalidTransition("appointments can only be confirmed or rejected, not %q", next)
	}

	res := &Result{BookingID: id, Status: string(next)}
	err := c.withBooking(ctx, id, func() error {
		appt, err := c.getAppointment(ctx, id)
		if err != nil {
			return err
		}
		cur, err := c.loadCursor(ctx, id, transition)
		if err != nil {
			return err
		}
		resuming := incomplete(cur) && (appt.Status == models.AppointmentPending || appt.Status == next)
		if !resuming && appt.Status != models.AppointmentPending {
			return models.InvalidTransition("appointment %s is already %s", id, appt.Status)
		}
		if err := c.checkNoOtherTransition(ctx, appt, next); err != nil {
			return err
		}

		var steps []sagaStep
		if next == models.AppointmentConfirmed {
			steps = c.confirmSteps(appt, res)
		} else {
			steps = c.rejectSteps(appt)
		}
		if err := c.runSaga(ctx, id, transition, cur, steps, res); err != nil {
			return err
		}
		appt.Status = next
		res.Appointment = &appt
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.logger.Info("Appointment transitioned", zap.String("appointmentId", id), zap.String("status", string(next)))
	return res, nil
}

// checkNoOtherTransition refuses next while the opposite transition of appt
// is unfinished. A half-done confirmation can only be finished, and an
// existing order rules out a rejection.
func (c *Coordinator) checkNoOtherTransition(ctx context.Context, appt models.Appointment, next models.AppointmentStatus) error {
	other, retry := transitionReject, models.AppointmentRejected
	if next == models.AppointmentRejected {
		other, retry = transitionConfirm, models.AppointmentConfirmed
	}
	cur, err := c.loadCursor(ctx, appt.ID, other)
	if err != nil {
		return err
	}
	if incomplete(cur) {
		return models.InvalidTransition("appointment %s has an unfinished transition, retry %s", appt.ID, retry)
	}
	if next != models.AppointmentRejected {
		return nil
	}
	exists, err := ledgerRepo.Exists(ctx, c.ledger, models.OrderRef(appt.ID))
	if err != nil {
		return fmt.Errorf("failed to check order of %s: %w", appt.ID, err)
	}
	if exists {
		return models.InvalidTransition("appointment %s already has an order, retry %s", appt.ID, models.AppointmentConfirmed)
	}
	return nil
}

func (c *Coordinator) confirmSteps(appt models.Appointment, res *Result) []sagaStep {
	var order models.Order
	loadOrder := func(ctx context.Context) error {
		if order.ID != "" {
			return nil
		}
		o, err := c.getOrder(ctx, appt.ID)
		if err != nil {
			return err
		}
		order = o
		res.Order = &order
		return nil
	}

	return []sagaStep{
		{name: "materialize_order", run: func(ctx context.Context) error {
			o, err := c.views.Materialize(ctx, appt)
			if o.ID != "" {
				order = o
				res.Order = &order
			}
			return err
		}},
		{name: "generate_stages", run: func(ctx context.Context) error {
			if err := loadOrder(ctx); err != nil {
				return err
			}
			_, err := c.stages.Ensure(ctx, order)
			return err
		}},
		{name: "reconcile_balance", run: func(ctx context.Context) error {
			if err := loadOrder(ctx); err != nil {
				return err
			}
			totals := payment.Reconcile(payment.Totals{
				TotalCost:     order.TotalCost,
				AdvancePaid:   order.AdvancePaid,
				PaymentStatus: order.PaymentStatus,
			})
			if totals.BalanceDue == order.BalanceDue {
				return nil
			}
			order.BalanceDue = totals.BalanceDue
			return c.views.WriteOrder(ctx, order.ID, order.CustomerID, totals.Fields())
		}},
		{name: "mirror_appointment_status", run: func(ctx context.Context) error {
			if err := loadOrder(ctx); err != nil {
				return err
			}
			fields := payment.Reconcile(payment.Totals{
				TotalCost:     order.TotalCost,
				AdvancePaid:   order.AdvancePaid,
				PaymentStatus: order.PaymentStatus,
			}).Fields()
			fields["status"] = models.AppointmentConfirmed
			fields["orderStatus"] = order.Status
			fields["updatedAt"] = c.now()
			return c.views.WriteAppointment(ctx, appt.ID, appt.CustomerID, fields)
		}},
		{name: "eager_reminder", run: func(ctx context.Context) error {
			if err := loadOrder(ctx); err != nil {
				return err
			}
			if reminder.ShouldRemind(order, c.now()) {
				_, err := c.reminders.Fire(ctx, order)
				return err
			}
			if err := c.reminders.Schedule(ctx, order); err != nil {
				c.logger.Warn("Failed to schedule reminder, daily sweep will cover it", zap.String("orderId", order.ID), zap.Error(err))
			}
			return nil
		}},
		{name: "notify_confirmed", run: func(ctx context.Context) error {
			c.dispatcher.Notify(ctx, notification.EventAppointmentConfirmed, appointmentFacts(appt))
			return nil
		}},
	}
}

func (c *Coordinator) rejectSteps(appt models.Appointment) []sagaStep {
	return []sagaStep{
		{name: "mirror_appointment_status", run: func(ctx context.Context) error {
			return c.views.WriteAppointment(ctx, appt.ID, appt.CustomerID, map[string]any{
				"status":    models.AppointmentRejected,
				"updatedAt": c.now(),
			})
		}},
		{name: "notify_rejected", run: func(ctx context.Context) error {
			c.dispatcher.Notify(ctx, notification.EventAppointmentRejected, appointmentFacts(appt))
			return nil
		}},
	}
}

// ListAppointments returns every appointment for the tailor and the
// customer's own ones otherwise.
func (c *Coordinator) ListAppointments(ctx context.Context, actor models.Actor) ([]models.Appointment, error) {
	if err := Authorize(actor, CmdReadBookings); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleTailor {
		return ledgerRepo.QueryAs[models.Appointment](ctx, c.ledger, models.CollAppointments, "", nil)
	}
	return ledgerRepo.QueryAs[models.Appointment](ctx, c.ledger, models.CollCustomerAppointments, actor.ID, nil)
}

// GetAppointment reads the view of appointment id that actor is entitled to.
func (c *Coordinator) GetAppointment(ctx context.Context, actor models.Actor, id string) (*models.Appointment, error) {
	if err := Authorize(actor, CmdReadBookings); err != nil {
		return nil, err
	}
	ref := models.AppointmentRef(id)
	if actor.Role == models.RoleCustomer {
		ref = models.CustomerAppointmentRef(actor.ID, id)
	}
	var appt models.Appointment
	if err := c.ledger.Get(ctx, ref, &appt); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("appointment %s does not exist", id)
		}
		return nil, err
	}
	return &appt, nil
}
