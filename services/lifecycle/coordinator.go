// Package lifecycle owns the appointment and order state machines. Every
// command carries the acting user, is checked against a central policy and
// runs under a per-booking lock; multi-document transitions run as
// resumable sagas.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/orders"
	"vastramitra/services/reminder"
	"vastramitra/services/stages"

	"go.uber.org/zap"
)

// WarnViewsLag is reported when the authoritative write succeeded but a
// mirrored view is still queued.
const WarnViewsLag = "status updated, some views may lag"

// Result is what a successful command reports back.
type Result struct {
	BookingID   string              `json:"bookingId,omitempty"`
	Status      string              `json:"status,omitempty"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Order       *models.Order       `json:"order,omitempty"`
	Payment     *models.Payment     `json:"payment,omitempty"`
	Task        *models.TaskStage   `json:"task,omitempty"`
	Warnings    []string            `json:"warnings,omitempty"`
}

func (r *Result) warn(err error) {
	if err == nil || !errors.Is(err, models.ErrPartialWrite) {
		return
	}
	for _, w := range r.Warnings {
		if w == WarnViewsLag {
			return
		}
	}
	r.Warnings = append(r.Warnings, WarnViewsLag)
}

// Deps are the collaborators of a Coordinator.
type Deps struct {
	Ledger     ledgerRepo.Ledger
	Views      *orders.Materializer
	Stages     *stages.Service
	Reminders  *reminder.Scheduler
	Dispatcher *notification.Dispatcher
	Locker     Locker
	Logger     *zap.Logger
}

type Coordinator struct {
	ledger     ledgerRepo.Ledger
	views      *orders.Materializer
	stages     *stages.Service
	reminders  *reminder.Scheduler
	dispatcher *notification.Dispatcher
	locks      Locker
	logger     *zap.Logger
	now        func() time.Time
}

func NewCoordinator(d Deps) (*Coordinator, error) {
	if d.Ledger == nil || d.Views == nil || d.Stages == nil || d.Reminders == nil || d.Dispatcher == nil {
		return nil, fmt.Errorf("lifecycle coordinator initialization error: missing dependency")
	}
	if d.Locker == nil {
		d.Locker = NewLocalLocker()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Coordinator{
		ledger:     d.Ledger,
		views:      d.Views,
		stages:     d.Stages,
		reminders:  d.Reminders,
		dispatcher: d.Dispatcher,
		locks:      d.Locker,
		logger:     d.Logger,
		now:        time.Now,
	}, nil
}

// withBooking runs fn while holding bookingID's lock.
func (c *Coordinator) withBooking(ctx context.Context, bookingID string, fn func() error) error {
	release, err := c.locks.Acquire(ctx, "booking:"+bookingID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (c *Coordinator) getAppointment(ctx context.Context, id string) (models.Appointment, error) {
	var appt models.Appointment
	if err := c.ledger.Get(ctx, models.AppointmentRef(id), &appt); err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return appt, models.NotFound("appointment %s does not exist", id)
		}
		return appt, err
	}
	return appt, nil
}

func (c *Coordinator) getOrder(ctx context.Context, id string) (models.Order, error) {
	var order models.Order
	if err := c.ledger.Get(ctx, models.OrderRef(id), &order); err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return order, models.NotFound("order %s does not exist", id)
		}
		return order, err
	}
	return order, nil
}

func appointmentFacts(a models.Appointment) notification.Facts {
	return notification.Facts{
		BookingID:     a.ID,
		CustomerID:    a.CustomerID,
		CustomerName:  a.CustomerName,
		ScheduledDate: a.ScheduledDate,
		ScheduledTime: a.ScheduledTime,
		TotalCost:     a.TotalCost,
		AdvancePaid:   a.AdvancePaid,
		BalanceDue:    a.BalanceDue,
	}
}

func orderFacts(o models.Order) notification.Facts {
	return notification.Facts{
		BookingID:     o.ID,
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		ScheduledDate: o.DeliveryDate,
		ScheduledTime: o.DeliveryTime,
		TotalCost:     o.TotalCost,
		AdvancePaid:   o.AdvancePaid,
		BalanceDue:    o.BalanceDue,
	}
}
