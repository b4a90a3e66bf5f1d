// Package reminder decides when a customer must be nudged to pay the
// balance before delivery, and makes sure that happens at most once per
// order.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/notification"
	"vastramitra/services/orders"
	"vastramitra/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	// LeadDays is how close to delivery the reminder becomes due.
	LeadDays = 2
	// FireHour is the local hour scheduled reminders go out.
	FireHour = 9
)

// Enqueuer is the part of *asynq.Client used to schedule reminders.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysUntil returns whole calendar days from today to deliveryDate.
func DaysUntil(deliveryDate string, today time.Time) (int, error) {
	d, err := time.Parse(dateLayout, deliveryDate)
	if err != nil {
		return 0, fmt.Errorf("invalid delivery date %q: %w", deliveryDate, err)
	}
	return int(d.Sub(dateOnly(today)).Hours() / 24), nil
}

// ShouldRemind reports whether order is due a final-payment reminder:
// delivery within LeadDays of today, none sent yet, balance still open.
func ShouldRemind(order models.Order, today time.Time) bool {
	if order.ReminderSent || order.PaymentStatus == models.PaymentFullPaid {
		return false
	}
	days, err := DaysUntil(order.DeliveryDate, today)
	if err != nil {
		return false
	}
	return days <= LeadDays
}

// Scheduler fires final-payment reminders.
type Scheduler struct {
	ledger   ledgerRepo.Ledger
	views    *orders.Materializer
	notifier notification.Notifier
	queue    Enqueuer
	logger   *zap.Logger
	now      func() time.Time
}

// NewScheduler wires the scheduler. queue may be nil, in which case orders
// far from delivery are left to the daily sweep.
func NewScheduler(l ledgerRepo.Ledger, views *orders.Materializer, notifier notification.Notifier, queue Enqueuer, logger *zap.Logger) *Scheduler {
	return &Scheduler{ledger: l, views: views, notifier: notifier, queue: queue, logger: logger, now: time.Now}
}

// Fire claims order's reminder and, if this call won the claim, notifies
// the customer and copies reminderSent to the other views. It reports
// whether a reminder went out.
func (s *Scheduler) Fire(ctx context.Context, order models.Order) (bool, error) {
	now := s.now()
	claimed, err := s.ledger.CompareAndSet(ctx, models.OrderRef(order.ID), "reminderSent", false, true,
		map[string]any{"updatedAt": now})
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder for order %s: %w", order.ID, err)
	}
	if !claimed {
		s.logger.Debug("Reminder already sent", zap.String("orderId", order.ID))
		return false, nil
	}

	s.notifier.Notify(ctx, notification.EventFinalPaymentReminder, notification.Facts{
		BookingID:     order.ID,
		CustomerID:    order.CustomerID,
		CustomerName:  order.CustomerName,
		ScheduledDate: order.DeliveryDate,
		ScheduledTime: order.DeliveryTime,
		TotalCost:     order.TotalCost,
		AdvancePaid:   order.AdvancePaid,
		BalanceDue:    order.BalanceDue,
	})
	s.logger.Info("Final payment reminder sent", zap.String("orderId", order.ID), zap.String("customerId", order.CustomerID))

	flag := map[string]any{"reminderSent": true, "updatedAt": now}
	var partial error
	if err := s.views.Outbox().Mirror(ctx, order.ID, models.CustomerOrderRef(order.CustomerID, order.ID), flag); err != nil {
		partial = err
	}
	if err := s.views.WriteAppointment(ctx, order.AppointmentID, order.CustomerID, flag); err != nil {
		partial = err
	}
	return true, partial
}

// FireIfDue loads orderID and fires its reminder when it is due today.
func (s *Scheduler) FireIfDue(ctx context.Context, orderID string) (bool, error) {
	var order models.Order
	if err := s.ledger.Get(ctx, models.OrderRef(orderID), &order); err != nil {
		if errors.Is(err, ledgerRepo.ErrNotFound) {
			return false, models.NotFound("order %s does not exist", orderID)
		}
		return false, err
	}
	if order.Status == models.OrderCompleted || !ShouldRemind(order, s.now()) {
		return false, nil
	}
	return s.Fire(ctx, order)
}

// Sweep fires every reminder due today and returns how many went out.
func (s *Scheduler) Sweep(ctx context.Context) (int, error) {
	open, err := ledgerRepo.QueryAs[models.Order](ctx, s.ledger, models.CollOrders, "", map[string]any{"reminderSent": false})
	if err != nil {
		return 0, fmt.Errorf("failed to list orders awaiting reminders: %w", err)
	}

	today := s.now()
	sent := 0
	for _, order := range open {
		if order.Status == models.OrderCompleted || !ShouldRemind(order, today) {
			continue
		}
		fired, err := s.Fire(ctx, order)
		if err != nil && !errors.Is(err, models.ErrPartialWrite) {
			s.logger.Error("Reminder sweep failed for order", zap.String("orderId", order.ID), zap.Error(err))
			continue
		}
		if fired {
			sent++
		}
	}
	if sent > 0 {
		s.logger.Info("Reminder sweep finished", zap.Int("sent", sent))
	}
	return sent, nil
}

// FireAt is when order's reminder becomes due: FireHour local time,
// LeadDays before delivery.
func FireAt(order models.Order, loc *time.Location) (time.Time, error) {
	d, err := time.Parse(dateLayout, order.DeliveryDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid delivery date %q: %w", order.DeliveryDate, err)
	}
	d = d.AddDate(0, 0, -LeadDays)
	return time.Date(d.Year(), d.Month(), d.Day(), FireHour, 0, 0, 0, loc), nil
}

// Schedule enqueues a delayed reminder for an order whose delivery is still
// beyond the reminder window. Orders already inside it are left to Fire.
func (s *Scheduler) Schedule(ctx context.Context, order models.Order) error {
	if s.queue == nil {
		return nil
	}
	now := s.now()
	at, err := FireAt(order, now.Location())
	if err != nil {
		return err
	}
	if !at.After(now) {
		return nil
	}

	task, opts, err := tasks.NewReminderTask(models.ReminderPayload{
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		DeliveryDate: order.DeliveryDate,
		FireDate:     at.Format(dateLayout),
	}, at)
	if err != nil {
		return fmt.Errorf("failed to build reminder task: %w", err)
	}
	if _, err := s.queue.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to schedule reminder for order %s: %w", order.ID, err)
	}
	s.logger.Info("Reminder scheduled", zap.String("orderId", order.ID), zap.Time("fireAt", at))
	return nil
}
