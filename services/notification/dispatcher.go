// Package notification decides what each lifecycle transition tells whom,
// stores it in the recipient's inbox and hands it to a delivery gateway.
package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier is what the lifecycle components emit events through.
type Notifier interface {
	Notify(ctx context.Context, event Event, f Facts) []models.Notification
}

// Dispatcher writes inbox entries and pushes them. Delivery is advisory:
// failures are logged and never returned.
type Dispatcher struct {
	decider Decider
	ledger  ledgerRepo.Ledger
	gateway Gateway
	logger  *zap.Logger
	now     func() time.Time
}

func NewDispatcher(decider Decider, l ledgerRepo.Ledger, gateway Gateway, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{decider: decider, ledger: l, gateway: gateway, logger: logger, now: time.Now}
}

// Notify renders event and delivers every resulting message. It returns the
// inbox entries that were stored.
func (d *Dispatcher) Notify(ctx context.Context, event Event, f Facts) []models.Notification {
	var stored []models.Notification
	for _, msg := range d.decider.Decide(event, f) {
		if msg.RecipientID == "" {
			d.logger.Warn("Notification has no recipient", zap.String("event", string(event)), zap.String("bookingId", f.BookingID))
			continue
		}
		n := models.Notification{
			ID:          uuid.NewString(),
			RecipientID: msg.RecipientID,
			Kind:        string(event),
			Title:       msg.Title,
			Body:        msg.Body,
			Timestamp:   d.now(),
			Data:        msg.Data,
		}
		if err := d.ledger.Set(ctx, models.NotificationRef(n.RecipientID, n.ID), n); err != nil {
			d.logger.Error("Failed to store notification",
				zap.String("event", string(event)),
				zap.String("recipientId", n.RecipientID),
				zap.Error(err))
		} else {
			stored = append(stored, n)
		}

		if err := d.gateway.Send(ctx, pushOf(n)); err != nil {
			level := d.logger.Error
			if errors.Is(err, ErrNoRoute) {
				level = d.logger.Debug
			}
			level("Failed to push notification",
				zap.String("event", string(event)),
				zap.String("recipientId", n.RecipientID),
				zap.Error(err))
		}
	}
	return stored
}

func pushOf(n models.Notification) Push {
	data := map[string]string{
		"notificationId": n.ID,
		"kind":           n.Kind,
	}
	if n.Data != nil {
		data["screen"] = n.Data.Screen
		if n.Data.Link != "" {
			data["link"] = n.Data.Link
		}
		for k, v := range n.Data.Params {
			data[k] = v
		}
	}
	return Push{RecipientID: n.RecipientID, Title: n.Title, Body: n.Body, Data: data}
}

// Inbox lists recipientID's notifications, newest first.
func (d *Dispatcher) Inbox(ctx context.Context, recipientID string) ([]models.Notification, error) {
	items, err := ledgerRepo.QueryAs[models.Notification](ctx, d.ledger, models.CollNotifications, recipientID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", recipientID, err)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// MarkRead flags one of recipientID's notifications as read.
func (d *Dispatcher) MarkRead(ctx context.Context, recipientID, id string) error {
	ref := models.NotificationRef(recipientID, id)
	ok, err := ledgerRepo.Exists(ctx, d.ledger, ref)
	if err != nil {
		return fmt.Errorf("failed to read notification %s: %w", id, err)
	}
	if !ok {
		return models.NotFound("notification %s does not exist", id)
	}
	if err := d.ledger.Merge(ctx, ref, map[string]any{"read": true}); err != nil {
		return fmt.Errorf("failed to mark notification %s read: %w", id, err)
	}
	return nil
}
