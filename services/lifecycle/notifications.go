package lifecycle

import (
	"context"

	"vastramitra/models"
)

// Inbox lists the acting user's notifications, newest first.
func (c *Coordinator) Inbox(ctx context.Context, actor models.Actor) ([]models.Notification, error) {
	if err := Authorize(actor, CmdReadInbox); err != nil {
		return nil, err
	}
	return c.dispatcher.Inbox(ctx, actor.ID)
}

// MarkNotificationRead flags one of the acting user's notifications. Only
// the recipient can reach it, so another user's id reads as NotFound.
func (c *Coordinator) MarkNotificationRead(ctx context.Context, actor models.Actor, id string) error {
	if err := Authorize(actor, CmdMarkNotificationRead); err != nil {
		return err
	}
	return c.dispatcher.MarkRead(ctx, actor.ID, id)
}
