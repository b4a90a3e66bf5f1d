package lifecycle

import (
	"context"

	"vastramitra/models"
)

// Subscribe streams snapshots of ref: the current one first, then one per
// change, until ctx ends. Customers may only follow their own views and the
// tasks of their own orders; the tailor may follow anything except another
// user's inbox.
func (c *Coordinator) Subscribe(ctx context.Context, actor models.Actor, ref models.DocRef) (<-chan models.Snapshot, error) {
	if err := Authorize(actor, CmdSubscribe); err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCustomer && ref.Collection == models.CollTaskStages {
		if err := c.ownsTask(ctx, actor, ref.ID); err != nil {
			return nil, err
		}
		return c.ledger.Watch(ctx, ref)
	}
	if err := canWatch(actor, ref); err != nil {
		return nil, err
	}
	return c.ledger.Watch(ctx, ref)
}

// ownsTask checks that task id belongs to an order of the customer actor.
func (c *Coordinator) ownsTask(ctx context.Context, actor models.Actor, id string) error {
	var task models.TaskStage
	if err := c.ledger.Get(ctx, models.TaskStageRef(id), &task); err != nil {
		if isNotFound(err) {
			return models.NotFound("task %s does not exist", id)
		}
		return err
	}
	return authorizeOwner(actor, task.CustomerID)
}

func canWatch(actor models.Actor, ref models.DocRef) error {
	switch ref.Collection {
	case models.CollSagas, models.CollOutbox:
		return models.PermissionDenied("%s cannot be subscribed to", ref.Collection)
	case models.CollNotifications:
		if ref.OwnerID != actor.ID {
			return models.PermissionDenied("notifications of another user")
		}
		return nil
	}
	if actor.Role == models.RoleTailor {
		return nil
	}
	if ref.Collection.Scoped() && ref.OwnerID == actor.ID {
		return nil
	}
	return models.PermissionDenied("customers can only follow their own bookings")
}
