package lifecycle

import (
	"context"
	"fmt"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"
	"vastramitra/services/stages"
)

// AddTask adds a tailor-defined task to an existing order.
func (c *Coordinator) AddTask(ctx context.Context, actor models.Actor, orderID, title string) (*Result, error) {
	if err := Authorize(actor, CmdAddTask); err != nil {
		return nil, err
	}
	res := &Result{BookingID: orderID}
	err := c.withBooking(ctx, orderID, func() error {
		order, err := c.getOrder(ctx, orderID)
		if err != nil {
			return err
		}
		task, err := stages.NewCustomTask(order, title, c.now())
		if err != nil {
			return err
		}
		if err := c.ledger.Set(ctx, models.TaskStageRef(task.ID), task); err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		res.Task = &task
		res.Status = string(task.Status)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateTaskStatus sets the status of one task. Tasks may move freely
// between Pending, In Progress and Done.
func (c *Coordinator) UpdateTaskStatus(ctx context.Context, actor models.Actor, taskID string, status models.TaskStatus) (*Result, error) {
	if err := Authorize(actor, CmdUpdateTaskStatus); err != nil {
		return nil, err
	}
	if !stages.ValidStatus(status) {
		return nil, models.Validation("unknown task status %q", status)
	}

	var task models.TaskStage
	if err := c.ledger.Get(ctx, models.TaskStageRef(taskID), &task); err != nil {
		if isNotFound(err) {
			return nil, models.NotFound("task %s does not exist", taskID)
		}
		return nil, err
	}

	res := &Result{BookingID: task.OrderID, Status: string(status)}
	err := c.withBooking(ctx, task.OrderID, func() error {
		now := c.now()
		if err := c.ledger.Merge(ctx, models.TaskStageRef(taskID), map[string]any{
			"status":    status,
			"updatedAt": now,
		}); err != nil {
			return fmt.Errorf("failed to update task %s: %w", taskID, err)
		}
		task.Status = status
		task.UpdatedAt = now
		res.Task = &task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListTasks returns the tasks of orderID in creation order. The tailor may
// pass an empty orderID to list every task.
func (c *Coordinator) ListTasks(ctx context.Context, actor models.Actor, orderID string) ([]models.TaskStage, error) {
	if err := Authorize(actor, CmdListTasks); err != nil {
		return nil, err
	}
	if orderID == "" {
		if actor.Role != models.RoleTailor {
			return nil, models.PermissionDenied("only the tailor can list every task")
		}
		return ledgerRepo.QueryAs[models.TaskStage](ctx, c.ledger, models.CollTaskStages, "", nil)
	}
	if actor.Role == models.RoleCustomer {
		order, err := c.getOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := authorizeOwner(actor, order.CustomerID); err != nil {
			return nil, err
		}
	}
	return c.stages.ForOrder(ctx, orderID)
}
