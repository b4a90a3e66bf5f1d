package tasks

import (
	"encoding/json"
	"time"

	"vastramitra/models"

	"github.com/hibiken/asynq"
)

const TypeFinalPaymentReminder = "reminder:final_payment"

// NewReminderTask builds the scheduled final-payment reminder of one order.
// The task id is derived from the order so re-scheduling is a no-op.
func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeFinalPaymentReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.TaskID("final-payment-reminder:" + payload.OrderID),
		asynq.MaxRetry(5),
	}

	return task, opts, nil
}

// ParseReminderTask decodes the payload of a reminder task.
func ParseReminderTask(t *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
