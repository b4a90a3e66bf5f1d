package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vastramitra/models"
	"vastramitra/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// ReminderFirer is what the worker needs from the reminder scheduler.
type ReminderFirer interface {
	FireIfDue(ctx context.Context, orderID string) (bool, error)
}

// InitReminderWorker starts the asynq worker that fires scheduled
// final-payment reminders. The returned server must be shut down on exit.
func InitReminderWorker(redisOpts asynq.RedisConnOpt, reminders ReminderFirer, logger *zap.Logger) *asynq.Server {
	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeFinalPaymentReminder, handleReminderTask(reminders, logger))

	go func() {
		logger.Info("Starting reminder worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Warn("Reminder worker failed to start",
				zap.Int("attempt", attempts),
				zap.Int("maxAttempts", maxAttempts),
				zap.Error(err))
			if attempts == maxAttempts {
				logger.Error("Reminder worker gave up, the daily sweep still covers reminders")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
	return srv
}

func handleReminderTask(reminders ReminderFirer, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderTask(task)
		if err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("invalid reminder payload: %v: %w", err, asynq.SkipRetry)
		}

		fired, err := reminders.FireIfDue(ctx, p.OrderID)
		switch {
		case errors.Is(err, models.ErrNotFound):
			logger.Warn("Reminder for unknown order", zap.String("orderId", p.OrderID))
			return nil
		case errors.Is(err, models.ErrPartialWrite):
			logger.Warn("Reminder sent, some views may lag", zap.String("orderId", p.OrderID), zap.Error(err))
			return nil
		case err != nil:
			return err
		}
		logger.Debug("Reminder task handled",
			zap.String("orderId", p.OrderID),
			zap.String("fireDate", p.FireDate),
			zap.Bool("fired", fired))
		return nil
	}
}
