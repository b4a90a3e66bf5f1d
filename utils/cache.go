package utils

import (
	"context"
	"fmt"
	"time"

	"vastramitra/config"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// LockClient backs the per-booking locks.
var LockClient *redis.Client

// InitRedis connects the lock client. Callers fall back to in-process
// locks when it fails.
func InitRedis() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis (locks): %w", err)
	}
	LockClient = client
	return nil
}

// ReminderQueueOpt addresses the Redis database holding scheduled reminders.
func ReminderQueueOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}
}
