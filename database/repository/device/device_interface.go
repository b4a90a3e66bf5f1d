package deviceRepo

import (
	"context"
	"errors"

	"vastramitra/models"
)

var ErrNoTarget = errors.New("no push target registered")

// DeviceRepository stores how each recipient can be reached.
type DeviceRepository interface {
	// Get returns the push target of recipientID or ErrNoTarget.
	Get(ctx context.Context, recipientID string) (*models.PushTarget, error)
	// Upsert registers or refreshes a recipient's token and phone.
	Upsert(ctx context.Context, target models.PushTarget) error
	// RemoveToken forgets a recipient's push token, keeping the phone.
	RemoveToken(ctx context.Context, recipientID string) error
}
