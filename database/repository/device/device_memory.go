package deviceRepo

import (
	"context"
	"sync"
	"time"

	"vastramitra/models"
)

// MemoryDeviceRepo keeps push targets in process.
type MemoryDeviceRepo struct {
	mu      sync.RWMutex
	targets map[string]models.PushTarget
}

func NewMemoryDeviceRepo() *MemoryDeviceRepo {
	return &MemoryDeviceRepo{targets: make(map[string]models.PushTarget)}
}

func (r *MemoryDeviceRepo) Get(_ context.Context, recipientID string) (*models.PushTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[recipientID]
	if !ok {
		return nil, ErrNoTarget
	}
	return &t, nil
}

func (r *MemoryDeviceRepo) Upsert(_ context.Context, target models.PushTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.targets[target.RecipientID]
	cur.RecipientID = target.RecipientID
	if target.FCMToken != "" {
		cur.FCMToken = target.FCMToken
	}
	if target.Phone != "" {
		cur.Phone = target.Phone
	}
	cur.UpdatedAt = time.Now()
	r.targets[target.RecipientID] = cur
	return nil
}

func (r *MemoryDeviceRepo) RemoveToken(_ context.Context, recipientID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.targets[recipientID]; ok {
		cur.FCMToken = ""
		cur.UpdatedAt = time.Now()
		r.targets[recipientID] = cur
	}
	return nil
}
