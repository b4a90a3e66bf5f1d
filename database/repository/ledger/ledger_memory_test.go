package ledgerRepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"vastramitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerSetGetMerge(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	ref := models.OrderRef("a1")

	err := l.Get(ctx, ref, &models.Order{})
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, l.Set(ctx, ref, models.Order{ID: "a1", TotalCost: 1000, Status: models.OrderConfirmed}))
	require.NoError(t, l.Merge(ctx, ref, map[string]any{"status": models.OrderInProgress}))

	var got models.Order
	require.NoError(t, l.Get(ctx, ref, &got))
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, 1000.0, got.TotalCost)
	assert.Equal(t, models.OrderInProgress, got.Status)
}

func TestMemoryLedgerMergeCreatesDocument(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	ref := models.CustomerOrderRef("c1", "a1")

	require.NoError(t, l.Merge(ctx, ref, map[string]any{"id": "a1", "status": "Confirmed"}))

	ok, err := Exists(ctx, l, ref)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "users/c1/orders/a1", ref.Path())
}

func TestMemoryLedgerQueryScopesAndOrders(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	for _, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, l.Set(ctx, models.TaskStageRef(id), models.TaskStage{ID: id, OrderID: "o1"}))
	}
	require.NoError(t, l.Set(ctx, models.TaskStageRef("x"), models.TaskStage{ID: "x", OrderID: "o2"}))
	require.NoError(t, l.Set(ctx, models.NotificationRef("c1", "n1"), models.Notification{ID: "n1"}))
	require.NoError(t, l.Set(ctx, models.NotificationRef("c2", "n2"), models.Notification{ID: "n2"}))

	stages, err := QueryAs[models.TaskStage](ctx, l, models.CollTaskStages, "", map[string]any{"orderId": "o1"})
	require.NoError(t, err)
	require.Len(t, stages, 3)
	assert.Equal(t, "s1", stages[0].ID)
	assert.Equal(t, "s3", stages[2].ID)

	inbox, err := QueryAs[models.Notification](ctx, l, models.CollNotifications, "c1", nil)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "n1", inbox[0].ID)
}

func TestMemoryLedgerCompareAndSetOnlyOnce(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	ref := models.OrderRef("a1")
	require.NoError(t, l.Set(ctx, ref, models.Order{ID: "a1"}))

	won, err := l.CompareAndSet(ctx, ref, "reminderSent", false, true, nil)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = l.CompareAndSet(ctx, ref, "reminderSent", false, true, nil)
	require.NoError(t, err)
	assert.False(t, won)

	_, err = l.CompareAndSet(ctx, models.OrderRef("missing"), "reminderSent", false, true, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryLedgerFaultInjection(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()
	boom := errors.New("unavailable")
	l.SetFault(func(op string, ref models.DocRef) error {
		if ref.Collection == models.CollCustomerOrders {
			return boom
		}
		return nil
	})

	err := l.Merge(ctx, models.CustomerOrderRef("c1", "a1"), map[string]any{"status": "Confirmed"})
	assert.True(t, errors.Is(err, boom))
	assert.NoError(t, l.Merge(ctx, models.OrderRef("a1"), map[string]any{"status": "Confirmed"}))

	l.SetFault(nil)
	assert.NoError(t, l.Merge(ctx, models.CustomerOrderRef("c1", "a1"), map[string]any{"status": "Confirmed"}))
}

func TestMemoryLedgerWatchDeliversSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l := NewMemoryLedger()
	ref := models.OrderRef("a1")

	ch, err := l.Watch(ctx, ref)
	require.NoError(t, err)

	first := <-ch
	assert.False(t, first.Exists)

	require.NoError(t, l.Set(ctx, ref, models.Order{ID: "a1", Status: models.OrderConfirmed}))
	select {
	case snap := <-ch:
		require.True(t, snap.Exists)
		var o models.Order
		require.NoError(t, snap.Decode(&o))
		assert.Equal(t, models.OrderConfirmed, o.Status)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after write")
	}

	cancel()
	require.Eventually(t, func() bool {
		_, open := <-ch
		return !open
	}, time.Second, 10*time.Millisecond)
}
