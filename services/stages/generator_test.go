package stages

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOrder() models.Order {
	return models.Order{ID: "a1", CustomerID: "c1", CustomerName: "Asha", Status: models.OrderConfirmed}
}

func TestGenerateFixedOrder(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	got := Generate(testOrder(), now)

	require.Len(t, got, 4)
	for i, stage := range got {
		assert.Equal(t, Order[i], stage.StageName)
		assert.Equal(t, models.TaskPending, stage.Status)
		assert.Equal(t, "a1", stage.OrderID)
		assert.Equal(t, "Asha", stage.CustomerName)
		assert.False(t, stage.Custom)
	}

	sorted := append([]models.TaskStage(nil), got...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.Before(sorted[j].CreatedAt) })
	assert.Equal(t, got, sorted)
}

func TestStageIDsAreStablePerOrder(t *testing.T) {
	assert.Equal(t, StageID("a1", models.StageCutting), StageID("a1", models.StageCutting))
	assert.NotEqual(t, StageID("a1", models.StageCutting), StageID("a2", models.StageCutting))
	assert.NotEqual(t, StageID("a1", models.StageCutting), StageID("a1", models.StageStitching))
}

func TestEnsureWritesOnlyMissingStages(t *testing.T) {
	ctx := context.Background()
	l := ledgerRepo.NewMemoryLedger()
	svc := NewService(l, zap.NewNop())

	n, err := svc.Ensure(ctx, testOrder())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = svc.Ensure(ctx, testOrder())
	require.NoError(t, err)
	assert.Zero(t, n)

	tasks, err := svc.ForOrder(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestEnsureResumesAfterFailure(t *testing.T) {
	ctx := context.Background()
	l := ledgerRepo.NewMemoryLedger()
	svc := NewService(l, zap.NewNop())

	failOn := StageID("a1", models.StageHandwork)
	l.SetFault(func(op string, ref models.DocRef) error {
		if ref.ID == failOn {
			return errors.New("unavailable")
		}
		return nil
	})
	n, err := svc.Ensure(ctx, testOrder())
	require.Error(t, err)
	assert.Equal(t, 2, n)

	l.SetFault(nil)
	n, err = svc.Ensure(ctx, testOrder())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tasks, err := svc.ForOrder(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
}

func TestNewCustomTask(t *testing.T) {
	task, err := NewCustomTask(testOrder(), "  Embroidery ", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Embroidery", task.StageName)
	assert.True(t, task.Custom)
	assert.Equal(t, models.TaskPending, task.Status)
	assert.NotEmpty(t, task.ID)

	_, err = NewCustomTask(testOrder(), " ", time.Now())
	assert.ErrorIs(t, err, models.ErrValidation)
}
