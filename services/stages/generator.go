package stages

import (
	"context"
	"fmt"
	"strings"
	"time"

	ledgerRepo "vastramitra/database/repository/ledger"
	"vastramitra/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Order is the fixed production sequence every order goes through.
var Order = []string{
	models.StageCutting,
	models.StageStitching,
	models.StageHandwork,
	models.StagePackaging,
}

// stageNamespace seeds deterministic stage ids so rewriting a stage after a
// crash lands on the same document.
var stageNamespace = uuid.MustParse("5c6b0f2e-4e0d-4b8e-9f57-6d1f1f2a9a10")

// StageID returns the id of the fixed stage name of orderID.
func StageID(orderID, name string) string {
	return uuid.NewSHA1(stageNamespace, []byte(orderID+"/"+name)).String()
}

// Generate builds the four fixed stages of order, all Pending. createdAt is
// spaced a millisecond apart so sorting by it keeps the stage order.
func Generate(order models.Order, now time.Time) []models.TaskStage {
	out := make([]models.TaskStage, 0, len(Order))
	for i, name := range Order {
		at := now.Add(time.Duration(i) * time.Millisecond)
		out = append(out, models.TaskStage{
			ID:           StageID(order.ID, name),
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			CustomerName: order.CustomerName,
			StageName:    name,
			Status:       models.TaskPending,
			CreatedAt:    at,
			UpdatedAt:    at,
		})
	}
	return out
}

// NewCustomTask builds a tailor-defined task for order.
func NewCustomTask(order models.Order, title string, now time.Time) (models.TaskStage, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.TaskStage{}, models.Validation("task title is required")
	}
	return models.TaskStage{
		ID:           uuid.NewString(),
		OrderID:      order.ID,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		StageName:    title,
		Status:       models.TaskPending,
		Custom:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s models.TaskStatus) bool {
	switch s {
	case models.TaskPending, models.TaskInProgress, models.TaskDone:
		return true
	}
	return false
}

// Service writes generated stages to the ledger.
type Service struct {
	ledger ledgerRepo.Ledger
	logger *zap.Logger
	now    func() time.Time
}

func NewService(l ledgerRepo.Ledger, logger *zap.Logger) *Service {
	return &Service{ledger: l, logger: logger, now: time.Now}
}

// ForOrder lists the tasks of orderID, oldest first.
func (s *Service) ForOrder(ctx context.Context, orderID string) ([]models.TaskStage, error) {
	tasks, err := ledgerRepo.QueryAs[models.TaskStage](ctx, s.ledger, models.CollTaskStages, "", map[string]any{"orderId": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of order %s: %w", orderID, err)
	}
	return tasks, nil
}

// Ensure creates whichever fixed stages of order are missing. It returns the
// number of stages written; zero means the order already had all four.
func (s *Service) Ensure(ctx context.Context, order models.Order) (int, error) {
	existing, err := s.ForOrder(ctx, order.ID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(existing))
	for _, t := range existing {
		if !t.Custom {
			have[t.StageName] = true
		}
	}

	written := 0
	for _, stage := range Generate(order, s.now()) {
		if have[stage.StageName] {
			continue
		}
		if err := s.ledger.Set(ctx, models.TaskStageRef(stage.ID), stage); err != nil {
			return written, fmt.Errorf("failed to create %s stage for order %s: %w", stage.StageName, order.ID, err)
		}
		written++
	}
	if written > 0 {
		s.logger.Info("Task stages created", zap.String("orderId", order.ID), zap.Int("count", written))
	}
	return written, nil
}
