// Package services composes stores with the event bus.
package services

import (
	"context"
	"fmt"

	"mifi/internal/budget"
	"mifi/internal/core"
	"mifi/internal/log"
	"mifi/internal/ports"
)

// VersionedBudgetStore is a budget store that numbers each save.
type VersionedBudgetStore interface {
	ports.BudgetSource
	SaveBudgetVersion(ctx context.Context, month core.MonthKey, p budget.Payload) (int64, error)
}

// Publisher announces saved budgets.
type Publisher interface {
	PublishBudgetSaved(ctx context.Context, month core.MonthKey, version int64) error
}

var _ ports.BudgetSource = (*BudgetService)(nil)

// BudgetService saves budgets and then publishes a budget-saved event. The
// save counts as done once the store accepted it; a failed publish is only
// logged.
type BudgetService struct {
	store     VersionedBudgetStore
	publisher Publisher
	logger    *log.Logger
}

// NewBudgetService accepts a nil publisher, in which case no events are
// sent.
func NewBudgetService(store VersionedBudgetStore, publisher Publisher, logger *log.Logger) *BudgetService {
	return &BudgetService{
		store:     store,
		publisher: publisher,
		logger:    log.OrDefault(logger).WithComponent(log.ComponentBackend),
	}
}

func (s *BudgetService) GetBudget(ctx context.Context, month core.MonthKey) (budget.Payload, error) {
	return s.store.GetBudget(ctx, month)
}

func (s *BudgetService) GetDefaultTemplate(ctx context.Context) (budget.Payload, error) {
	return s.store.GetDefaultTemplate(ctx)
}

func (s *BudgetService) SetDefaultTemplate(ctx context.Context, p budget.Payload) error {
	return s.store.SetDefaultTemplate(ctx, p)
}

func (s *BudgetService) SaveBudget(ctx context.Context, month core.MonthKey, p budget.Payload) error {
	version, err := s.store.SaveBudgetVersion(ctx, month, p)
	if err != nil {
		return fmt.Errorf("save budget: %w", err)
	}
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "no publisher configured, skipping budget saved event", log.FieldMonth, month.String())
		return nil
	}
	if err := s.publisher.PublishBudgetSaved(ctx, month, version); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish budget saved event",
			log.FieldMonth, month.String(),
			log.FieldVersion, version,
			log.FieldError, err)
	}
	return nil
}
