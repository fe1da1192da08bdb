// Package adapters joins the per-concern sources into one ports.Backend.
package adapters

import (
	"context"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
	"mifi/internal/ports"
)

// Composite serves transactions, categories and budgets from different
// sources, e.g. a read-only sheet with budgets kept in memory, or the SQL
// store with budget saves routed through the publishing service.
type Composite struct {
	Transactions ports.TransactionSource
	Categories   ports.CategorySource
	Budgets      ports.BudgetSource
}

var _ ports.Backend = (*Composite)(nil)

func (c *Composite) ListTransactions(ctx context.Context) ([]core.RawTransaction, error) {
	return c.Transactions.ListTransactions(ctx)
}

func (c *Composite) ListCategories(ctx context.Context) ([]categories.Category, error) {
	return c.Categories.ListCategories(ctx)
}

func (c *Composite) GetBudget(ctx context.Context, month core.MonthKey) (budget.Payload, error) {
	return c.Budgets.GetBudget(ctx, month)
}

func (c *Composite) GetDefaultTemplate(ctx context.Context) (budget.Payload, error) {
	return c.Budgets.GetDefaultTemplate(ctx)
}

func (c *Composite) SaveBudget(ctx context.Context, month core.MonthKey, p budget.Payload) error {
	return c.Budgets.SaveBudget(ctx, month, p)
}

func (c *Composite) SetDefaultTemplate(ctx context.Context, p budget.Payload) error {
	return c.Budgets.SetDefaultTemplate(ctx, p)
}
