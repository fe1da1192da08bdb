// Package ports declares the sources the dashboard and the CLI read from
// and write to. Adapters live in memory, storage, sheets and adapters/rest.
package ports

import (
	"context"
	"errors"

	"mifi/internal/budget"
	"mifi/internal/categories"
	"mifi/internal/core"
)

// ErrNotFound is returned when a month has no budget or no template exists.
// It is a normal outcome, not a transport failure.
var ErrNotFound = errors.New("not found")

// ErrReadOnly is returned by sources that cannot persist a kind of data.
var ErrReadOnly = errors.New("source is read-only")

type (
	// TransactionSource returns the whole transaction history, unnormalized.
	TransactionSource interface {
		ListTransactions(ctx context.Context) ([]core.RawTransaction, error)
	}

	// TransactionWriter stores imported transactions. Rows whose id already
	// exists are skipped and counted as such.
	TransactionWriter interface {
		AppendTransactions(ctx context.Context, txs []core.RawTransaction) (inserted, skipped int, err error)
	}

	BudgetSource interface {
		GetBudget(ctx context.Context, month core.MonthKey) (budget.Payload, error)
		GetDefaultTemplate(ctx context.Context) (budget.Payload, error)
		SaveBudget(ctx context.Context, month core.MonthKey, p budget.Payload) error
		SetDefaultTemplate(ctx context.Context, p budget.Payload) error
	}

	CategorySource interface {
		ListCategories(ctx context.Context) ([]categories.Category, error)
	}

	// Backend is everything a data backend offers.
	Backend interface {
		TransactionSource
		BudgetSource
		CategorySource
	}
)
