// Package ledger defines the storage ports the services are written against.
package ledger

import (
	"context"
	"errors"

	"gastos/internal/core"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryInUse       = errors.New("category has transactions")
)

// Ports for outbound adapters.
type (
	// TransactionStore persists transactions. Listings are ordered by date
	// then id, newest first.
	TransactionStore interface {
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
		// CountByCategory returns how many transactions reference the category.
		CountByCategory(ctx context.Context, categoryID int64) (int, error)
	}

	// CategoryStore persists categories. Listings are ordered by id.
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		GetCategory(ctx context.Context, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		// DeleteCategory fails with ErrCategoryInUse while transactions reference it.
		DeleteCategory(ctx context.Context, id int64) error
	}

	Store interface {
		TransactionStore
		CategoryStore
		Ping(ctx context.Context) error
		Close() error
	}
)
