// Package services orchestrates the ledger writes, the change events and
// the cached analytics views.
package services

import (
	"context"
	"errors"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
)

var (
	ErrCategoryTypeMismatch = errors.New("category type does not match transaction type")
	ErrCategoryTypeLocked   = errors.New("category type cannot change while transactions reference it")
)

// EventPublisher announces transaction writes to downstream consumers.
type EventPublisher interface {
	PublishTransactionChanged(ctx context.Context, msg *amqp.TransactionChangedMessage) error
}

// Invalidator drops derived views after a write.
type Invalidator interface {
	Invalidate()
}

// categoryForTransaction loads the category a transaction points at and checks
// that both share a type.
func categoryForTransaction(ctx context.Context, store ledger.CategoryStore, tx core.Transaction) (core.Category, error) {
	cat, err := store.GetCategory(ctx, tx.CategoryID)
	if errors.Is(err, ledger.ErrCategoryNotFound) {
		return core.Category{}, &core.ValidationError{Field: "categoryId", Err: err}
	}
	if err != nil {
		return core.Category{}, err
	}
	if cat.Type != tx.Type {
		return core.Category{}, ErrCategoryTypeMismatch
	}
	return cat, nil
}
