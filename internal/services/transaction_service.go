package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/ledger"
	"gastos/internal/log"
	"gastos/internal/metrics"
)

// DefaultPageSize is the number of transactions per listing page.
const DefaultPageSize = 15

type (
	TransactionQuery struct {
		Period core.Period
		// Search matches descriptions case-insensitively.
		Search string
		// Page is 1-based and clamped to the available pages.
		Page int
	}

	TransactionPage struct {
		Items      []core.Transaction `json:"items"`
		Page       int                `json:"page"`
		PageSize   int                `json:"pageSize"`
		TotalItems int                `json:"totalItems"`
		TotalPages int                `json:"totalPages"`
	}
)

// TransactionService validates, normalizes and persists transactions, then
// invalidates the cached views and publishes a change event.
type TransactionService struct {
	store     ledger.Store
	publisher EventPublisher
	views     Invalidator
	metrics   metrics.Recorder
	log       *log.StructuredLogger
}

// NewTransactionService wires the service. publisher and views may be nil.
func NewTransactionService(store ledger.Store, publisher EventPublisher, views Invalidator, rec metrics.Recorder, logger *log.Logger) *TransactionService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	return &TransactionService{
		store:     store,
		publisher: publisher,
		views:     views,
		metrics:   rec,
		log:       log.NewStructuredLogger(logger),
	}
}

func (s *TransactionService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	tx, err := in.Build()
	if err != nil {
		s.metrics.TransactionWritten(log.OpCreate, "invalid")
		return core.Transaction{}, err
	}
	if _, err := categoryForTransaction(ctx, s.store, tx); err != nil {
		s.metrics.TransactionWritten(log.OpCreate, "rejected")
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		s.metrics.TransactionWritten(log.OpCreate, "error")
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.afterWrite(ctx, log.OpCreate, created, amqp.OperationCreated, 0)
	return created, nil
}

func (s *TransactionService) Update(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}

	tx, err := in.Build()
	if err != nil {
		s.metrics.TransactionWritten(log.OpUpdate, "invalid")
		return core.Transaction{}, err
	}
	if _, err := categoryForTransaction(ctx, s.store, tx); err != nil {
		s.metrics.TransactionWritten(log.OpUpdate, "rejected")
		return core.Transaction{}, err
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt

	updated, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		s.metrics.TransactionWritten(log.OpUpdate, "error")
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}

	s.afterWrite(ctx, log.OpUpdate, updated, amqp.OperationUpdated, existing.Date.Year())
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, id int64) error {
	existing, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", id, err)
	}
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		s.metrics.TransactionWritten(log.OpDelete, "error")
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}

	s.afterWrite(ctx, log.OpDelete, existing, amqp.OperationDeleted, 0)
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

// List returns one page of the transactions in q.Period whose description
// contains q.Search, newest first.
func (s *TransactionService) List(ctx context.Context, q TransactionQuery) (TransactionPage, error) {
	all, err := s.store.ListTransactions(ctx)
	if err != nil {
		return TransactionPage{}, fmt.Errorf("list transactions: %w", err)
	}

	matched := core.FilterByPeriod(all, q.Period)
	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		matched = slices.DeleteFunc(matched, func(tx core.Transaction) bool {
			return !strings.Contains(strings.ToLower(tx.Description), search)
		})
	}
	slices.SortStableFunc(matched, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	return paginate(matched, q.Page, DefaultPageSize), nil
}

func paginate(txs []core.Transaction, page, size int) TransactionPage {
	total := len(txs)
	pages := max(1, (total+size-1)/size)
	page = min(max(page, 1), pages)

	start := min((page-1)*size, total)
	end := min(start+size, total)

	return TransactionPage{
		Items:      slices.Clone(txs[start:end]),
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
}

func (s *TransactionService) afterWrite(ctx context.Context, op string, tx core.Transaction, event amqp.Operation, previousYear int) {
	s.metrics.TransactionWritten(op, "ok")
	s.log.LogTransactionChanged(ctx, op, tx)

	if s.views != nil {
		s.views.Invalidate()
	}
	s.publish(ctx, amqp.NewTransactionChangedMessage(tx.ID, event, tx.Date.Year(), previousYear))
}

// publish never fails the write; the row is already committed.
func (s *TransactionService) publish(ctx context.Context, msg *amqp.TransactionChangedMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "No event publisher configured, skipping change event",
			log.FieldTransactionID, msg.ID)
		return
	}
	if err := s.publisher.PublishTransactionChanged(ctx, msg); err != nil {
		s.metrics.EventPublished("error")
		slog.ErrorContext(ctx, "Failed to publish change event",
			log.FieldTransactionID, msg.ID,
			log.FieldOperation, msg.Operation,
			log.FieldError, err)
		return
	}
	s.metrics.EventPublished("ok")
}
