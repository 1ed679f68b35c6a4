package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gastos/internal/core"
	"gastos/internal/ledger"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

var _ ledger.Store = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db), nil
}

func newRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}
}

// dsn enables foreign keys on every pooled connection.
func dsn(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toCoreTransaction(row)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return toCoreTransaction(row)
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	now := r.timestamp()
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		Description:     tx.Description,
		AmountCents:     core.ToCents(tx.Amount),
		AmountHomeCents: core.ToCents(tx.AmountInHomeCurrency),
		Currency:        string(tx.Currency),
		ExchangeRate:    nullRate(tx.ExchangeRate),
		CategoryID:      tx.CategoryID,
		Date:            tx.Date.String(),
		Type:            string(tx.Type),
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if isForeignKeyViolation(err) {
		return core.Transaction{}, ledger.ErrCategoryNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"amount_home_cents", row.AmountHomeCents,
		"date", row.Date)

	return toCoreTransaction(row)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	row, err := r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		Description:     tx.Description,
		AmountCents:     core.ToCents(tx.Amount),
		AmountHomeCents: core.ToCents(tx.AmountInHomeCurrency),
		Currency:        string(tx.Currency),
		ExchangeRate:    nullRate(tx.ExchangeRate),
		CategoryID:      tx.CategoryID,
		Date:            tx.Date.String(),
		Type:            string(tx.Type),
		UpdatedAt:       r.timestamp(),
		ID:              tx.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrTransactionNotFound
	}
	if isForeignKeyViolation(err) {
		return core.Transaction{}, ledger.ErrCategoryNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", tx.ID, err)
	}

	slog.InfoContext(ctx, "Transaction updated in SQLite", "id", row.ID)
	return toCoreTransaction(row)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	affected, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if affected == 0 {
		return ledger.ErrTransactionNotFound
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	n, err := r.queries.CountTransactionsByCategory(ctx, categoryID)
	if err != nil {
		return 0, fmt.Errorf("count transactions for category %d: %w", categoryID, err)
	}
	return int(n), nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.queries.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCoreCategory(row))
	}
	return out, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row, err := r.queries.GetCategory(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ledger.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.CreateCategory(ctx, CreateCategoryParams{
		Name:  c.Name,
		Type:  string(c.Type),
		Icon:  c.Icon,
		Color: c.Color,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite", "id", row.ID, "name", row.Name, "type", row.Type)
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := r.queries.UpdateCategory(ctx, UpdateCategoryParams{
		Name:  c.Name,
		Type:  string(c.Type),
		Icon:  c.Icon,
		Color: c.Color,
		ID:    c.ID,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, ledger.ErrCategoryNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("update category %d: %w", c.ID, err)
	}
	return toCoreCategory(row), nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	n, err := r.queries.CountTransactionsByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count transactions for category %d: %w", id, err)
	}
	if n > 0 {
		return ledger.ErrCategoryInUse
	}

	affected, err := r.queries.DeleteCategory(ctx, id)
	if isForeignKeyViolation(err) {
		return ledger.ErrCategoryInUse
	}
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if affected == 0 {
		return ledger.ErrCategoryNotFound
	}
	slog.InfoContext(ctx, "Category deleted from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

func toCoreTransaction(row Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d date: %w", row.ID, err)
	}

	var rate *decimal.Decimal
	if row.ExchangeRate.Valid && row.ExchangeRate.String != "" {
		d, err := decimal.NewFromString(row.ExchangeRate.String)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("transaction %d exchange rate: %w", row.ID, err)
		}
		rate = &d
	}

	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, row.UpdatedAt)

	return core.Transaction{
		ID:                   row.ID,
		Description:          row.Description,
		Amount:               core.FromCents(row.AmountCents),
		AmountInHomeCurrency: core.FromCents(row.AmountHomeCents),
		Currency:             core.Currency(row.Currency),
		ExchangeRate:         rate,
		CategoryID:           row.CategoryID,
		Date:                 date,
		Type:                 core.TransactionType(row.Type),
		CreatedAt:            createdAt,
		UpdatedAt:            updatedAt,
	}, nil
}

func toCoreCategory(row Category) core.Category {
	return core.Category{
		ID:        row.ID,
		Name:      row.Name,
		Type:      core.TransactionType(row.Type),
		Icon:      row.Icon,
		Color:     row.Color,
		IsDefault: row.IsDefault != 0,
	}
}

func nullRate(rate *decimal.Decimal) sql.NullString {
	if rate == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: rate.String(), Valid: true}
}

func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
