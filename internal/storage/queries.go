package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type Category struct {
	ID        int64
	Name      string
	Type      string
	Icon      string
	Color     string
	IsDefault int64
}

type Transaction struct {
	ID              int64
	Description     string
	AmountCents     int64
	AmountHomeCents int64
	Currency        string
	ExchangeRate    sql.NullString
	CategoryID      int64
	Date            string
	Type            string
	CreatedAt       string
	UpdatedAt       string
}

const transactionColumns = `id, description, amount_cents, amount_home_cents, currency, exchange_rate, category_id, date, type, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Description,
		&i.AmountCents,
		&i.AmountHomeCents,
		&i.Currency,
		&i.ExchangeRate,
		&i.CategoryID,
		&i.Date,
		&i.Type,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listTransactions = `SELECT ` + transactionColumns + `
FROM transactions
ORDER BY date DESC, id DESC`

func (q *Queries) ListTransactions(ctx context.Context) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `SELECT ` + transactionColumns + `
FROM transactions
WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

const createTransaction = `INSERT INTO transactions (
    description, amount_cents, amount_home_cents, currency, exchange_rate, category_id, date, type, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	Description     string
	AmountCents     int64
	AmountHomeCents int64
	Currency        string
	ExchangeRate    sql.NullString
	CategoryID      int64
	Date            string
	Type            string
	CreatedAt       string
	UpdatedAt       string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Description,
		arg.AmountCents,
		arg.AmountHomeCents,
		arg.Currency,
		arg.ExchangeRate,
		arg.CategoryID,
		arg.Date,
		arg.Type,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return scanTransaction(row)
}

const updateTransaction = `UPDATE transactions
SET description = ?, amount_cents = ?, amount_home_cents = ?, currency = ?, exchange_rate = ?,
    category_id = ?, date = ?, type = ?, updated_at = ?
WHERE id = ?
RETURNING ` + transactionColumns

type UpdateTransactionParams struct {
	Description     string
	AmountCents     int64
	AmountHomeCents int64
	Currency        string
	ExchangeRate    sql.NullString
	CategoryID      int64
	Date            string
	Type            string
	UpdatedAt       string
	ID              int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, updateTransaction,
		arg.Description,
		arg.AmountCents,
		arg.AmountHomeCents,
		arg.Currency,
		arg.ExchangeRate,
		arg.CategoryID,
		arg.Date,
		arg.Type,
		arg.UpdatedAt,
		arg.ID,
	)
	return scanTransaction(row)
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countTransactionsByCategory = `SELECT COUNT(*) FROM transactions WHERE category_id = ?`

func (q *Queries) CountTransactionsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransactionsByCategory, categoryID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const categoryColumns = `id, name, type, icon, color, is_default`

func scanCategory(row interface{ Scan(...any) error }) (Category, error) {
	var i Category
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Type,
		&i.Icon,
		&i.Color,
		&i.IsDefault,
	)
	return i, err
}

const listCategories = `SELECT ` + categoryColumns + ` FROM categories ORDER BY id`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		i, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getCategory = `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`

func (q *Queries) GetCategory(ctx context.Context, id int64) (Category, error) {
	return scanCategory(q.db.QueryRowContext(ctx, getCategory, id))
}

const createCategory = `INSERT INTO categories (name, type, icon, color, is_default)
VALUES (?, ?, ?, ?, 0)
RETURNING ` + categoryColumns

type CreateCategoryParams struct {
	Name  string
	Type  string
	Icon  string
	Color string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory, arg.Name, arg.Type, arg.Icon, arg.Color)
	return scanCategory(row)
}

const updateCategory = `UPDATE categories
SET name = ?, type = ?, icon = ?, color = ?
WHERE id = ?
RETURNING ` + categoryColumns

type UpdateCategoryParams struct {
	Name  string
	Type  string
	Icon  string
	Color string
	ID    int64
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, updateCategory, arg.Name, arg.Type, arg.Icon, arg.Color, arg.ID)
	return scanCategory(row)
}

const deleteCategory = `DELETE FROM categories WHERE id = ?`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
