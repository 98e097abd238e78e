package storage

import (
	"context"
	"database/sql"
)

const transactionColumns = `id, user_id, description, amount_cents, type, date, account_id, to_account_id,
    credit_card_id, category_id, is_realized, is_recurring, recurrence_count, recurrence_group_id,
    installment_current, installment_total, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Description,
		&i.AmountCents,
		&i.Type,
		&i.Date,
		&i.AccountID,
		&i.ToAccountID,
		&i.CreditCardID,
		&i.CategoryID,
		&i.IsRealized,
		&i.IsRecurring,
		&i.RecurrenceCount,
		&i.RecurrenceGroupID,
		&i.InstallmentCurrent,
		&i.InstallmentTotal,
		&i.CreatedAt,
	)
	return i, err
}

const transactionExists = `-- name: TransactionExists :one
SELECT EXISTS (SELECT 1 FROM transactions WHERE id = ? AND user_id = ?)
`

func (q *Queries) TransactionExists(ctx context.Context, id, userID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, transactionExists, id, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createTransaction = `-- name: CreateTransaction :one
INSERT INTO transactions (
    user_id, description, amount_cents, type, date, account_id, to_account_id,
    credit_card_id, category_id, is_realized, is_recurring, recurrence_count,
    recurrence_group_id, installment_current, installment_total
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransactionParams struct {
	UserID             int64
	Description        string
	AmountCents        int64
	Type               string
	Date               string
	AccountID          int64
	ToAccountID        sql.NullInt64
	CreditCardID       sql.NullInt64
	CategoryID         int64
	IsRealized         bool
	IsRecurring        bool
	RecurrenceCount    sql.NullInt64
	RecurrenceGroupID  sql.NullString
	InstallmentCurrent sql.NullInt64
	InstallmentTotal   sql.NullInt64
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.UserID,
		arg.Description,
		arg.AmountCents,
		arg.Type,
		arg.Date,
		arg.AccountID,
		arg.ToAccountID,
		arg.CreditCardID,
		arg.CategoryID,
		arg.IsRealized,
		arg.IsRecurring,
		arg.RecurrenceCount,
		arg.RecurrenceGroupID,
		arg.InstallmentCurrent,
		arg.InstallmentTotal,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getTransaction = `-- name: GetTransaction :one
SELECT ` + transactionColumns + `
FROM transactions
WHERE id = ? AND user_id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id, userID int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, userID))
}

const listTransactions = `-- name: ListTransactions :many
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?1
  AND (?2 = '' OR substr(date, 1, 7) = ?2)
  AND (?3 = 0 OR account_id = ?3 OR to_account_id = ?3)
ORDER BY date DESC, id DESC
`

type ListTransactionsParams struct {
	UserID    int64
	Month     string
	AccountID int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, arg.UserID, arg.Month, arg.AccountID)
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

const listTransactionsByGroup = `-- name: ListTransactionsByGroup :many
SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ? AND recurrence_group_id = ?
ORDER BY date ASC, id ASC
`

func (q *Queries) ListTransactionsByGroup(ctx context.Context, userID int64, groupID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactionsByGroup, userID, groupID)
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

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET description = ?, amount_cents = ?, type = ?, date = ?, account_id = ?, to_account_id = ?,
    credit_card_id = ?, category_id = ?, is_realized = ?
WHERE id = ? AND user_id = ?
`

type UpdateTransactionParams struct {
	Description  string
	AmountCents  int64
	Type         string
	Date         string
	AccountID    int64
	ToAccountID  sql.NullInt64
	CreditCardID sql.NullInt64
	CategoryID   int64
	IsRealized   bool
	ID           int64
	UserID       int64
}

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Description,
		arg.AmountCents,
		arg.Type,
		arg.Date,
		arg.AccountID,
		arg.ToAccountID,
		arg.CreditCardID,
		arg.CategoryID,
		arg.IsRealized,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setTransactionRealized = `-- name: SetTransactionRealized :execrows
UPDATE transactions SET is_realized = ? WHERE id = ? AND user_id = ?
`

func (q *Queries) SetTransactionRealized(ctx context.Context, isRealized bool, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, setTransactionRealized, isRealized, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const monthTotals = `-- name: MonthTotals :one
SELECT
    COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents END), 0) AS income,
    COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0) AS expense
FROM transactions
WHERE user_id = ? AND is_realized = 1 AND substr(date, 1, 7) = ?
`

type MonthTotalsRow struct {
	Income  int64
	Expense int64
}

func (q *Queries) MonthTotals(ctx context.Context, userID int64, month string) (MonthTotalsRow, error) {
	row := q.db.QueryRowContext(ctx, monthTotals, userID, month)
	var i MonthTotalsRow
	err := row.Scan(&i.Income, &i.Expense)
	return i, err
}

const spentByCategory = `-- name: SpentByCategory :many
SELECT category_id, COALESCE(SUM(amount_cents), 0) AS spent_cents
FROM transactions
WHERE user_id = ? AND type = 'expense' AND is_realized = 1 AND substr(date, 1, 7) = ?
GROUP BY category_id
`

type SpentByCategoryRow struct {
	CategoryID int64
	SpentCents int64
}

func (q *Queries) SpentByCategory(ctx context.Context, userID int64, month string) ([]SpentByCategoryRow, error) {
	rows, err := q.db.QueryContext(ctx, spentByCategory, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SpentByCategoryRow
	for rows.Next() {
		var i SpentByCategoryRow
		if err := rows.Scan(&i.CategoryID, &i.SpentCents); err != nil {
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
