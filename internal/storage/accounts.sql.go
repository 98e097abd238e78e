package storage

import (
	"context"
)

const accountExists = `-- name: AccountExists :one
SELECT EXISTS (SELECT 1 FROM accounts WHERE id = ? AND user_id = ?)
`

func (q *Queries) AccountExists(ctx context.Context, id, userID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, accountExists, id, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createAccount = `-- name: CreateAccount :one
INSERT INTO accounts (user_id, name, type, balance_cents, color, icon)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, user_id, name, type, balance_cents, color, icon, created_at
`

type CreateAccountParams struct {
	UserID       int64
	Name         string
	Type         string
	BalanceCents int64
	Color        string
	Icon         string
}

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (Account, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.UserID,
		arg.Name,
		arg.Type,
		arg.BalanceCents,
		arg.Color,
		arg.Icon,
	)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Type,
		&i.BalanceCents,
		&i.Color,
		&i.Icon,
		&i.CreatedAt,
	)
	return i, err
}

const getAccount = `-- name: GetAccount :one
SELECT id, user_id, name, type, balance_cents, color, icon, created_at
FROM accounts
WHERE id = ? AND user_id = ?
`

func (q *Queries) GetAccount(ctx context.Context, id, userID int64) (Account, error) {
	row := q.db.QueryRowContext(ctx, getAccount, id, userID)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Type,
		&i.BalanceCents,
		&i.Color,
		&i.Icon,
		&i.CreatedAt,
	)
	return i, err
}

const listAccounts = `-- name: ListAccounts :many
SELECT id, user_id, name, type, balance_cents, color, icon, created_at
FROM accounts
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListAccounts(ctx context.Context, userID int64) ([]Account, error) {
	rows, err := q.db.QueryContext(ctx, listAccounts, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Account
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Type,
			&i.BalanceCents,
			&i.Color,
			&i.Icon,
			&i.CreatedAt,
		); err != nil {
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

const listAccountRefs = `-- name: ListAccountRefs :many
SELECT id, user_id, balance_cents FROM accounts ORDER BY id ASC
`

type AccountRef struct {
	ID           int64
	UserID       int64
	BalanceCents int64
}

func (q *Queries) ListAccountRefs(ctx context.Context) ([]AccountRef, error) {
	rows, err := q.db.QueryContext(ctx, listAccountRefs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AccountRef
	for rows.Next() {
		var i AccountRef
		if err := rows.Scan(&i.ID, &i.UserID, &i.BalanceCents); err != nil {
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

const updateAccount = `-- name: UpdateAccount :execrows
UPDATE accounts
SET name = ?, type = ?, color = ?, icon = ?
WHERE id = ? AND user_id = ?
`

type UpdateAccountParams struct {
	Name   string
	Type   string
	Color  string
	Icon   string
	ID     int64
	UserID int64
}

func (q *Queries) UpdateAccount(ctx context.Context, arg UpdateAccountParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateAccount,
		arg.Name,
		arg.Type,
		arg.Color,
		arg.Icon,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteAccount = `-- name: DeleteAccount :execrows
DELETE FROM accounts WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteAccount(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAccount, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const setAccountBalance = `-- name: SetAccountBalance :exec
UPDATE accounts SET balance_cents = ? WHERE id = ?
`

func (q *Queries) SetAccountBalance(ctx context.Context, balanceCents, id int64) error {
	_, err := q.db.ExecContext(ctx, setAccountBalance, balanceCents, id)
	return err
}

const getAccountBalance = `-- name: GetAccountBalance :one
SELECT balance_cents FROM accounts WHERE id = ?
`

func (q *Queries) GetAccountBalance(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, getAccountBalance, id)
	var balance int64
	err := row.Scan(&balance)
	return balance, err
}

const sumBalances = `-- name: SumBalances :one
SELECT COALESCE(SUM(balance_cents), 0) FROM accounts WHERE user_id = ?
`

func (q *Queries) SumBalances(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, sumBalances, userID)
	var total int64
	err := row.Scan(&total)
	return total, err
}

const ledgerSums = `-- name: LedgerSums :one
SELECT
    COALESCE(SUM(CASE WHEN account_id = ?1 AND type = 'income' THEN amount_cents END), 0) AS income,
    COALESCE(SUM(CASE WHEN account_id = ?1 AND type = 'expense' THEN amount_cents END), 0) AS expense,
    COALESCE(SUM(CASE WHEN account_id = ?1 AND type = 'transfer' THEN amount_cents END), 0) AS sent_out,
    COALESCE(SUM(CASE WHEN to_account_id = ?1 AND type = 'transfer' THEN amount_cents END), 0) AS received
FROM transactions
WHERE is_realized = 1 AND (account_id = ?1 OR to_account_id = ?1)
`

type LedgerSumsRow struct {
	Income   int64
	Expense  int64
	SentOut  int64
	Received int64
}

// LedgerSums aggregates the realized rows that reference an account.
func (q *Queries) LedgerSums(ctx context.Context, accountID int64) (LedgerSumsRow, error) {
	row := q.db.QueryRowContext(ctx, ledgerSums, accountID)
	var i LedgerSumsRow
	err := row.Scan(
		&i.Income,
		&i.Expense,
		&i.SentOut,
		&i.Received,
	)
	return i, err
}
