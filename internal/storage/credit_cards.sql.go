package storage

import (
	"context"
)

const creditCardExists = `-- name: CreditCardExists :one
SELECT EXISTS (SELECT 1 FROM credit_cards WHERE id = ? AND user_id = ?)
`

func (q *Queries) CreditCardExists(ctx context.Context, id, userID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, creditCardExists, id, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createCreditCard = `-- name: CreateCreditCard :one
INSERT INTO credit_cards (user_id, name, limit_cents, closing_day, due_day, color)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, user_id, name, limit_cents, closing_day, due_day, color, created_at
`

type CreateCreditCardParams struct {
	UserID     int64
	Name       string
	LimitCents int64
	ClosingDay int64
	DueDay     int64
	Color      string
}

func (q *Queries) CreateCreditCard(ctx context.Context, arg CreateCreditCardParams) (CreditCard, error) {
	row := q.db.QueryRowContext(ctx, createCreditCard,
		arg.UserID,
		arg.Name,
		arg.LimitCents,
		arg.ClosingDay,
		arg.DueDay,
		arg.Color,
	)
	var i CreditCard
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.LimitCents,
		&i.ClosingDay,
		&i.DueDay,
		&i.Color,
		&i.CreatedAt,
	)
	return i, err
}

const getCreditCard = `-- name: GetCreditCard :one
SELECT id, user_id, name, limit_cents, closing_day, due_day, color, created_at
FROM credit_cards
WHERE id = ? AND user_id = ?
`

func (q *Queries) GetCreditCard(ctx context.Context, id, userID int64) (CreditCard, error) {
	row := q.db.QueryRowContext(ctx, getCreditCard, id, userID)
	var i CreditCard
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.LimitCents,
		&i.ClosingDay,
		&i.DueDay,
		&i.Color,
		&i.CreatedAt,
	)
	return i, err
}

const listCreditCards = `-- name: ListCreditCards :many
SELECT id, user_id, name, limit_cents, closing_day, due_day, color, created_at
FROM credit_cards
WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListCreditCards(ctx context.Context, userID int64) ([]CreditCard, error) {
	rows, err := q.db.QueryContext(ctx, listCreditCards, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CreditCard
	for rows.Next() {
		var i CreditCard
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.LimitCents,
			&i.ClosingDay,
			&i.DueDay,
			&i.Color,
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

const updateCreditCard = `-- name: UpdateCreditCard :execrows
UPDATE credit_cards
SET name = ?, limit_cents = ?, closing_day = ?, due_day = ?, color = ?
WHERE id = ? AND user_id = ?
`

type UpdateCreditCardParams struct {
	Name       string
	LimitCents int64
	ClosingDay int64
	DueDay     int64
	Color      string
	ID         int64
	UserID     int64
}

func (q *Queries) UpdateCreditCard(ctx context.Context, arg UpdateCreditCardParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCreditCard,
		arg.Name,
		arg.LimitCents,
		arg.ClosingDay,
		arg.DueDay,
		arg.Color,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCreditCard = `-- name: DeleteCreditCard :execrows
DELETE FROM credit_cards WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteCreditCard(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCreditCard, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const cardUsage = `-- name: CardUsage :many
SELECT credit_card_id, COALESCE(SUM(amount_cents), 0) AS used_cents
FROM transactions
WHERE user_id = ? AND type = 'expense' AND credit_card_id IS NOT NULL
GROUP BY credit_card_id
`

type CardUsageRow struct {
	CreditCardID int64
	UsedCents    int64
}

func (q *Queries) CardUsage(ctx context.Context, userID int64) ([]CardUsageRow, error) {
	rows, err := q.db.QueryContext(ctx, cardUsage, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CardUsageRow
	for rows.Next() {
		var i CardUsageRow
		if err := rows.Scan(&i.CreditCardID, &i.UsedCents); err != nil {
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
