package storage

import (
	"context"
)

const budgetGoalExists = `-- name: BudgetGoalExists :one
SELECT EXISTS (SELECT 1 FROM budget_goals WHERE id = ? AND user_id = ?)
`

func (q *Queries) BudgetGoalExists(ctx context.Context, id, userID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, budgetGoalExists, id, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const upsertBudgetGoal = `-- name: UpsertBudgetGoal :one
INSERT INTO budget_goals (user_id, category_id, month, limit_cents)
VALUES (?, ?, ?, ?)
ON CONFLICT (user_id, category_id, month) DO UPDATE SET limit_cents = excluded.limit_cents
RETURNING id, user_id, category_id, month, limit_cents
`

type UpsertBudgetGoalParams struct {
	UserID     int64
	CategoryID int64
	Month      string
	LimitCents int64
}

func (q *Queries) UpsertBudgetGoal(ctx context.Context, arg UpsertBudgetGoalParams) (BudgetGoal, error) {
	row := q.db.QueryRowContext(ctx, upsertBudgetGoal,
		arg.UserID,
		arg.CategoryID,
		arg.Month,
		arg.LimitCents,
	)
	var i BudgetGoal
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CategoryID,
		&i.Month,
		&i.LimitCents,
	)
	return i, err
}

const listBudgetGoals = `-- name: ListBudgetGoals :many
SELECT id, user_id, category_id, month, limit_cents
FROM budget_goals
WHERE user_id = ?1 AND (?2 = '' OR month = ?2)
ORDER BY month DESC, id ASC
`

func (q *Queries) ListBudgetGoals(ctx context.Context, userID int64, month string) ([]BudgetGoal, error) {
	rows, err := q.db.QueryContext(ctx, listBudgetGoals, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetGoal
	for rows.Next() {
		var i BudgetGoal
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CategoryID,
			&i.Month,
			&i.LimitCents,
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

const updateBudgetGoal = `-- name: UpdateBudgetGoal :execrows
UPDATE budget_goals SET category_id = ?, month = ?, limit_cents = ?
WHERE id = ? AND user_id = ?
`

type UpdateBudgetGoalParams struct {
	CategoryID int64
	Month      string
	LimitCents int64
	ID         int64
	UserID     int64
}

func (q *Queries) UpdateBudgetGoal(ctx context.Context, arg UpdateBudgetGoalParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateBudgetGoal,
		arg.CategoryID,
		arg.Month,
		arg.LimitCents,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteBudgetGoal = `-- name: DeleteBudgetGoal :execrows
DELETE FROM budget_goals WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteBudgetGoal(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteBudgetGoal, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
