package storage

import (
	"context"
)

const categoryExists = `-- name: CategoryExists :one
SELECT EXISTS (SELECT 1 FROM categories WHERE id = ? AND user_id = ?)
`

func (q *Queries) CategoryExists(ctx context.Context, id, userID int64) (bool, error) {
	row := q.db.QueryRowContext(ctx, categoryExists, id, userID)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (user_id, name, icon, type, color)
VALUES (?, ?, ?, ?, ?)
RETURNING id, user_id, name, icon, type, color
`

type CreateCategoryParams struct {
	UserID int64
	Name   string
	Icon   string
	Type   string
	Color  string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRowContext(ctx, createCategory,
		arg.UserID,
		arg.Name,
		arg.Icon,
		arg.Type,
		arg.Color,
	)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Icon,
		&i.Type,
		&i.Color,
	)
	return i, err
}

const getCategory = `-- name: GetCategory :one
SELECT id, user_id, name, icon, type, color
FROM categories
WHERE id = ? AND user_id = ?
`

func (q *Queries) GetCategory(ctx context.Context, id, userID int64) (Category, error) {
	row := q.db.QueryRowContext(ctx, getCategory, id, userID)
	var i Category
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Name,
		&i.Icon,
		&i.Type,
		&i.Color,
	)
	return i, err
}

const listCategories = `-- name: ListCategories :many
SELECT id, user_id, name, icon, type, color
FROM categories
WHERE user_id = ?1 AND (?2 = '' OR type = ?2)
ORDER BY type ASC, name ASC
`

func (q *Queries) ListCategories(ctx context.Context, userID int64, categoryType string) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories, userID, categoryType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.Name,
			&i.Icon,
			&i.Type,
			&i.Color,
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

const countCategories = `-- name: CountCategories :one
SELECT COUNT(*) FROM categories WHERE user_id = ?
`

func (q *Queries) CountCategories(ctx context.Context, userID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countCategories, userID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const updateCategory = `-- name: UpdateCategory :execrows
UPDATE categories
SET name = ?, icon = ?, type = ?, color = ?
WHERE id = ? AND user_id = ?
`

type UpdateCategoryParams struct {
	Name   string
	Icon   string
	Type   string
	Color  string
	ID     int64
	UserID int64
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateCategory,
		arg.Name,
		arg.Icon,
		arg.Type,
		arg.Color,
		arg.ID,
		arg.UserID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteCategory = `-- name: DeleteCategory :execrows
DELETE FROM categories WHERE id = ? AND user_id = ?
`

func (q *Queries) DeleteCategory(ctx context.Context, id, userID int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteCategory, id, userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
