package storage

import (
	"database/sql"
)

type Account struct {
	ID           int64
	UserID       int64
	Name         string
	Type         string
	BalanceCents int64
	Color        string
	Icon         string
	CreatedAt    string
}

type Category struct {
	ID     int64
	UserID int64
	Name   string
	Icon   string
	Type   string
	Color  string
}

type CreditCard struct {
	ID         int64
	UserID     int64
	Name       string
	LimitCents int64
	ClosingDay int64
	DueDay     int64
	Color      string
	CreatedAt  string
}

type Transaction struct {
	ID                 int64
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
	CreatedAt          string
}

type BudgetGoal struct {
	ID         int64
	UserID     int64
	CategoryID int64
	Month      string
	LimitCents int64
}
