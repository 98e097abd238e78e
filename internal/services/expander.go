package services

import (
	"saldo/internal/core"

	"github.com/google/uuid"
)

// NewGroupID returns a fresh recurrence group id.
func NewGroupID() string {
	return uuid.NewString()
}

// Expand turns one validated request into the ledger rows to insert.
//
// An expense with InstallmentTotal N > 1 becomes N monthly rows of Amount/N
// each. A recurring request with RecurrenceCount N > 1 becomes N monthly
// rows of the full amount. Anything else is a single row. In both series
// modes the rows share one group id and only the first keeps the request's
// realized flag; the rest start pending.
func Expand(ownerID int64, req core.TransactionRequest, newGroupID func() string) []core.Transaction {
	base := core.Transaction{
		OwnerID:      ownerID,
		Description:  req.Description,
		Amount:       req.Amount,
		Type:         req.Type,
		Date:         req.Date,
		AccountID:    req.AccountID,
		ToAccountID:  req.ToAccountID,
		CreditCardID: req.CreditCardID,
		CategoryID:   req.CategoryID,
		IsRealized:   req.IsRealized,
	}

	switch {
	case req.InstallmentTotal > 1 && req.Type == core.Expense:
		n := req.InstallmentTotal
		group := newGroupID()
		part := req.Amount.Split(n)
		rows := make([]core.Transaction, n)
		for i := range rows {
			row := base
			row.Amount = part
			row.Date = req.Date.AddMonths(i)
			row.InstallmentCurrent = i + 1
			row.InstallmentTotal = n
			row.RecurrenceGroupID = group
			row.IsRealized = i == 0 && req.IsRealized
			rows[i] = row
		}
		return rows

	case req.IsRecurring && req.RecurrenceCount > 1:
		n := req.RecurrenceCount
		group := newGroupID()
		rows := make([]core.Transaction, n)
		for i := range rows {
			row := base
			row.Date = req.Date.AddMonths(i)
			row.IsRecurring = true
			row.RecurrenceCount = n
			row.RecurrenceGroupID = group
			row.IsRealized = i == 0 && req.IsRealized
			rows[i] = row
		}
		return rows

	default:
		if req.IsRecurring {
			base.IsRecurring = true
			base.RecurrenceCount = req.RecurrenceCount
			base.RecurrenceGroupID = newGroupID()
		}
		return []core.Transaction{base}
	}
}
