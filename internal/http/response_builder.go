package http

import (
	"time"

	"saldo/internal/core"
)

// Amounts are rendered as fixed two-decimal strings so clients never see
// binary floating point.

type transactionResponse struct {
	ID                 int64  `json:"id"`
	Description        string `json:"description"`
	Amount             string `json:"amount"`
	Type               string `json:"type"`
	Date               string `json:"date"`
	AccountID          int64  `json:"accountId"`
	ToAccountID        *int64 `json:"toAccountId"`
	CreditCardID       *int64 `json:"creditCardId"`
	CategoryID         int64  `json:"categoryId"`
	IsRealized         bool   `json:"isRealized"`
	IsRecurring        bool   `json:"isRecurring"`
	RecurrenceCount    int    `json:"recurrenceCount,omitempty"`
	RecurrenceGroupID  string `json:"recurrenceGroupId,omitempty"`
	InstallmentCurrent int    `json:"installmentCurrent,omitempty"`
	InstallmentTotal   int    `json:"installmentTotal,omitempty"`
	CreatedAt          string `json:"createdAt,omitempty"`
}

func optionalID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func newTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 t.ID,
		Description:        t.Description,
		Amount:             t.Amount.String(),
		Type:               string(t.Type),
		Date:               t.Date.String(),
		AccountID:          t.AccountID,
		ToAccountID:        optionalID(t.ToAccountID),
		CreditCardID:       optionalID(t.CreditCardID),
		CategoryID:         t.CategoryID,
		IsRealized:         t.IsRealized,
		IsRecurring:        t.IsRecurring,
		RecurrenceCount:    t.RecurrenceCount,
		RecurrenceGroupID:  t.RecurrenceGroupID,
		InstallmentCurrent: t.InstallmentCurrent,
		InstallmentTotal:   t.InstallmentTotal,
		CreatedAt:          formatTimestamp(t.CreatedAt),
	}
}

func newTransactionList(ts []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, newTransactionResponse(t))
	}
	return out
}

type accountResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance"`
	Color     string `json:"color"`
	Icon      string `json:"icon"`
	CreatedAt string `json:"createdAt,omitempty"`
}

func newAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		Balance:   a.Balance.String(),
		Color:     a.Color,
		Icon:      a.Icon,
		CreatedAt: formatTimestamp(a.CreatedAt),
	}
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func newCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Icon: c.Icon, Type: string(c.Type), Color: c.Color}
}

type cardResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Limit      string `json:"limit"`
	ClosingDay int    `json:"closingDay"`
	DueDay     int    `json:"dueDay"`
	Color      string `json:"color"`
}

func newCardResponse(c core.CreditCard) cardResponse {
	return cardResponse{
		ID:         c.ID,
		Name:       c.Name,
		Limit:      c.Limit.String(),
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
		Color:      c.Color,
	}
}

type budgetGoalResponse struct {
	ID          int64  `json:"id"`
	CategoryID  int64  `json:"categoryId"`
	Month       string `json:"month"`
	LimitAmount string `json:"limitAmount"`
}

func newBudgetGoalResponse(g core.BudgetGoal) budgetGoalResponse {
	return budgetGoalResponse{ID: g.ID, CategoryID: g.CategoryID, Month: string(g.Month), LimitAmount: g.Limit.String()}
}

type budgetProgressResponse struct {
	budgetGoalResponse
	Category  string `json:"category"`
	Spent     string `json:"spent"`
	Remaining string `json:"remaining"`
}

type cardUsageResponse struct {
	cardResponse
	Used      string `json:"used"`
	Available string `json:"available"`
}

type summaryResponse struct {
	Month        string                   `json:"month"`
	Income       string                   `json:"income"`
	Expense      string                   `json:"expense"`
	Net          string                   `json:"net"`
	TotalBalance string                   `json:"totalBalance"`
	Budgets      []budgetProgressResponse `json:"budgets"`
	Cards        []cardUsageResponse      `json:"cards"`
}

func newSummaryResponse(s core.MonthSummary) summaryResponse {
	out := summaryResponse{
		Month:        string(s.Month),
		Income:       s.Income.String(),
		Expense:      s.Expense.String(),
		Net:          s.Net.String(),
		TotalBalance: s.TotalBalance.String(),
		Budgets:      make([]budgetProgressResponse, 0, len(s.Budgets)),
		Cards:        make([]cardUsageResponse, 0, len(s.Cards)),
	}
	for _, b := range s.Budgets {
		out.Budgets = append(out.Budgets, budgetProgressResponse{
			budgetGoalResponse: newBudgetGoalResponse(b.Goal),
			Category:           b.Category,
			Spent:              b.Spent.String(),
			Remaining:          b.Remaining.String(),
		})
	}
	for _, c := range s.Cards {
		out.Cards = append(out.Cards, cardUsageResponse{
			cardResponse: newCardResponse(c.Card),
			Used:         c.Used.String(),
			Available:    c.Available.String(),
		})
	}
	return out
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}
