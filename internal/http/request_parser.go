package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"saldo/internal/core"
)

// amountField accepts both JSON numbers and strings ("12.34" or "12,34") and
// keeps the raw text so rounding happens once, in core.ParseAmount.
type amountField struct {
	raw string
	set bool
}

func (a *amountField) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = amountField{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField{raw: s, set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or a decimal string: %w", err)
	}
	*a = amountField{raw: n.String(), set: true}
	return nil
}

// money converts a required strictly positive amount.
func (a amountField) money(field string) (core.Money, error) {
	m, err := core.ParseAmount(a.raw)
	if err != nil {
		return core.Money{}, core.NewValidationError(field, err)
	}
	return m, nil
}

// optionalMoney converts an amount that may be omitted or zero.
func (a amountField) optionalMoney(field string) (core.Money, error) {
	if !a.set || isZeroAmount(a.raw) {
		return core.Money{}, nil
	}
	return a.money(field)
}

func isZeroAmount(s string) bool {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 0
}

type transactionPayload struct {
	Description      string      `json:"description"`
	Amount           amountField `json:"amount"`
	Type             string      `json:"type"`
	Date             string      `json:"date"`
	AccountID        int64       `json:"accountId"`
	ToAccountID      int64       `json:"toAccountId"`
	CreditCardID     int64       `json:"creditCardId"`
	CategoryID       int64       `json:"categoryId"`
	IsRealized       bool        `json:"isRealized"`
	IsRecurring      bool        `json:"isRecurring"`
	RecurrenceCount  int         `json:"recurrenceCount"`
	InstallmentTotal int         `json:"installmentTotal"`
}

// toRequest converts the payload. An empty date is left zero so the service
// applies its default.
func (p transactionPayload) toRequest() (core.TransactionRequest, error) {
	amount, err := p.Amount.money("amount")
	if err != nil {
		return core.TransactionRequest{}, err
	}
	var date core.Date
	if strings.TrimSpace(p.Date) != "" {
		if date, err = core.ParseDate(p.Date); err != nil {
			return core.TransactionRequest{}, core.NewValidationError("date", err)
		}
	}
	return core.TransactionRequest{
		Description:      p.Description,
		Amount:           amount,
		Type:             core.TransactionType(strings.ToLower(strings.TrimSpace(p.Type))),
		Date:             date,
		AccountID:        p.AccountID,
		ToAccountID:      p.ToAccountID,
		CreditCardID:     p.CreditCardID,
		CategoryID:       p.CategoryID,
		IsRealized:       p.IsRealized,
		IsRecurring:      p.IsRecurring,
		RecurrenceCount:  p.RecurrenceCount,
		InstallmentTotal: p.InstallmentTotal,
	}, nil
}

type realizedPayload struct {
	IsRealized *bool `json:"isRealized"`
}

type accountPayload struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Balance amountField `json:"balance"`
	Color   string      `json:"color"`
	Icon    string      `json:"icon"`
}

func (p accountPayload) toAccount(id int64) (core.Account, error) {
	balance, err := parseSignedAmount(p.Balance, "balance")
	if err != nil {
		return core.Account{}, err
	}
	return core.Account{
		ID:      id,
		Name:    p.Name,
		Type:    core.AccountType(strings.ToLower(strings.TrimSpace(p.Type))),
		Balance: balance,
		Color:   p.Color,
		Icon:    p.Icon,
	}, nil
}

// parseSignedAmount allows an opening balance below zero.
func parseSignedAmount(a amountField, field string) (core.Money, error) {
	raw := strings.TrimSpace(a.raw)
	if neg, ok := strings.CutPrefix(raw, "-"); ok {
		m, err := amountField{raw: neg, set: true}.optionalMoney(field)
		return core.Money{Cents: -m.Cents}, err
	}
	return a.optionalMoney(field)
}

type categoryPayload struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (p categoryPayload) toCategory(id int64) core.Category {
	return core.Category{
		ID:    id,
		Name:  p.Name,
		Icon:  p.Icon,
		Type:  core.CategoryType(strings.ToLower(strings.TrimSpace(p.Type))),
		Color: p.Color,
	}
}

type cardPayload struct {
	Name       string      `json:"name"`
	Limit      amountField `json:"limit"`
	ClosingDay int         `json:"closingDay"`
	DueDay     int         `json:"dueDay"`
	Color      string      `json:"color"`
}

func (p cardPayload) toCard(id int64) (core.CreditCard, error) {
	limit, err := p.Limit.optionalMoney("limit")
	if err != nil {
		return core.CreditCard{}, err
	}
	return core.CreditCard{
		ID:         id,
		Name:       p.Name,
		Limit:      limit,
		ClosingDay: p.ClosingDay,
		DueDay:     p.DueDay,
		Color:      p.Color,
	}, nil
}

type budgetGoalPayload struct {
	CategoryID  int64       `json:"categoryId"`
	Month       string      `json:"month"`
	LimitAmount amountField `json:"limitAmount"`
}

func (p budgetGoalPayload) toGoal(id int64) (core.BudgetGoal, error) {
	limit, err := p.LimitAmount.optionalMoney("limitAmount")
	if err != nil {
		return core.BudgetGoal{}, err
	}
	return core.BudgetGoal{
		ID:         id,
		CategoryID: p.CategoryID,
		Month:      core.Month(strings.TrimSpace(p.Month)),
		Limit:      limit,
	}, nil
}

// parseTransactionFilter reads month and accountId from the query string.
func parseTransactionFilter(q url.Values) (core.TransactionFilter, error) {
	f := core.TransactionFilter{Month: core.Month(strings.TrimSpace(q.Get("month")))}
	if v := strings.TrimSpace(q.Get("accountId")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return f, core.NewValidationError("accountId", fmt.Errorf("invalid account id %q", v))
		}
		f.AccountID = id
	}
	return f, nil
}
