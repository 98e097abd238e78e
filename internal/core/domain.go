package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income   TransactionType = "income"
	Expense  TransactionType = "expense"
	Transfer TransactionType = "transfer"
)

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
	Wallet   AccountType = "wallet"
	Other    AccountType = "other"
)

const (
	IncomeCategory  CategoryType = "income"
	ExpenseCategory CategoryType = "expense"
)

const dateLayout = "2006-01-02"

// MaxSeriesLength caps how many rows one installment plan or recurrence may
// materialize.
const MaxSeriesLength = 360

// lastStorableYear is the last year the four-digit date layout can round-trip.
const lastStorableYear = 9999

type (
	TransactionType string
	AccountType     string
	CategoryType    string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID        int64
		OwnerID   int64
		Name      string
		Type      AccountType
		Balance   Money // derived from the ledger, see services.Recalculator
		Color     string
		Icon      string
		CreatedAt time.Time
	}

	Category struct {
		ID      int64
		OwnerID int64
		Name    string
		Icon    string
		Type    CategoryType
		Color   string
	}

	CreditCard struct {
		ID         int64
		OwnerID    int64
		Name       string
		Limit      Money
		ClosingDay int
		DueDay     int
		Color      string
		CreatedAt  time.Time
	}

	// Transaction is one ledger row. Amount is always a positive magnitude;
	// direction comes from Type and, for transfers, from which side of the
	// row an account sits on.
	Transaction struct {
		ID                 int64
		OwnerID            int64
		Description        string
		Amount             Money
		Type               TransactionType
		Date               Date
		AccountID          int64
		ToAccountID        int64 // transfers only, 0 when unset
		CreditCardID       int64 // 0 when unset
		CategoryID         int64
		IsRealized         bool
		IsRecurring        bool
		RecurrenceCount    int
		RecurrenceGroupID  string
		InstallmentCurrent int
		InstallmentTotal   int
		CreatedAt          time.Time
	}

	BudgetGoal struct {
		ID         int64
		OwnerID    int64
		CategoryID int64
		Month      Month
		Limit      Money
	}

	// TransactionRequest is what a caller submits to create or update a
	// transaction. Zero ids mean "not set".
	TransactionRequest struct {
		Description      string
		Amount           Money
		Type             TransactionType
		Date             Date
		AccountID        int64
		ToAccountID      int64
		CreditCardID     int64
		CategoryID       int64
		IsRecurring      bool
		RecurrenceCount  int
		InstallmentTotal int
		IsRealized       bool
	}

	// TransactionFilter narrows a listing. Empty fields do not filter.
	TransactionFilter struct {
		Month     Month
		AccountID int64
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrMissingAccount   = errors.New("missing account")
	ErrMissingCategory  = errors.New("missing category")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	default:
		return false
	}
}

func (t AccountType) IsValid() bool {
	switch t {
	case Checking, Savings, Wallet, Other:
		return true
	default:
		return false
	}
}

func (t CategoryType) IsValid() bool {
	return t == IncomeCategory || t == ExpenseCategory
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// DateOf truncates a timestamp to its calendar day in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// AddMonths moves the date n calendar months forward. Days that do not exist
// in the target month roll over into the next one (Jan 31 + 1 = Mar 3).
func (d Date) AddMonths(n int) Date {
	return Date{Time: d.Time.AddDate(0, n, 0)}
}

// Month returns the YYYY-MM month the date falls in.
func (d Date) Month() Month {
	return Month(d.Format("2006-01"))
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Normalize fills defaults and drops references that do not apply to the
// request's type: only transfers carry a destination and only expenses a card.
func (r TransactionRequest) Normalize(today Date) TransactionRequest {
	r.Description = strings.TrimSpace(r.Description)
	if r.Date.IsZero() {
		r.Date = today
	}
	if r.Type != Transfer {
		r.ToAccountID = 0
	}
	if r.Type != Expense {
		r.CreditCardID = 0
	}
	if !r.IsRecurring {
		r.RecurrenceCount = 0
	}
	return r
}

// Validate checks the request fields and returns an error wrapping
// ErrValidation for the first problem found.
func (r TransactionRequest) Validate() error {
	if strings.TrimSpace(r.Description) == "" {
		return validationErr("description", ErrEmptyDescription)
	}
	if len(r.Description) > 200 {
		return validationErr("description", errors.New("description too long (max 200 characters)"))
	}
	if err := r.Amount.Validate(); err != nil {
		return validationErr("amount", err)
	}
	if !r.Type.IsValid() {
		return validationErr("type", ErrInvalidType)
	}
	if err := r.Date.Validate(); err != nil {
		return validationErr("date", err)
	}
	if r.AccountID <= 0 {
		return validationErr("accountId", ErrMissingAccount)
	}
	if r.CategoryID <= 0 {
		return validationErr("categoryId", ErrMissingCategory)
	}
	if r.Type == Transfer {
		if r.ToAccountID <= 0 {
			return validationErr("toAccountId", errors.New("transfer requires a destination account"))
		}
		if r.ToAccountID == r.AccountID {
			return validationErr("toAccountId", errors.New("transfer destination must differ from source"))
		}
	}
	if r.InstallmentTotal < 0 {
		return validationErr("installmentTotal", errors.New("must not be negative"))
	}
	if r.RecurrenceCount < 0 {
		return validationErr("recurrenceCount", errors.New("must not be negative"))
	}
	if r.IsRecurring && r.InstallmentTotal > 1 {
		return validationErr("installmentTotal", errors.New("installments and recurrence are mutually exclusive"))
	}
	if r.InstallmentTotal > MaxSeriesLength {
		return validationErr("installmentTotal", fmt.Errorf("at most %d installments", MaxSeriesLength))
	}
	if r.RecurrenceCount > MaxSeriesLength {
		return validationErr("recurrenceCount", fmt.Errorf("at most %d occurrences", MaxSeriesLength))
	}
	if r.isInstallmentPlan() && r.Amount.Split(r.InstallmentTotal).Cents <= 0 {
		return validationErr("installmentTotal", errors.New("amount too small to split into installments"))
	}
	if last := r.Date.AddMonths(r.SeriesLength() - 1); last.Year() > lastStorableYear {
		field := "date"
		if r.isInstallmentPlan() {
			field = "installmentTotal"
		} else if r.SeriesLength() > 1 {
			field = "recurrenceCount"
		}
		return validationErr(field, fmt.Errorf("series would run past year %d", lastStorableYear))
	}
	return nil
}

func (r TransactionRequest) isInstallmentPlan() bool {
	return r.Type == Expense && r.InstallmentTotal > 1
}

// SeriesLength is the number of rows the request expands into.
func (r TransactionRequest) SeriesLength() int {
	switch {
	case r.isInstallmentPlan():
		return r.InstallmentTotal
	case r.IsRecurring && r.RecurrenceCount > 1:
		return r.RecurrenceCount
	default:
		return 1
	}
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return validationErr("name", errors.New("empty name"))
	}
	if !a.Type.IsValid() {
		return validationErr("type", fmt.Errorf("invalid account type %q", a.Type))
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return validationErr("name", errors.New("empty name"))
	}
	if !c.Type.IsValid() {
		return validationErr("type", fmt.Errorf("invalid category type %q", c.Type))
	}
	return nil
}

func (c CreditCard) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return validationErr("name", errors.New("empty name"))
	}
	if c.Limit.Cents < 0 {
		return validationErr("limit", ErrInvalidAmount)
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return validationErr("closingDay", ErrInvalidDay)
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return validationErr("dueDay", ErrInvalidDay)
	}
	return nil
}

func (g BudgetGoal) Validate() error {
	if g.CategoryID <= 0 {
		return validationErr("categoryId", ErrMissingCategory)
	}
	if err := g.Month.Validate(); err != nil {
		return validationErr("month", err)
	}
	if g.Limit.Cents < 0 {
		return validationErr("limitAmount", ErrInvalidAmount)
	}
	return nil
}
