package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/core"
)

// Store maps between ledger rows and domain types. A Store is bound either
// to the connection pool or to a single transaction.
type Store struct {
	q *Queries
}

// Exists reports whether a record of the given kind has both id and owner.
func (s *Store) Exists(ctx context.Context, kind core.EntityKind, id, ownerID int64) (bool, error) {
	var (
		ok  bool
		err error
	)
	switch kind {
	case core.KindAccount:
		ok, err = s.q.AccountExists(ctx, id, ownerID)
	case core.KindCategory:
		ok, err = s.q.CategoryExists(ctx, id, ownerID)
	case core.KindCreditCard:
		ok, err = s.q.CreditCardExists(ctx, id, ownerID)
	case core.KindTransaction:
		ok, err = s.q.TransactionExists(ctx, id, ownerID)
	case core.KindBudgetGoal:
		ok, err = s.q.BudgetGoalExists(ctx, id, ownerID)
	default:
		return false, fmt.Errorf("unknown entity kind %d", int(kind))
	}
	if err != nil {
		return false, fmt.Errorf("check %s %d: %w", kind, id, err)
	}
	return ok, nil
}

// Transactions

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.q.CreateTransaction(ctx, CreateTransactionParams{
		UserID:             t.OwnerID,
		Description:        t.Description,
		AmountCents:        t.Amount.Cents,
		Type:               string(t.Type),
		Date:               t.Date.String(),
		AccountID:          t.AccountID,
		ToAccountID:        nullID(t.ToAccountID),
		CreditCardID:       nullID(t.CreditCardID),
		CategoryID:         t.CategoryID,
		IsRealized:         t.IsRealized,
		IsRecurring:        t.IsRecurring,
		RecurrenceCount:    nullInt(t.RecurrenceCount),
		RecurrenceGroupID:  nullString(t.RecurrenceGroupID),
		InstallmentCurrent: nullInt(t.InstallmentCurrent),
		InstallmentTotal:   nullInt(t.InstallmentTotal),
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction row inserted",
		"transaction_id", id,
		"account_id", t.AccountID,
		"amount_cents", t.Amount.Cents,
		"type", t.Type)

	return id, nil
}

func (s *Store) GetTransaction(ctx context.Context, id, ownerID int64) (core.Transaction, error) {
	row, err := s.q.GetTransaction(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return toCoreTransaction(row)
}

func (s *Store) ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	rows, err := s.q.ListTransactions(ctx, ListTransactionsParams{
		UserID:    ownerID,
		Month:     string(f.Month),
		AccountID: f.AccountID,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return toCoreTransactions(rows)
}

func (s *Store) ListTransactionGroup(ctx context.Context, ownerID int64, groupID string) ([]core.Transaction, error) {
	rows, err := s.q.ListTransactionsByGroup(ctx, ownerID, groupID)
	if err != nil {
		return nil, fmt.Errorf("list transaction group: %w", err)
	}
	return toCoreTransactions(rows)
}

// UpdateTransaction overwrites the mutable fields of t. Series metadata
// (recurrence and installment fields) is left untouched.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	n, err := s.q.UpdateTransaction(ctx, UpdateTransactionParams{
		Description:  t.Description,
		AmountCents:  t.Amount.Cents,
		Type:         string(t.Type),
		Date:         t.Date.String(),
		AccountID:    t.AccountID,
		ToAccountID:  nullID(t.ToAccountID),
		CreditCardID: nullID(t.CreditCardID),
		CategoryID:   t.CategoryID,
		IsRealized:   t.IsRealized,
		ID:           t.ID,
		UserID:       t.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) SetTransactionRealized(ctx context.Context, id, ownerID int64, realized bool) error {
	n, err := s.q.SetTransactionRealized(ctx, realized, id, ownerID)
	if err != nil {
		return fmt.Errorf("set transaction realized: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	n, err := s.q.DeleteTransaction(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("transaction %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Balances

// LedgerSums returns the four realized totals that define an account balance.
func (s *Store) LedgerSums(ctx context.Context, accountID int64) (LedgerSumsRow, error) {
	sums, err := s.q.LedgerSums(ctx, accountID)
	if err != nil {
		return LedgerSumsRow{}, fmt.Errorf("sum ledger for account %d: %w", accountID, err)
	}
	return sums, nil
}

func (s *Store) SetAccountBalance(ctx context.Context, accountID int64, balance core.Money) error {
	if err := s.q.SetAccountBalance(ctx, balance.Cents, accountID); err != nil {
		return fmt.Errorf("set balance for account %d: %w", accountID, err)
	}
	return nil
}

func (s *Store) AccountBalance(ctx context.Context, accountID int64) (core.Money, error) {
	cents, err := s.q.GetAccountBalance(ctx, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Money{}, fmt.Errorf("account %d: %w", accountID, core.ErrNotFound)
	}
	if err != nil {
		return core.Money{}, fmt.Errorf("get balance for account %d: %w", accountID, err)
	}
	return core.Money{Cents: cents}, nil
}

func (s *Store) ListAccountRefs(ctx context.Context) ([]AccountRef, error) {
	refs, err := s.q.ListAccountRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list account refs: %w", err)
	}
	return refs, nil
}

func (s *Store) TotalBalance(ctx context.Context, ownerID int64) (core.Money, error) {
	cents, err := s.q.SumBalances(ctx, ownerID)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum balances: %w", err)
	}
	return core.Money{Cents: cents}, nil
}

// Accounts

func (s *Store) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	row, err := s.q.CreateAccount(ctx, CreateAccountParams{
		UserID:       a.OwnerID,
		Name:         a.Name,
		Type:         string(a.Type),
		BalanceCents: a.Balance.Cents,
		Color:        a.Color,
		Icon:         a.Icon,
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return toCoreAccount(row), nil
}

func (s *Store) GetAccount(ctx context.Context, id, ownerID int64) (core.Account, error) {
	row, err := s.q.GetAccount(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return toCoreAccount(row), nil
}

func (s *Store) ListAccounts(ctx context.Context, ownerID int64) ([]core.Account, error) {
	rows, err := s.q.ListAccounts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCoreAccount(r))
	}
	return out, nil
}

func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	n, err := s.q.UpdateAccount(ctx, UpdateAccountParams{
		Name:   a.Name,
		Type:   string(a.Type),
		Color:  a.Color,
		Icon:   a.Icon,
		ID:     a.ID,
		UserID: a.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", a.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id, ownerID int64) error {
	n, err := s.q.DeleteAccount(ctx, id, ownerID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("account %d has transactions: %w", id, core.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Categories

func (s *Store) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	row, err := s.q.CreateCategory(ctx, CreateCategoryParams{
		UserID: c.OwnerID,
		Name:   c.Name,
		Icon:   c.Icon,
		Type:   string(c.Type),
		Color:  c.Color,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return toCoreCategory(row), nil
}

func (s *Store) GetCategory(ctx context.Context, id, ownerID int64) (core.Category, error) {
	row, err := s.q.GetCategory(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return toCoreCategory(row), nil
}

// ListCategories returns the owner's categories, optionally of one type.
func (s *Store) ListCategories(ctx context.Context, ownerID int64, t core.CategoryType) ([]core.Category, error) {
	rows, err := s.q.ListCategories(ctx, ownerID, string(t))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make([]core.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCoreCategory(r))
	}
	return out, nil
}

func (s *Store) CountCategories(ctx context.Context, ownerID int64) (int64, error) {
	n, err := s.q.CountCategories(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	n, err := s.q.UpdateCategory(ctx, UpdateCategoryParams{
		Name:   c.Name,
		Icon:   c.Icon,
		Type:   string(c.Type),
		Color:  c.Color,
		ID:     c.ID,
		UserID: c.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCategory(ctx context.Context, id, ownerID int64) error {
	n, err := s.q.DeleteCategory(ctx, id, ownerID)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("category %d has transactions: %w", id, core.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Credit cards

func (s *Store) CreateCreditCard(ctx context.Context, c core.CreditCard) (core.CreditCard, error) {
	row, err := s.q.CreateCreditCard(ctx, CreateCreditCardParams{
		UserID:     c.OwnerID,
		Name:       c.Name,
		LimitCents: c.Limit.Cents,
		ClosingDay: int64(c.ClosingDay),
		DueDay:     int64(c.DueDay),
		Color:      c.Color,
	})
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("create credit card: %w", err)
	}
	return toCoreCreditCard(row), nil
}

func (s *Store) GetCreditCard(ctx context.Context, id, ownerID int64) (core.CreditCard, error) {
	row, err := s.q.GetCreditCard(ctx, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CreditCard{}, fmt.Errorf("credit card %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.CreditCard{}, fmt.Errorf("get credit card: %w", err)
	}
	return toCoreCreditCard(row), nil
}

func (s *Store) ListCreditCards(ctx context.Context, ownerID int64) ([]core.CreditCard, error) {
	rows, err := s.q.ListCreditCards(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	out := make([]core.CreditCard, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCoreCreditCard(r))
	}
	return out, nil
}

func (s *Store) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	n, err := s.q.UpdateCreditCard(ctx, UpdateCreditCardParams{
		Name:       c.Name,
		LimitCents: c.Limit.Cents,
		ClosingDay: int64(c.ClosingDay),
		DueDay:     int64(c.DueDay),
		Color:      c.Color,
		ID:         c.ID,
		UserID:     c.OwnerID,
	})
	if err != nil {
		return fmt.Errorf("update credit card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("credit card %d: %w", c.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteCreditCard(ctx context.Context, id, ownerID int64) error {
	n, err := s.q.DeleteCreditCard(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete credit card: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("credit card %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// CardUsage returns the expense total charged to each of the owner's cards.
func (s *Store) CardUsage(ctx context.Context, ownerID int64) (map[int64]core.Money, error) {
	rows, err := s.q.CardUsage(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("card usage: %w", err)
	}
	out := make(map[int64]core.Money, len(rows))
	for _, r := range rows {
		out[r.CreditCardID] = core.Money{Cents: r.UsedCents}
	}
	return out, nil
}

// Budget goals

// UpsertBudgetGoal creates the goal or, when one already exists for the same
// owner, category and month, replaces its limit.
func (s *Store) UpsertBudgetGoal(ctx context.Context, g core.BudgetGoal) (core.BudgetGoal, error) {
	row, err := s.q.UpsertBudgetGoal(ctx, UpsertBudgetGoalParams{
		UserID:     g.OwnerID,
		CategoryID: g.CategoryID,
		Month:      string(g.Month),
		LimitCents: g.Limit.Cents,
	})
	if err != nil {
		return core.BudgetGoal{}, fmt.Errorf("upsert budget goal: %w", err)
	}
	return toCoreBudgetGoal(row), nil
}

func (s *Store) ListBudgetGoals(ctx context.Context, ownerID int64, month core.Month) ([]core.BudgetGoal, error) {
	rows, err := s.q.ListBudgetGoals(ctx, ownerID, string(month))
	if err != nil {
		return nil, fmt.Errorf("list budget goals: %w", err)
	}
	out := make([]core.BudgetGoal, 0, len(rows))
	for _, r := range rows {
		out = append(out, toCoreBudgetGoal(r))
	}
	return out, nil
}

func (s *Store) UpdateBudgetGoal(ctx context.Context, g core.BudgetGoal) error {
	n, err := s.q.UpdateBudgetGoal(ctx, UpdateBudgetGoalParams{
		CategoryID: g.CategoryID,
		Month:      string(g.Month),
		LimitCents: g.Limit.Cents,
		ID:         g.ID,
		UserID:     g.OwnerID,
	})
	if isUniqueViolation(err) {
		return fmt.Errorf("budget goal for category %d in %s exists: %w", g.CategoryID, g.Month, core.ErrInUse)
	}
	if err != nil {
		return fmt.Errorf("update budget goal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget goal %d: %w", g.ID, core.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteBudgetGoal(ctx context.Context, id, ownerID int64) error {
	n, err := s.q.DeleteBudgetGoal(ctx, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete budget goal: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("budget goal %d: %w", id, core.ErrNotFound)
	}
	return nil
}

// Month aggregates

func (s *Store) MonthTotals(ctx context.Context, ownerID int64, month core.Month) (income, expense core.Money, err error) {
	row, err := s.q.MonthTotals(ctx, ownerID, string(month))
	if err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("month totals: %w", err)
	}
	return core.Money{Cents: row.Income}, core.Money{Cents: row.Expense}, nil
}

// SpentByCategory returns realized expense per category for a month.
func (s *Store) SpentByCategory(ctx context.Context, ownerID int64, month core.Month) (map[int64]core.Money, error) {
	rows, err := s.q.SpentByCategory(ctx, ownerID, string(month))
	if err != nil {
		return nil, fmt.Errorf("spent by category: %w", err)
	}
	out := make(map[int64]core.Money, len(rows))
	for _, r := range rows {
		out[r.CategoryID] = core.Money{Cents: r.SpentCents}
	}
	return out, nil
}

// Conversions

func toCoreTransactions(rows []Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, 0, len(rows))
	for _, r := range rows {
		t, err := toCoreTransaction(r)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func toCoreTransaction(r Transaction) (core.Transaction, error) {
	date, err := core.ParseDate(r.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", r.ID, err)
	}
	return core.Transaction{
		ID:                 r.ID,
		OwnerID:            r.UserID,
		Description:        r.Description,
		Amount:             core.Money{Cents: r.AmountCents},
		Type:               core.TransactionType(r.Type),
		Date:               date,
		AccountID:          r.AccountID,
		ToAccountID:        r.ToAccountID.Int64,
		CreditCardID:       r.CreditCardID.Int64,
		CategoryID:         r.CategoryID,
		IsRealized:         r.IsRealized,
		IsRecurring:        r.IsRecurring,
		RecurrenceCount:    int(r.RecurrenceCount.Int64),
		RecurrenceGroupID:  r.RecurrenceGroupID.String,
		InstallmentCurrent: int(r.InstallmentCurrent.Int64),
		InstallmentTotal:   int(r.InstallmentTotal.Int64),
		CreatedAt:          parseTimestamp(r.CreatedAt),
	}, nil
}

func toCoreAccount(r Account) core.Account {
	return core.Account{
		ID:        r.ID,
		OwnerID:   r.UserID,
		Name:      r.Name,
		Type:      core.AccountType(r.Type),
		Balance:   core.Money{Cents: r.BalanceCents},
		Color:     r.Color,
		Icon:      r.Icon,
		CreatedAt: parseTimestamp(r.CreatedAt),
	}
}

func toCoreCategory(r Category) core.Category {
	return core.Category{
		ID:      r.ID,
		OwnerID: r.UserID,
		Name:    r.Name,
		Icon:    r.Icon,
		Type:    core.CategoryType(r.Type),
		Color:   r.Color,
	}
}

func toCoreCreditCard(r CreditCard) core.CreditCard {
	return core.CreditCard{
		ID:         r.ID,
		OwnerID:    r.UserID,
		Name:       r.Name,
		Limit:      core.Money{Cents: r.LimitCents},
		ClosingDay: int(r.ClosingDay),
		DueDay:     int(r.DueDay),
		Color:      r.Color,
		CreatedAt:  parseTimestamp(r.CreatedAt),
	}
}

func toCoreBudgetGoal(r BudgetGoal) core.BudgetGoal {
	return core.BudgetGoal{
		ID:         r.ID,
		OwnerID:    r.UserID,
		CategoryID: r.CategoryID,
		Month:      core.Month(r.Month),
		Limit:      core.Money{Cents: r.LimitCents},
	}
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n > 0}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
