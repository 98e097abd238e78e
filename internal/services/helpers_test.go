package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "saldo.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, e *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) ops() []amqp.LedgerOp {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.LedgerOp, len(p.events))
	for i, e := range p.events {
		out[i] = e.Op
	}
	return out
}

type recordingCache struct {
	mu     sync.Mutex
	owners []int64
}

func (c *recordingCache) InvalidateOwner(ownerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owners = append(c.owners, ownerID)
}

// failingLedger runs the callback in a real transaction and then forces a
// rollback, as if a late statement had failed.
type failingLedger struct {
	*storage.SQLiteRepository
	err error
}

func (l failingLedger) InTx(ctx context.Context, fn func(*storage.Store) error) error {
	return l.SQLiteRepository.InTx(ctx, func(st *storage.Store) error {
		if err := fn(st); err != nil {
			return err
		}
		return l.err
	})
}

var errInjected = errors.New("injected failure")

type ownerData struct {
	id       int64
	checking core.Account
	savings  core.Account
	food     core.Category
	salary   core.Category
	card     core.CreditCard
}

func seedOwner(t *testing.T, repo *storage.SQLiteRepository, owner int64) ownerData {
	t.Helper()
	ctx := context.Background()
	d := ownerData{id: owner}
	var err error
	if d.checking, err = repo.CreateAccount(ctx, core.Account{OwnerID: owner, Name: "Checking", Type: core.Checking, Color: "#00f3ff", Icon: "Wallet"}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if d.savings, err = repo.CreateAccount(ctx, core.Account{OwnerID: owner, Name: "Savings", Type: core.Savings, Color: "#00f3ff", Icon: "Wallet"}); err != nil {
		t.Fatalf("create account: %v", err)
	}
	if d.food, err = repo.CreateCategory(ctx, core.Category{OwnerID: owner, Name: "Food", Icon: "Tag", Type: core.ExpenseCategory, Color: "#e2e8f0"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if d.salary, err = repo.CreateCategory(ctx, core.Category{OwnerID: owner, Name: "Salary", Icon: "Tag", Type: core.IncomeCategory, Color: "#e2e8f0"}); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if d.card, err = repo.CreateCreditCard(ctx, core.CreditCard{OwnerID: owner, Name: "Visa", Limit: core.Money{Cents: 100000}, ClosingDay: 1, DueDay: 10, Color: "#7c3aed"}); err != nil {
		t.Fatalf("create card: %v", err)
	}
	return d
}

func (d ownerData) income(cents int64) core.TransactionRequest {
	return core.TransactionRequest{
		Description: "Salary",
		Amount:      core.Money{Cents: cents},
		Type:        core.Income,
		Date:        core.NewDate(2025, 6, 5),
		AccountID:   d.checking.ID,
		CategoryID:  d.salary.ID,
		IsRealized:  true,
	}
}

func (d ownerData) expense(cents int64) core.TransactionRequest {
	return core.TransactionRequest{
		Description: "Groceries",
		Amount:      core.Money{Cents: cents},
		Type:        core.Expense,
		Date:        core.NewDate(2025, 6, 10),
		AccountID:   d.checking.ID,
		CategoryID:  d.food.ID,
		IsRealized:  true,
	}
}

func (d ownerData) transfer(cents int64) core.TransactionRequest {
	return core.TransactionRequest{
		Description: "To savings",
		Amount:      core.Money{Cents: cents},
		Type:        core.Transfer,
		Date:        core.NewDate(2025, 6, 12),
		AccountID:   d.checking.ID,
		ToAccountID: d.savings.ID,
		CategoryID:  d.food.ID,
		IsRealized:  true,
	}
}

func fixedClock() time.Time { return time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC) }

func newTestTransactionService(ledger Ledger, pub LedgerPublisher, cache OwnerCache) *TransactionService {
	svc := NewTransactionService(ledger, pub, cache)
	svc.now = fixedClock
	return svc
}

func balanceOf(t *testing.T, repo *storage.SQLiteRepository, accountID int64) int64 {
	t.Helper()
	b, err := repo.AccountBalance(context.Background(), accountID)
	if err != nil {
		t.Fatalf("read balance of %d: %v", accountID, err)
	}
	return b.Cents
}

func countRows(t *testing.T, repo *storage.SQLiteRepository, ownerID int64) int {
	t.Helper()
	rows, err := repo.ListTransactions(context.Background(), ownerID, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	return len(rows)
}
