package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"saldo/internal/amqp"
	"saldo/internal/core"
)

func TestNewTransactionService(t *testing.T) {
	svc := NewTransactionService(nil, nil, nil)
	if svc == nil {
		t.Fatal("expected service to be created")
	}
	if svc.now == nil || svc.newGroupID == nil {
		t.Error("expected clock and group id generator to be set")
	}
}

func TestCreateBalanceIdentity(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	pending := d.expense(999999)
	pending.IsRealized = false

	for _, req := range []core.TransactionRequest{
		d.income(500000),
		d.expense(12050),
		d.transfer(30000),
		pending,
	} {
		if _, err := svc.Create(ctx, d.id, req); err != nil {
			t.Fatalf("Create(%s) error = %v", req.Type, err)
		}
	}

	if got, want := balanceOf(t, repo, d.checking.ID), int64(500000-12050-30000); got != want {
		t.Errorf("checking balance = %d, want %d", got, want)
	}
	if got := balanceOf(t, repo, d.savings.ID); got != 30000 {
		t.Errorf("savings balance = %d, want 30000", got)
	}
}

func TestCreateTransferIsOneRow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	id, err := svc.Create(ctx, d.id, d.transfer(2500))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n := countRows(t, repo, d.id); n != 1 {
		t.Fatalf("expected a single row, got %d", n)
	}

	for _, acct := range []int64{d.checking.ID, d.savings.ID} {
		rows, err := svc.List(ctx, d.id, core.TransactionFilter{AccountID: acct})
		if err != nil {
			t.Fatalf("List(account %d) error = %v", acct, err)
		}
		if len(rows) != 1 || rows[0].ID != id {
			t.Errorf("expected transfer listed under account %d, got %+v", acct, rows)
		}
	}

	if balanceOf(t, repo, d.checking.ID) != -2500 || balanceOf(t, repo, d.savings.ID) != 2500 {
		t.Error("transfer must move the amount from source to destination")
	}
}

func TestCreateDropsFieldsThatDoNotApply(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.income(100)
	req.ToAccountID = d.savings.ID
	req.CreditCardID = d.card.ID
	req.Date = core.Date{}
	req.Description = "  Bonus  "

	id, err := svc.Create(ctx, d.id, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := svc.Get(ctx, d.id, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.ToAccountID != 0 || got.CreditCardID != 0 {
		t.Errorf("income kept transfer/card refs: %+v", got)
	}
	if got.Description != "Bonus" {
		t.Errorf("description = %q, want trimmed", got.Description)
	}
	if got.Date.String() != "2025-06-15" {
		t.Errorf("date = %s, want today", got.Date)
	}
	if balanceOf(t, repo, d.savings.ID) != 0 {
		t.Error("savings must not be touched by an income")
	}
}

func TestCreateInstallments(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.expense(120000)
	req.CreditCardID = d.card.ID
	req.InstallmentTotal = 12

	id, err := svc.Create(ctx, d.id, req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	first, err := svc.Get(ctx, d.id, id)
	if err != nil {
		t.Fatal(err)
	}
	if first.InstallmentCurrent != 1 {
		t.Errorf("returned id should be the first installment, got %d", first.InstallmentCurrent)
	}

	series, err := svc.Series(ctx, d.id, first.RecurrenceGroupID)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 12 {
		t.Fatalf("expected 12 rows in series, got %d", len(series))
	}
	realized := 0
	for i, row := range series {
		if row.Amount.Cents != 10000 || row.InstallmentTotal != 12 || row.InstallmentCurrent != i+1 {
			t.Errorf("row %d: %+v", i, row)
		}
		if row.IsRealized {
			realized++
		}
	}
	if realized != 1 {
		t.Errorf("expected only the first installment realized, got %d", realized)
	}
	if got := balanceOf(t, repo, d.checking.ID); got != -10000 {
		t.Errorf("balance = %d, want -10000", got)
	}
}

func TestCreateRecurrenceKeepsFullAmount(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.income(300000)
	req.IsRecurring = true
	req.RecurrenceCount = 4
	req.IsRealized = false

	if _, err := svc.Create(ctx, d.id, req); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	rows, err := svc.List(ctx, d.id, core.TransactionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Amount.Cents != 300000 || !r.IsRecurring || r.RecurrenceGroupID != rows[0].RecurrenceGroupID {
			t.Errorf("unexpected row %+v", r)
		}
	}
	if got := balanceOf(t, repo, d.checking.ID); got != 0 {
		t.Errorf("pending series must not move the balance, got %d", got)
	}
}

func TestCreateValidationInsertsNothing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	tests := []struct {
		name   string
		mutate func(*core.TransactionRequest)
	}{
		{"empty description", func(r *core.TransactionRequest) { r.Description = "   " }},
		{"zero amount", func(r *core.TransactionRequest) { r.Amount = core.Money{} }},
		{"negative amount", func(r *core.TransactionRequest) { r.Amount = core.Money{Cents: -5} }},
		{"unknown type", func(r *core.TransactionRequest) { r.Type = "refund" }},
		{"missing account", func(r *core.TransactionRequest) { r.AccountID = 0 }},
		{"missing category", func(r *core.TransactionRequest) { r.CategoryID = 0 }},
		{"transfer without destination", func(r *core.TransactionRequest) { r.Type = core.Transfer }},
		{"recurring installments", func(r *core.TransactionRequest) {
			r.IsRecurring, r.RecurrenceCount, r.InstallmentTotal = true, 3, 3
		}},
		{"installment below one cent", func(r *core.TransactionRequest) {
			r.Amount, r.InstallmentTotal = core.Money{Cents: 1}, 3
		}},
		{"too many installments", func(r *core.TransactionRequest) {
			r.InstallmentTotal = core.MaxSeriesLength + 1
		}},
		{"too many occurrences", func(r *core.TransactionRequest) {
			r.IsRecurring, r.RecurrenceCount = true, core.MaxSeriesLength+1
		}},
		{"recurrence past year 9999", func(r *core.TransactionRequest) {
			r.Date, r.IsRecurring, r.RecurrenceCount = core.NewDate(9999, 6, 1), true, 12
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := d.expense(1000)
			tt.mutate(&req)
			_, err := svc.Create(ctx, d.id, req)
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if n := countRows(t, repo, d.id); n != 0 {
		t.Errorf("expected no rows after rejected requests, got %d", n)
	}
}

func TestListingSurvivesRejectedFarFutureSeries(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	if _, err := svc.Create(ctx, d.id, d.expense(1000)); err != nil {
		t.Fatalf("create: %v", err)
	}
	req := d.expense(1000)
	req.Date, req.IsRecurring, req.RecurrenceCount = core.NewDate(9999, 6, 1), true, 12
	if _, err := svc.Create(ctx, d.id, req); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	req.RecurrenceCount = 7
	if _, err := svc.Create(ctx, d.id, req); err != nil {
		t.Fatalf("series ending in 9999-12: %v", err)
	}
	rows, err := svc.List(ctx, d.id, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(rows))
	}
}

func TestOwnershipIsolation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	alice := seedOwner(t, repo, 1)
	bob := seedOwner(t, repo, 2)
	svc := newTestTransactionService(repo, nil, nil)

	aliceTx, err := svc.Create(ctx, alice.id, alice.expense(4200))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("create with foreign refs", func(t *testing.T) {
		refs := []func(*core.TransactionRequest){
			func(r *core.TransactionRequest) { r.AccountID = alice.checking.ID },
			func(r *core.TransactionRequest) { r.CategoryID = alice.food.ID },
			func(r *core.TransactionRequest) { r.CreditCardID = alice.card.ID },
		}
		for i, mutate := range refs {
			req := bob.expense(100)
			mutate(&req)
			if _, err := svc.Create(ctx, bob.id, req); !errors.Is(err, core.ErrAccessDenied) {
				t.Errorf("case %d: expected ErrAccessDenied, got %v", i, err)
			}
		}
		req := bob.transfer(100)
		req.ToAccountID = alice.savings.ID
		if _, err := svc.Create(ctx, bob.id, req); !errors.Is(err, core.ErrAccessDenied) {
			t.Errorf("foreign destination: expected ErrAccessDenied, got %v", err)
		}
		if n := countRows(t, repo, bob.id); n != 0 {
			t.Errorf("expected no rows for bob, got %d", n)
		}
	})

	t.Run("update foreign row", func(t *testing.T) {
		err := svc.Update(ctx, bob.id, aliceTx, bob.expense(1))
		if !errors.Is(err, core.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("toggle foreign row", func(t *testing.T) {
		if err := svc.SetRealized(ctx, bob.id, aliceTx, false); !errors.Is(err, core.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	t.Run("delete foreign row", func(t *testing.T) {
		err := svc.Delete(ctx, bob.id, aliceTx)
		if !errors.Is(err, core.ErrNotFound) || !errors.Is(err, core.ErrAccessDenied) {
			t.Fatalf("expected not found access error, got %v", err)
		}
	})

	t.Run("get foreign row", func(t *testing.T) {
		_, err := svc.Get(ctx, bob.id, aliceTx)
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list by foreign account", func(t *testing.T) {
		_, err := svc.List(ctx, bob.id, core.TransactionFilter{AccountID: alice.checking.ID})
		if !errors.Is(err, core.ErrAccessDenied) {
			t.Fatalf("expected ErrAccessDenied, got %v", err)
		}
	})

	got, err := svc.Get(ctx, alice.id, aliceTx)
	if err != nil {
		t.Fatalf("alice lost her row: %v", err)
	}
	if got.Amount.Cents != 4200 || !got.IsRealized || got.Description != "Groceries" {
		t.Errorf("alice's row changed: %+v", got)
	}
	if balanceOf(t, repo, alice.checking.ID) != -4200 {
		t.Error("alice's balance changed")
	}
}

func TestUpdateMovesBetweenAccounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	id, err := svc.Create(ctx, d.id, d.expense(7000))
	if err != nil {
		t.Fatal(err)
	}

	req := d.expense(8000)
	req.AccountID = d.savings.ID
	if err := svc.Update(ctx, d.id, id, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if got := balanceOf(t, repo, d.checking.ID); got != 0 {
		t.Errorf("old account balance = %d, want 0", got)
	}
	if got := balanceOf(t, repo, d.savings.ID); got != -8000 {
		t.Errorf("new account balance = %d, want -8000", got)
	}
}

func TestUpdateTransferToExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	id, err := svc.Create(ctx, d.id, d.transfer(5000))
	if err != nil {
		t.Fatal(err)
	}
	req := d.expense(5000)
	req.ToAccountID = d.savings.ID
	if err := svc.Update(ctx, d.id, id, req); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.Get(ctx, d.id, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.ToAccountID != 0 {
		t.Errorf("expense kept destination %d", got.ToAccountID)
	}
	if balanceOf(t, repo, d.savings.ID) != 0 {
		t.Error("former destination must be recalculated")
	}
	if balanceOf(t, repo, d.checking.ID) != -5000 {
		t.Error("source must reflect the expense")
	}
}

func TestUpdateKeepsSeriesMetadata(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.expense(9000)
	req.InstallmentTotal = 3
	id, err := svc.Create(ctx, d.id, req)
	if err != nil {
		t.Fatal(err)
	}
	before, err := svc.Get(ctx, d.id, id)
	if err != nil {
		t.Fatal(err)
	}

	upd := d.expense(3500)
	upd.Date = core.Date{}
	upd.InstallmentTotal = 10
	if err := svc.Update(ctx, d.id, id, upd); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	after, err := svc.Get(ctx, d.id, id)
	if err != nil {
		t.Fatal(err)
	}
	if after.RecurrenceGroupID != before.RecurrenceGroupID || after.InstallmentCurrent != 1 || after.InstallmentTotal != 3 {
		t.Errorf("series metadata changed: before %+v after %+v", before, after)
	}
	if after.Date.String() != before.Date.String() {
		t.Errorf("date = %s, want unchanged %s", after.Date, before.Date)
	}
	if after.Amount.Cents != 3500 {
		t.Errorf("amount = %d, want 3500", after.Amount.Cents)
	}
	if n := countRows(t, repo, d.id); n != 3 {
		t.Errorf("update must not re-expand, got %d rows", n)
	}
}

func TestUpdateRejectsInvalidRequest(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	id, err := svc.Create(ctx, d.id, d.expense(1000))
	if err != nil {
		t.Fatal(err)
	}
	bad := d.expense(0)
	if err := svc.Update(ctx, d.id, id, bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	got, _ := svc.Get(ctx, d.id, id)
	if got.Amount.Cents != 1000 {
		t.Errorf("row changed after rejected update: %+v", got)
	}
}

func TestSetRealizedToggle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.income(2000)
	req.IsRealized = false
	id, err := svc.Create(ctx, d.id, req)
	if err != nil {
		t.Fatal(err)
	}
	if balanceOf(t, repo, d.checking.ID) != 0 {
		t.Fatal("pending income must not count")
	}

	if err := svc.SetRealized(ctx, d.id, id, true); err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, repo, d.checking.ID); got != 2000 {
		t.Errorf("balance after realize = %d, want 2000", got)
	}

	if err := svc.SetRealized(ctx, d.id, id, false); err != nil {
		t.Fatal(err)
	}
	if got := balanceOf(t, repo, d.checking.ID); got != 0 {
		t.Errorf("balance after unrealize = %d, want 0", got)
	}
}

func TestDeleteReversesEffect(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	if _, err := svc.Create(ctx, d.id, d.income(10000)); err != nil {
		t.Fatal(err)
	}
	before := balanceOf(t, repo, d.checking.ID)

	id, err := svc.Create(ctx, d.id, d.transfer(4000))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, d.id, id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if got := balanceOf(t, repo, d.checking.ID); got != before {
		t.Errorf("source balance = %d, want %d", got, before)
	}
	if got := balanceOf(t, repo, d.savings.ID); got != 0 {
		t.Errorf("destination balance = %d, want 0", got)
	}
	if err := svc.Delete(ctx, d.id, id); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteLeavesSiblings(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)

	req := d.expense(3000)
	req.InstallmentTotal = 3
	id, err := svc.Create(ctx, d.id, req)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, d.id, id); err != nil {
		t.Fatal(err)
	}
	if n := countRows(t, repo, d.id); n != 2 {
		t.Errorf("expected 2 siblings left, got %d", n)
	}
}

func TestRecalculationIsIdempotentAfterMutations(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	svc := newTestTransactionService(repo, nil, nil)
	accounts := NewAccountService(repo, nil, nil)

	if _, err := svc.Create(ctx, d.id, d.income(12345)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(ctx, d.id, d.expense(345)); err != nil {
		t.Fatal(err)
	}
	stored := balanceOf(t, repo, d.checking.ID)
	for i := 0; i < 2; i++ {
		got, err := accounts.Recalculate(ctx, d.id, d.checking.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Cents != stored || got.Cents != 12000 {
			t.Errorf("recalculation %d = %d, want %d", i, got.Cents, stored)
		}
	}
}

func TestCreateRollsBackOnLateFailure(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	pub := &recordingPublisher{}
	cache := &recordingCache{}
	svc := newTestTransactionService(failingLedger{SQLiteRepository: repo, err: errInjected}, pub, cache)

	req := d.expense(6000)
	req.InstallmentTotal = 6
	if _, err := svc.Create(ctx, d.id, req); !errors.Is(err, errInjected) {
		t.Fatalf("expected injected failure, got %v", err)
	}

	if n := countRows(t, repo, d.id); n != 0 {
		t.Errorf("expected no rows after rollback, got %d", n)
	}
	if balanceOf(t, repo, d.checking.ID) != 0 {
		t.Error("balance must be unchanged after rollback")
	}
	if len(pub.ops()) != 0 || len(cache.owners) != 0 {
		t.Error("nothing must be published or invalidated for a rolled back mutation")
	}
}

func TestMutationsPublishAfterCommit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	pub := &recordingPublisher{}
	cache := &recordingCache{}
	svc := newTestTransactionService(repo, pub, cache)

	id, err := svc.Create(ctx, d.id, d.transfer(100))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.SetRealized(ctx, d.id, id, false); err != nil {
		t.Fatal(err)
	}
	if err := svc.Delete(ctx, d.id, id); err != nil {
		t.Fatal(err)
	}

	want := []amqp.LedgerOp{amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted}
	if got := pub.ops(); !reflect.DeepEqual(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}
	first := pub.events[0]
	if first.OwnerID != d.id || first.TransactionID != id {
		t.Errorf("unexpected event %+v", first)
	}
	if !reflect.DeepEqual(first.AccountIDs, []int64{d.checking.ID, d.savings.ID}) {
		t.Errorf("accounts = %v", first.AccountIDs)
	}
	if !reflect.DeepEqual(cache.owners, []int64{d.id, d.id, d.id}) {
		t.Errorf("invalidations = %v", cache.owners)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	d := seedOwner(t, repo, 1)
	pub := &recordingPublisher{err: amqp.ErrCircuitOpen}
	svc := newTestTransactionService(repo, pub, nil)

	id, err := svc.Create(ctx, d.id, d.income(100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == 0 {
		t.Error("expected an id")
	}
	if balanceOf(t, repo, d.checking.ID) != 100 {
		t.Error("mutation must be committed despite publish failure")
	}
}

func TestListRejectsBadMonth(t *testing.T) {
	repo := newTestRepo(t)
	svc := newTestTransactionService(repo, nil, nil)
	_, err := svc.List(context.Background(), 1, core.TransactionFilter{Month: "2025-13"})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
