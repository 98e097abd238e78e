package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// balanceStore is the slice of storage the recalculator needs.
type balanceStore interface {
	LedgerSums(ctx context.Context, accountID int64) (storage.LedgerSumsRow, error)
	SetAccountBalance(ctx context.Context, accountID int64, balance core.Money) error
}

// Recalculator derives account balances from the ledger. It always
// recomputes from every realized row and never applies deltas.
type Recalculator struct {
	store balanceStore
}

func NewRecalculator(store balanceStore) *Recalculator {
	return &Recalculator{store: store}
}

// Balance computes the ledger balance of an account without storing it.
func (r *Recalculator) Balance(ctx context.Context, accountID int64) (core.Money, error) {
	sums, err := r.store.LedgerSums(ctx, accountID)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: sums.Income - sums.Expense - sums.SentOut + sums.Received}, nil
}

// Recalculate overwrites the stored balance of accountID with its ledger
// balance. Non-positive ids are ignored.
func (r *Recalculator) Recalculate(ctx context.Context, accountID int64) (core.Money, error) {
	if accountID <= 0 {
		return core.Money{}, nil
	}
	balance, err := r.Balance(ctx, accountID)
	if err != nil {
		return core.Money{}, fmt.Errorf("recalculate account %d: %w", accountID, err)
	}
	if err := r.store.SetAccountBalance(ctx, accountID, balance); err != nil {
		return core.Money{}, fmt.Errorf("recalculate account %d: %w", accountID, err)
	}

	slog.DebugContext(ctx, "Account balance recalculated",
		"account_id", accountID,
		"balance_cents", balance.Cents)

	return balance, nil
}

// RecalculateAll recalculates each distinct positive id once.
func (r *Recalculator) RecalculateAll(ctx context.Context, accountIDs ...int64) error {
	for _, id := range affectedAccounts(accountIDs...) {
		if _, err := r.Recalculate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// affectedAccounts deduplicates ids, dropping unset ones, in first-seen order.
func affectedAccounts(ids ...int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
