package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"saldo/internal/core"
	"saldo/internal/storage"
)

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	Checked int
	Drifted int
}

// Reconciler re-derives stored balances out of band. It heals balances left
// stale by interleaved writers and is safe to run at any time because
// recalculation is idempotent.
type Reconciler struct {
	ledger Ledger
	cache  OwnerCache
}

func NewReconciler(ledger Ledger, cache OwnerCache) *Reconciler {
	return &Reconciler{ledger: ledger, cache: cache}
}

// ReconcileAccounts recalculates the given accounts in one transaction.
func (r *Reconciler) ReconcileAccounts(ctx context.Context, ownerID int64, accountIDs []int64) error {
	err := r.ledger.InTx(ctx, func(st *storage.Store) error {
		guard := NewOwnershipGuard(st)
		rec := NewRecalculator(st)
		for _, id := range affectedAccounts(accountIDs...) {
			// Accounts deleted after the event was published are skipped.
			err := guard.Check(ctx, core.KindAccount, id, ownerID)
			if errors.Is(err, core.ErrAccessDenied) {
				slog.DebugContext(ctx, "Skipping account", "account_id", id, "owner_id", ownerID)
				continue
			}
			if err != nil {
				return err
			}
			if _, err := rec.Recalculate(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reconcile accounts: %w", err)
	}
	if r.cache != nil {
		r.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// ReconcileAll compares every stored balance with its ledger balance and
// rewrites the ones that drifted. Each account is fixed in its own
// transaction.
func (r *Reconciler) ReconcileAll(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	refs, err := r.ledger.Reader().ListAccountRefs(ctx)
	if err != nil {
		return report, err
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var drifted bool
		err := r.ledger.InTx(ctx, func(st *storage.Store) error {
			rec := NewRecalculator(st)
			want, err := rec.Balance(ctx, ref.ID)
			if err != nil {
				return err
			}
			have, err := st.AccountBalance(ctx, ref.ID)
			if err != nil {
				return err
			}
			if want == have {
				return nil
			}
			drifted = true
			slog.WarnContext(ctx, "Account balance drifted from ledger",
				"account_id", ref.ID,
				"owner_id", ref.UserID,
				"stored_cents", have.Cents,
				"ledger_cents", want.Cents)
			return st.SetAccountBalance(ctx, ref.ID, want)
		})
		if err != nil {
			return report, fmt.Errorf("reconcile account %d: %w", ref.ID, err)
		}
		report.Checked++
		if drifted {
			report.Drifted++
			if r.cache != nil {
				r.cache.InvalidateOwner(ref.UserID)
			}
		}
	}

	slog.InfoContext(ctx, "Reconciliation pass completed",
		"checked", report.Checked,
		"drifted", report.Drifted)

	return report, nil
}
