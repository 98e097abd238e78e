package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/services"
)

// Reconciler is the part of services.Reconciler the worker drives.
type Reconciler interface {
	ReconcileAccounts(ctx context.Context, ownerID int64, accountIDs []int64) error
	ReconcileAll(ctx context.Context) (services.ReconcileReport, error)
}

// LedgerWorker keeps stored balances in line with the ledger. It reacts to
// ledger events published by the API and sweeps every account on a timer as
// a backup for lost messages.
type LedgerWorker struct {
	reconciler Reconciler
	interval   time.Duration
}

func NewLedgerWorker(reconciler Reconciler, interval time.Duration) *LedgerWorker {
	return &LedgerWorker{
		reconciler: reconciler,
		interval:   interval,
	}
}

// HandleLedgerEvent recalculates the accounts named in one event.
func (w *LedgerWorker) HandleLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"op", event.Op,
		"owner_id", event.OwnerID,
		"transaction_id", event.TransactionID,
		"account_ids", event.AccountIDs)

	if len(event.AccountIDs) == 0 {
		return nil
	}

	if err := w.reconciler.ReconcileAccounts(ctx, event.OwnerID, event.AccountIDs); err != nil {
		return fmt.Errorf("reconcile event accounts: %w", err)
	}
	return nil
}

// StartupCheck sweeps every account once, catching events missed while the
// worker was down.
func (w *LedgerWorker) StartupCheck(ctx context.Context) error {
	report, err := w.reconciler.ReconcileAll(ctx)
	if err != nil {
		return fmt.Errorf("startup reconciliation: %w", err)
	}
	if report.Drifted > 0 {
		slog.WarnContext(ctx, "Startup reconciliation repaired balances",
			"checked", report.Checked,
			"drifted", report.Drifted)
	}
	return nil
}

// Run sweeps every account each interval until ctx is done. A failed sweep
// is logged and retried on the next tick.
func (w *LedgerWorker) Run(ctx context.Context) error {
	if w.interval <= 0 {
		slog.InfoContext(ctx, "Periodic reconciliation disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.reconciler.ReconcileAll(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic reconciliation failed", "error", err)
			}
		}
	}
}
