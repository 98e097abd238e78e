package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

// Ledger is the transactional storage the services run on.
type Ledger interface {
	InTx(ctx context.Context, fn func(*storage.Store) error) error
	Reader() *storage.Store
}

// LedgerPublisher announces committed mutations to other processes.
type LedgerPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *amqp.LedgerEvent) error
}

// OwnerCache drops anything derived from an owner's ledger.
type OwnerCache interface {
	InvalidateOwner(ownerID int64)
}

// TransactionService orchestrates ledger mutations. Each mutation runs its
// ownership checks, row writes and balance recalculations in one database
// transaction; events are published only after commit.
type TransactionService struct {
	ledger    Ledger
	publisher LedgerPublisher
	cache     OwnerCache

	now        func() time.Time
	newGroupID func() string
}

func NewTransactionService(ledger Ledger, publisher LedgerPublisher, cache OwnerCache) *TransactionService {
	return &TransactionService{
		ledger:     ledger,
		publisher:  publisher,
		cache:      cache,
		now:        time.Now,
		newGroupID: NewGroupID,
	}
}

// Create validates and expands req, inserts every resulting row and
// recalculates the accounts involved. It returns the id of the first row.
func (s *TransactionService) Create(ctx context.Context, ownerID int64, req core.TransactionRequest) (int64, error) {
	req = req.Normalize(core.DateOf(s.now()))
	if err := req.Validate(); err != nil {
		return 0, err
	}

	var (
		firstID int64
		rows    []core.Transaction
	)
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).CheckRequest(ctx, ownerID, req); err != nil {
			return err
		}

		rows = Expand(ownerID, req, s.newGroupID)
		for i, row := range rows {
			id, err := st.CreateTransaction(ctx, row)
			if err != nil {
				return fmt.Errorf("insert row %d of %d: %w", i+1, len(rows), err)
			}
			if i == 0 {
				firstID = id
			}
		}

		return NewRecalculator(st).RecalculateAll(ctx, req.AccountID, req.ToAccountID)
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction created",
		"transaction_id", firstID,
		"owner_id", ownerID,
		"type", req.Type,
		"amount_cents", req.Amount.Cents,
		"rows", len(rows),
		"group_id", rows[0].RecurrenceGroupID)

	s.afterCommit(ctx, amqp.OpCreated, ownerID, firstID, affectedAccounts(req.AccountID, req.ToAccountID))
	return firstID, nil
}

// Update overwrites the mutable fields of an existing row and recalculates
// every account it referenced before or after the change. Series metadata
// is preserved and the row is never re-expanded.
func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, req core.TransactionRequest) error {
	var accounts []int64
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		guard := NewOwnershipGuard(st)
		if err := guard.Check(ctx, core.KindTransaction, id, ownerID); err != nil {
			return err
		}
		old, err := st.GetTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if req.Date.IsZero() {
			req.Date = old.Date
		}
		req.IsRecurring, req.RecurrenceCount, req.InstallmentTotal = false, 0, 0
		req = req.Normalize(core.DateOf(s.now()))
		if err := req.Validate(); err != nil {
			return err
		}
		if err := guard.CheckRequest(ctx, ownerID, req); err != nil {
			return err
		}

		next := old
		next.Description = req.Description
		next.Amount = req.Amount
		next.Type = req.Type
		next.Date = req.Date
		next.AccountID = req.AccountID
		next.ToAccountID = req.ToAccountID
		next.CreditCardID = req.CreditCardID
		next.CategoryID = req.CategoryID
		next.IsRealized = req.IsRealized
		if err := st.UpdateTransaction(ctx, next); err != nil {
			return err
		}

		accounts = affectedAccounts(old.AccountID, old.ToAccountID, next.AccountID, next.ToAccountID)
		return NewRecalculator(st).RecalculateAll(ctx, accounts...)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction updated",
		"transaction_id", id,
		"owner_id", ownerID,
		"account_ids", accounts)

	s.afterCommit(ctx, amqp.OpUpdated, ownerID, id, accounts)
	return nil
}

// SetRealized toggles whether a row counts toward balances.
func (s *TransactionService) SetRealized(ctx context.Context, ownerID, id int64, realized bool) error {
	var accounts []int64
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindTransaction, id, ownerID); err != nil {
			return err
		}
		old, err := st.GetTransaction(ctx, id, ownerID)
		if err != nil {
			return err
		}
		if err := st.SetTransactionRealized(ctx, id, ownerID, realized); err != nil {
			return err
		}
		accounts = affectedAccounts(old.AccountID, old.ToAccountID)
		return NewRecalculator(st).RecalculateAll(ctx, accounts...)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction realization changed",
		"transaction_id", id,
		"owner_id", ownerID,
		"realized", realized)

	s.afterCommit(ctx, amqp.OpUpdated, ownerID, id, accounts)
	return nil
}

// Delete removes a single row and recalculates the accounts it referenced.
// Siblings sharing its group id are left in place.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	var accounts []int64
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		old, err := st.GetTransaction(ctx, id, ownerID)
		if errors.Is(err, core.ErrNotFound) {
			return missingTransaction(id)
		}
		if err != nil {
			return err
		}
		if err := st.DeleteTransaction(ctx, id, ownerID); err != nil {
			return err
		}
		accounts = affectedAccounts(old.AccountID, old.ToAccountID)
		return NewRecalculator(st).RecalculateAll(ctx, accounts...)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction deleted",
		"transaction_id", id,
		"owner_id", ownerID,
		"account_ids", accounts)

	s.afterCommit(ctx, amqp.OpDeleted, ownerID, id, accounts)
	return nil
}

// Get returns one row owned by ownerID.
func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	t, err := s.ledger.Reader().GetTransaction(ctx, id, ownerID)
	if errors.Is(err, core.ErrNotFound) {
		return core.Transaction{}, missingTransaction(id)
	}
	return t, err
}

// List returns the owner's rows, newest first. Filtering by account matches
// either side of a transfer.
func (s *TransactionService) List(ctx context.Context, ownerID int64, filter core.TransactionFilter) ([]core.Transaction, error) {
	if filter.Month != "" {
		if err := filter.Month.Validate(); err != nil {
			return nil, core.NewValidationError("month", err)
		}
	}
	reader := s.ledger.Reader()
	if err := NewOwnershipGuard(reader).Check(ctx, core.KindAccount, filter.AccountID, ownerID); err != nil {
		return nil, err
	}
	return reader.ListTransactions(ctx, ownerID, filter)
}

// Series returns every row sharing a recurrence group, oldest first.
func (s *TransactionService) Series(ctx context.Context, ownerID int64, groupID string) ([]core.Transaction, error) {
	return s.ledger.Reader().ListTransactionGroup(ctx, ownerID, groupID)
}

// missingTransaction is both a not-found and an access error: a row that is
// absent and a row owned by someone else are indistinguishable to the caller.
func missingTransaction(id int64) error {
	return fmt.Errorf("%w: %w", core.ErrNotFound, &core.AccessError{Kind: core.KindTransaction, ID: id})
}

func (s *TransactionService) afterCommit(ctx context.Context, op amqp.LedgerOp, ownerID, txID int64, accounts []int64) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}

	if s.publisher == nil {
		slog.DebugContext(ctx, "Ledger publisher not configured, skipping event", "op", op)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(op, ownerID, txID, accounts)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"op", op,
			"transaction_id", txID,
			"owner_id", ownerID,
			"error", err)
		// Don't fail the request - the mutation is committed
	}
}
