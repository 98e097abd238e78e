package services

import (
	"context"
	"log/slog"
	"strings"

	"saldo/internal/amqp"
	"saldo/internal/core"
	"saldo/internal/storage"
)

const (
	defaultAccountColor = "#00f3ff"
	defaultAccountIcon  = "Wallet"
)

// AccountService manages account metadata. Balances are never written here
// except for the opening seed and explicit recalculation.
type AccountService struct {
	ledger    Ledger
	publisher LedgerPublisher
	cache     OwnerCache
}

func NewAccountService(ledger Ledger, publisher LedgerPublisher, cache OwnerCache) *AccountService {
	return &AccountService{ledger: ledger, publisher: publisher, cache: cache}
}

func withAccountDefaults(a core.Account) core.Account {
	a.Name = strings.TrimSpace(a.Name)
	if a.Type == "" {
		a.Type = core.Checking
	}
	if a.Color == "" {
		a.Color = defaultAccountColor
	}
	if a.Icon == "" {
		a.Icon = defaultAccountIcon
	}
	return a
}

// Create stores a new account. a.Balance seeds the cached balance and is
// replaced by the ledger balance on the first recalculation.
func (s *AccountService) Create(ctx context.Context, ownerID int64, a core.Account) (core.Account, error) {
	a = withAccountDefaults(a)
	a.OwnerID = ownerID
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	created, err := s.ledger.Reader().CreateAccount(ctx, a)
	if err != nil {
		return core.Account{}, err
	}
	s.invalidate(ownerID)

	slog.InfoContext(ctx, "Account created",
		"account_id", created.ID,
		"owner_id", ownerID,
		"balance_cents", created.Balance.Cents)

	return created, nil
}

func (s *AccountService) Get(ctx context.Context, ownerID, id int64) (core.Account, error) {
	return s.ledger.Reader().GetAccount(ctx, id, ownerID)
}

func (s *AccountService) List(ctx context.Context, ownerID int64) ([]core.Account, error) {
	return s.ledger.Reader().ListAccounts(ctx, ownerID)
}

// Update changes name, type, color and icon. The balance is not editable.
func (s *AccountService) Update(ctx context.Context, ownerID int64, a core.Account) error {
	a = withAccountDefaults(a)
	a.OwnerID = ownerID
	if err := a.Validate(); err != nil {
		return err
	}
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindAccount, a.ID, ownerID); err != nil {
			return err
		}
		return st.UpdateAccount(ctx, a)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// Delete removes an account that no transaction references.
func (s *AccountService) Delete(ctx context.Context, ownerID, id int64) error {
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindAccount, id, ownerID); err != nil {
			return err
		}
		return st.DeleteAccount(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	slog.InfoContext(ctx, "Account deleted", "account_id", id, "owner_id", ownerID)
	return nil
}

// Recalculate rebuilds one account's balance from the ledger on demand.
func (s *AccountService) Recalculate(ctx context.Context, ownerID, id int64) (core.Money, error) {
	var balance core.Money
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindAccount, id, ownerID); err != nil {
			return err
		}
		var err error
		balance, err = NewRecalculator(st).Recalculate(ctx, id)
		return err
	})
	if err != nil {
		return core.Money{}, err
	}
	s.invalidate(ownerID)

	if s.publisher != nil {
		if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(amqp.OpRecompute, ownerID, 0, []int64{id})); err != nil {
			slog.ErrorContext(ctx, "Failed to publish ledger event", "op", amqp.OpRecompute, "account_id", id, "error", err)
		}
	}
	return balance, nil
}

func (s *AccountService) invalidate(ownerID int64) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
}
