package services

import (
	"context"
	"strings"

	"saldo/internal/core"
	"saldo/internal/storage"
)

const (
	defaultCardColor      = "#7c3aed"
	defaultCardClosingDay = 1
	defaultCardDueDay     = 10
)

type CardService struct {
	ledger Ledger
	cache  OwnerCache
}

func NewCardService(ledger Ledger, cache OwnerCache) *CardService {
	return &CardService{ledger: ledger, cache: cache}
}

func withCardDefaults(c core.CreditCard) core.CreditCard {
	c.Name = strings.TrimSpace(c.Name)
	if c.ClosingDay == 0 {
		c.ClosingDay = defaultCardClosingDay
	}
	if c.DueDay == 0 {
		c.DueDay = defaultCardDueDay
	}
	if c.Color == "" {
		c.Color = defaultCardColor
	}
	return c
}

func (s *CardService) Create(ctx context.Context, ownerID int64, c core.CreditCard) (core.CreditCard, error) {
	c = withCardDefaults(c)
	c.OwnerID = ownerID
	if err := c.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	created, err := s.ledger.Reader().CreateCreditCard(ctx, c)
	if err != nil {
		return core.CreditCard{}, err
	}
	s.invalidate(ownerID)
	return created, nil
}

func (s *CardService) List(ctx context.Context, ownerID int64) ([]core.CreditCard, error) {
	return s.ledger.Reader().ListCreditCards(ctx, ownerID)
}

func (s *CardService) Update(ctx context.Context, ownerID int64, c core.CreditCard) error {
	c = withCardDefaults(c)
	c.OwnerID = ownerID
	if err := c.Validate(); err != nil {
		return err
	}
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindCreditCard, c.ID, ownerID); err != nil {
			return err
		}
		return st.UpdateCreditCard(ctx, c)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// Delete removes a card. Transactions charged to it keep their rows and lose
// the card reference.
func (s *CardService) Delete(ctx context.Context, ownerID, id int64) error {
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindCreditCard, id, ownerID); err != nil {
			return err
		}
		return st.DeleteCreditCard(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// Usage returns every card with the expense total charged to it.
func (s *CardService) Usage(ctx context.Context, ownerID int64) ([]core.CardUsage, error) {
	reader := s.ledger.Reader()
	cards, err := reader.ListCreditCards(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	used, err := reader.CardUsage(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]core.CardUsage, 0, len(cards))
	for _, c := range cards {
		u := used[c.ID]
		out = append(out, core.CardUsage{Card: c, Used: u, Available: c.Limit.Sub(u)})
	}
	return out, nil
}

func (s *CardService) invalidate(ownerID int64) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
}
