package services

import (
	"context"
	"fmt"
	"log/slog"

	"saldo/internal/cache"
	"saldo/internal/core"
)

// SummaryService builds month overviews and caches them per owner and month.
// Every service that mutates an owner's data drops that owner's entries
// through InvalidateOwner.
type SummaryService struct {
	ledger  Ledger
	budgets *BudgetService
	cards   *CardService
	cache   cache.Cache[core.MonthSummary]
}

func NewSummaryService(ledger Ledger, c cache.Cache[core.MonthSummary]) *SummaryService {
	s := &SummaryService{ledger: ledger, cache: c}
	s.budgets = NewBudgetService(ledger, s)
	s.cards = NewCardService(ledger, s)
	return s
}

func summaryKeyPrefix(ownerID int64) string {
	return fmt.Sprintf("summary:%d:", ownerID)
}

// InvalidateOwner drops every cached summary of ownerID.
func (s *SummaryService) InvalidateOwner(ownerID int64) {
	if s == nil || s.cache == nil {
		return
	}
	if n := s.cache.DeletePrefix(summaryKeyPrefix(ownerID)); n > 0 {
		slog.Debug("Summary cache invalidated", "owner_id", ownerID, "entries", n)
	}
}

// Month returns realized totals, budget progress and card usage for month.
func (s *SummaryService) Month(ctx context.Context, ownerID int64, month core.Month) (core.MonthSummary, error) {
	if err := month.Validate(); err != nil {
		return core.MonthSummary{}, core.NewValidationError("month", err)
	}

	key := summaryKeyPrefix(ownerID) + string(month)
	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Summary cache hit", "owner_id", ownerID, "month", month)
			return sum, nil
		}
	}

	reader := s.ledger.Reader()
	income, expense, err := reader.MonthTotals(ctx, ownerID, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	total, err := reader.TotalBalance(ctx, ownerID)
	if err != nil {
		return core.MonthSummary{}, err
	}
	budgets, err := s.budgets.Progress(ctx, ownerID, month)
	if err != nil {
		return core.MonthSummary{}, err
	}
	cards, err := s.cards.Usage(ctx, ownerID)
	if err != nil {
		return core.MonthSummary{}, err
	}

	sum := core.MonthSummary{
		Month:        month,
		Income:       income,
		Expense:      expense,
		Net:          income.Sub(expense),
		TotalBalance: total,
		Budgets:      budgets,
		Cards:        cards,
	}
	if s.cache != nil {
		s.cache.Set(key, sum)
	}
	return sum, nil
}
