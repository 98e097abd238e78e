package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"saldo/internal/core"
	"saldo/internal/storage"
)

var errNotExpenseCategory = errors.New("budget goals track expense categories only")

type BudgetService struct {
	ledger Ledger
	cache  OwnerCache
	now    func() time.Time
}

func NewBudgetService(ledger Ledger, cache OwnerCache) *BudgetService {
	return &BudgetService{ledger: ledger, cache: cache, now: time.Now}
}

// Save creates a goal or, when the owner already has one for the same
// category and month, replaces its limit. An empty month means the current
// one.
func (s *BudgetService) Save(ctx context.Context, ownerID int64, g core.BudgetGoal) (core.BudgetGoal, error) {
	g.OwnerID = ownerID
	if g.Month == "" {
		g.Month = core.CurrentMonth(s.now())
	}
	if err := g.Validate(); err != nil {
		return core.BudgetGoal{}, err
	}

	var saved core.BudgetGoal
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := checkExpenseCategory(ctx, st, ownerID, g.CategoryID); err != nil {
			return err
		}
		var err error
		saved, err = st.UpsertBudgetGoal(ctx, g)
		return err
	})
	if err != nil {
		return core.BudgetGoal{}, err
	}
	s.invalidate(ownerID)
	return saved, nil
}

// Update rewrites category, month and limit of an existing goal.
func (s *BudgetService) Update(ctx context.Context, ownerID int64, g core.BudgetGoal) error {
	g.OwnerID = ownerID
	if g.Month == "" {
		g.Month = core.CurrentMonth(s.now())
	}
	if err := g.Validate(); err != nil {
		return err
	}
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindBudgetGoal, g.ID, ownerID); err != nil {
			return err
		}
		if err := checkExpenseCategory(ctx, st, ownerID, g.CategoryID); err != nil {
			return err
		}
		return st.UpdateBudgetGoal(ctx, g)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

func (s *BudgetService) Delete(ctx context.Context, ownerID, id int64) error {
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindBudgetGoal, id, ownerID); err != nil {
			return err
		}
		return st.DeleteBudgetGoal(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// List returns goals newest month first; an empty month lists all.
func (s *BudgetService) List(ctx context.Context, ownerID int64, month core.Month) ([]core.BudgetGoal, error) {
	if month != "" {
		if err := month.Validate(); err != nil {
			return nil, core.NewValidationError("month", err)
		}
	}
	return s.ledger.Reader().ListBudgetGoals(ctx, ownerID, month)
}

// Progress pairs each goal of the month with the realized expense booked to
// its category in that month.
func (s *BudgetService) Progress(ctx context.Context, ownerID int64, month core.Month) ([]core.BudgetProgress, error) {
	reader := s.ledger.Reader()
	goals, err := reader.ListBudgetGoals(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return []core.BudgetProgress{}, nil
	}
	spent, err := reader.SpentByCategory(ctx, ownerID, month)
	if err != nil {
		return nil, err
	}
	cats, err := reader.ListCategories(ctx, ownerID, core.ExpenseCategory)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}

	out := make([]core.BudgetProgress, 0, len(goals))
	for _, g := range goals {
		sp := spent[g.CategoryID]
		out = append(out, core.BudgetProgress{
			Goal:      g,
			Category:  names[g.CategoryID],
			Spent:     sp,
			Remaining: g.Limit.Sub(sp),
		})
	}
	return out, nil
}

func checkExpenseCategory(ctx context.Context, st *storage.Store, ownerID, categoryID int64) error {
	if err := NewOwnershipGuard(st).Check(ctx, core.KindCategory, categoryID, ownerID); err != nil {
		return err
	}
	cat, err := st.GetCategory(ctx, categoryID, ownerID)
	if err != nil {
		return err
	}
	if cat.Type != core.ExpenseCategory {
		return core.NewValidationError("categoryId", fmt.Errorf("%w: %q is %s", errNotExpenseCategory, cat.Name, cat.Type))
	}
	return nil
}

func (s *BudgetService) invalidate(ownerID int64) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
}
