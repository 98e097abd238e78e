package services

import (
	"context"
	"log/slog"
	"strings"

	"saldo/internal/core"
	"saldo/internal/storage"
)

const (
	defaultCategoryColor = "#e2e8f0"
	defaultCategoryIcon  = "Tag"
)

// DefaultCategories is the starter set offered to new owners.
var DefaultCategories = []core.Category{
	{Name: "Salário", Icon: "Banknote", Type: core.IncomeCategory, Color: "#2ed573"},
	{Name: "Freelance", Icon: "Laptop", Type: core.IncomeCategory, Color: "#00f3ff"},
	{Name: "Investimentos", Icon: "TrendingUp", Type: core.IncomeCategory, Color: "#7c3aed"},
	{Name: "Presentes", Icon: "Gift", Type: core.IncomeCategory, Color: "#ff4757"},
	{Name: "Cashback", Icon: "RefreshCcw", Type: core.IncomeCategory, Color: "#ffa502"},

	{Name: "Alimentação", Icon: "UtensilsCrossed", Type: core.ExpenseCategory, Color: "#ff6b6b"},
	{Name: "Transporte", Icon: "Car", Type: core.ExpenseCategory, Color: "#ffa502"},
	{Name: "Moradia", Icon: "Home", Type: core.ExpenseCategory, Color: "#1e90ff"},
	{Name: "Saúde", Icon: "Heart", Type: core.ExpenseCategory, Color: "#ff4757"},
	{Name: "Educação", Icon: "GraduationCap", Type: core.ExpenseCategory, Color: "#2ed573"},
	{Name: "Lazer", Icon: "Gamepad2", Type: core.ExpenseCategory, Color: "#d63031"},
	{Name: "Assinaturas", Icon: "CreditCard", Type: core.ExpenseCategory, Color: "#00cec9"},
	{Name: "Compras", Icon: "ShoppingBag", Type: core.ExpenseCategory, Color: "#fd79a8"},
	{Name: "Viagem", Icon: "Plane", Type: core.ExpenseCategory, Color: "#0984e3"},
	{Name: "Pets", Icon: "Cat", Type: core.ExpenseCategory, Color: "#6c5ce7"},
	{Name: "Casa", Icon: "Sofa", Type: core.ExpenseCategory, Color: "#e17055"},
	{Name: "Cuidados Pessoais", Icon: "Smile", Type: core.ExpenseCategory, Color: "#fdcb6e"},
	{Name: "Outros", Icon: "MoreHorizontal", Type: core.ExpenseCategory, Color: "#636e72"},
}

type CategoryService struct {
	ledger Ledger
	cache  OwnerCache
}

func NewCategoryService(ledger Ledger, cache OwnerCache) *CategoryService {
	return &CategoryService{ledger: ledger, cache: cache}
}

func withCategoryDefaults(c core.Category) core.Category {
	c.Name = strings.TrimSpace(c.Name)
	if c.Type == "" {
		c.Type = core.ExpenseCategory
	}
	if c.Icon == "" {
		c.Icon = defaultCategoryIcon
	}
	if c.Color == "" {
		c.Color = defaultCategoryColor
	}
	return c
}

func (s *CategoryService) Create(ctx context.Context, ownerID int64, c core.Category) (core.Category, error) {
	c = withCategoryDefaults(c)
	c.OwnerID = ownerID
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.ledger.Reader().CreateCategory(ctx, c)
}

// List returns the owner's categories; an empty type lists both kinds.
func (s *CategoryService) List(ctx context.Context, ownerID int64, t core.CategoryType) ([]core.Category, error) {
	return s.ledger.Reader().ListCategories(ctx, ownerID, t)
}

func (s *CategoryService) Update(ctx context.Context, ownerID int64, c core.Category) error {
	c = withCategoryDefaults(c)
	c.OwnerID = ownerID
	if err := c.Validate(); err != nil {
		return err
	}
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindCategory, c.ID, ownerID); err != nil {
			return err
		}
		return st.UpdateCategory(ctx, c)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// Delete removes a category no transaction uses. Its budget goals go with it.
func (s *CategoryService) Delete(ctx context.Context, ownerID, id int64) error {
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		if err := NewOwnershipGuard(st).Check(ctx, core.KindCategory, id, ownerID); err != nil {
			return err
		}
		return st.DeleteCategory(ctx, id, ownerID)
	})
	if err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
	return nil
}

// SeedDefaults adds every default category the owner does not already have
// (matched by name and type) and returns how many were inserted.
func (s *CategoryService) SeedDefaults(ctx context.Context, ownerID int64) (int, error) {
	inserted := 0
	err := s.ledger.InTx(ctx, func(st *storage.Store) error {
		existing, err := st.ListCategories(ctx, ownerID, "")
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[string(c.Type)+"/"+c.Name] = true
		}
		for _, c := range DefaultCategories {
			if have[string(c.Type)+"/"+c.Name] {
				continue
			}
			c.OwnerID = ownerID
			if _, err := st.CreateCategory(ctx, c); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Default categories seeded", "owner_id", ownerID, "inserted", inserted)
	return inserted, nil
}
