package services

import (
	"context"

	"saldo/internal/core"
)

// recordLookup answers whether a record of some kind belongs to an owner.
type recordLookup interface {
	Exists(ctx context.Context, kind core.EntityKind, id, ownerID int64) (bool, error)
}

// OwnershipGuard gates every access to an owner-scoped record.
type OwnershipGuard struct {
	lookup recordLookup
}

func NewOwnershipGuard(lookup recordLookup) *OwnershipGuard {
	return &OwnershipGuard{lookup: lookup}
}

// Check fails with *core.AccessError when the record does not exist for
// ownerID. A non-positive id means the optional reference is unset and
// passes.
func (g *OwnershipGuard) Check(ctx context.Context, kind core.EntityKind, id, ownerID int64) error {
	if id <= 0 {
		return nil
	}
	ok, err := g.lookup.Exists(ctx, kind, id, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return &core.AccessError{Kind: kind, ID: id}
	}
	return nil
}

// CheckRequest verifies every record a transaction request references.
func (g *OwnershipGuard) CheckRequest(ctx context.Context, ownerID int64, req core.TransactionRequest) error {
	refs := []struct {
		kind core.EntityKind
		id   int64
	}{
		{core.KindAccount, req.AccountID},
		{core.KindCategory, req.CategoryID},
		{core.KindCreditCard, req.CreditCardID},
		{core.KindAccount, req.ToAccountID},
	}
	for _, r := range refs {
		if err := g.Check(ctx, r.kind, r.id, ownerID); err != nil {
			return err
		}
	}
	return nil
}
