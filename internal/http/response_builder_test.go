package http

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"saldo/internal/core"
)

func TestTransactionResponseOptionalRefs(t *testing.T) {
	tx := core.Transaction{
		ID:          5,
		Description: "Dinner",
		Amount:      core.Money{Cents: 4250},
		Type:        core.Expense,
		Date:        core.NewDate(2025, 6, 2),
		AccountID:   1,
		CategoryID:  2,
		CreatedAt:   time.Date(2025, 6, 2, 20, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(newTransactionResponse(tx))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, want := range []string{
		`"amount":"42.50"`,
		`"date":"2025-06-02"`,
		`"toAccountId":null`,
		`"creditCardId":null`,
		`"createdAt":"2025-06-02T20:00:00Z"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("response %s missing %s", out, want)
		}
	}
	if strings.Contains(out, "recurrenceGroupId") {
		t.Errorf("expected series fields to be omitted: %s", out)
	}

	tx.ToAccountID = 9
	if got := newTransactionResponse(tx).ToAccountID; got == nil || *got != 9 {
		t.Errorf("ToAccountID = %v, want 9", got)
	}
}

func TestSummaryResponse(t *testing.T) {
	sum := core.MonthSummary{
		Month:        "2025-06",
		Income:       core.Money{Cents: 200000},
		Expense:      core.Money{Cents: 12000},
		Net:          core.Money{Cents: 188000},
		TotalBalance: core.Money{Cents: -500},
		Budgets: []core.BudgetProgress{{
			Goal:      core.BudgetGoal{ID: 1, CategoryID: 2, Month: "2025-06", Limit: core.Money{Cents: 10000}},
			Category:  "Food",
			Spent:     core.Money{Cents: 12000},
			Remaining: core.Money{Cents: -2000},
		}},
	}

	resp := newSummaryResponse(sum)
	if resp.TotalBalance != "-5.00" || resp.Net != "1880.00" {
		t.Errorf("unexpected totals %+v", resp)
	}
	if resp.Cards == nil || len(resp.Cards) != 0 {
		t.Errorf("expected empty non-nil cards, got %#v", resp.Cards)
	}
	b := resp.Budgets[0]
	if b.Category != "Food" || b.LimitAmount != "100.00" || b.Remaining != "-20.00" {
		t.Errorf("unexpected budget %+v", b)
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"cards":[]`) {
		t.Errorf("expected empty cards array in %s", data)
	}
}

func TestMapSlice(t *testing.T) {
	cats := []core.Category{{ID: 1, Name: "A", Type: core.IncomeCategory}, {ID: 2, Name: "B", Type: core.ExpenseCategory}}
	got := mapSlice(cats, newCategoryResponse)
	if len(got) != 2 || got[1].Type != "expense" {
		t.Errorf("unexpected %+v", got)
	}
	if empty := mapSlice([]core.Category(nil), newCategoryResponse); empty == nil {
		t.Error("expected non-nil empty slice")
	}
}
