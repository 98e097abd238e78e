package core

import (
	"regexp"
	"time"
)

// Month is a calendar month in YYYY-MM form.
type Month string

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ParseMonth validates s as YYYY-MM.
func ParseMonth(s string) (Month, error) {
	m := Month(s)
	if err := m.Validate(); err != nil {
		return "", err
	}
	return m, nil
}

func (m Month) Validate() error {
	if !monthPattern.MatchString(string(m)) {
		return ErrInvalidMonth
	}
	return nil
}

// Bounds returns the first day of the month and the first day of the next.
func (m Month) Bounds() (Date, Date) {
	t, err := time.Parse("2006-01", string(m))
	if err != nil {
		return Date{}, Date{}
	}
	start := Date{Time: t}
	return start, start.AddMonths(1)
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return DateOf(now).Month()
}

// BudgetProgress is a budget goal with the realized spending it tracks.
type BudgetProgress struct {
	Goal      BudgetGoal
	Category  string
	Spent     Money
	Remaining Money
}

// CardUsage is the expense total charged to a credit card.
type CardUsage struct {
	Card      CreditCard
	Used      Money
	Available Money
}

// MonthSummary is a compact overview of one month for one owner.
type MonthSummary struct {
	Month        Month
	Income       Money
	Expense      Money
	Net          Money
	TotalBalance Money
	Budgets      []BudgetProgress
	Cards        []CardUsage
}
