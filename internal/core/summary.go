package core

import "github.com/shopspring/decimal"

// Summary holds the per-user totals shown at the top of the dashboard.
// Expenses is reported as an absolute value.
type Summary struct {
	Income   Money
	Expenses Money
	Balance  Money
}

// CategoryAmount is an absolute amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// MonthlyFlow is an income/expense bucket for one YYYY-MM month.
type MonthlyFlow struct {
	Month    string
	Income   Money
	Expenses Money
}

// PortfolioPosition is an investment holding with its computed value.
type PortfolioPosition struct {
	Ticker string
	Shares decimal.Decimal
	Price  Money
	Value  Money
}

// SavingsRate returns the savings rate as a whole percent, clamped at
// zero. Returns 0 when there is no income.
func SavingsRate(s Summary) int {
	if s.Income.Cents <= 0 {
		return 0
	}
	saved := s.Income.Cents - s.Expenses.Cents
	rate := (saved*100 + s.Income.Cents/2) / s.Income.Cents
	if rate < 0 {
		return 0
	}
	return int(rate)
}

// GoalProgress returns balance/goal as a percent clamped to [0, 100].
// A non-positive goal yields 0.
func GoalProgress(balance, goal Money) float64 {
	if goal.Cents <= 0 {
		return 0
	}
	pct := float64(balance.Cents) / float64(goal.Cents) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// PortfolioTotal sums position values.
func PortfolioTotal(positions []PortfolioPosition) Money {
	var total int64
	for _, p := range positions {
		total += p.Value.Cents
	}
	return Money{Cents: total}
}

// TopPosition returns the largest position and its share of the total
// portfolio value as a whole percent. ok is false for an empty or
// zero-value portfolio.
func TopPosition(positions []PortfolioPosition) (top PortfolioPosition, share int, ok bool) {
	total := PortfolioTotal(positions).Cents
	if total <= 0 {
		return PortfolioPosition{}, 0, false
	}
	for _, p := range positions {
		if p.Value.Cents > top.Value.Cents {
			top = p
		}
	}
	share = int((top.Value.Cents*100 + total/2) / total)
	return top, share, true
}
