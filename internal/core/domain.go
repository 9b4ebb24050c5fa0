package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryIncome  CategoryKind = "income"
	CategoryExpense CategoryKind = "expense"
)

type (
	CategoryKind string

	Date struct {
		time.Time
	}

	// Money is a signed amount in cents. Income is positive, expenses
	// are negative; the sign is coerced from the category kind at
	// insert time.
	Money struct {
		Cents int64
	}

	User struct {
		ID       int64
		Username string
		Currency string
	}

	Transaction struct {
		ID          int64
		UserID      int64
		Date        Date
		Description string
		Category    string
		Amount      Money
	}

	Investment struct {
		ID     int64
		UserID int64
		Date   Date
		Ticker string
		Shares decimal.Decimal
		Price  Money // purchase price per share
	}

	Settings struct {
		UserID      int64
		SavingsGoal Money
	}
)

// Category lists match the seeded categories table. Sign coercion and
// form rendering use these even before the database is reachable.
var (
	IncomeCategories  = []string{"Salary", "Bonus", "Interest", "Investment Income", "Other Income"}
	ExpenseCategories = []string{"Food", "Rent", "Utilities", "Transport", "Shopping", "Health", "Entertainment", "Travel", "Misc"}
)

// DefaultSavingsGoal is used when a user has no settings row yet.
const DefaultSavingsGoal = 500000 // $5,000.00

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyTicker      = errors.New("empty ticker")
	ErrInvalidShares    = errors.New("invalid shares")
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// ISO returns the date formatted as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// YearMonth returns the YYYY-MM bucket key used by monthly aggregates.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// KindOf reports the category kind for a known category name.
func KindOf(category string) (CategoryKind, bool) {
	for _, c := range IncomeCategories {
		if c == category {
			return CategoryIncome, true
		}
	}
	for _, c := range ExpenseCategories {
		if c == category {
			return CategoryExpense, true
		}
	}
	return "", false
}

// NormalizeSign coerces an amount to the sign its category kind demands:
// income positive, expense negative. Zero is left alone and rejected by
// Transaction.Validate.
func NormalizeSign(kind CategoryKind, cents int64) int64 {
	if cents < 0 {
		cents = -cents
	}
	if kind == CategoryExpense {
		return -cents
	}
	return cents
}

// Abs returns the absolute value, used when rendering expense totals.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	kind, ok := KindOf(t.Category)
	if !ok {
		return ErrUnknownCategory
	}
	if kind == CategoryIncome && t.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if kind == CategoryExpense && t.Amount.Cents > 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i Investment) Validate() error {
	if err := i.Date.Validate(); err != nil {
		return err
	}
	ticker := strings.TrimSpace(i.Ticker)
	if ticker == "" {
		return ErrEmptyTicker
	}
	if len(ticker) > 12 {
		return errors.New("ticker too long (max 12 characters)")
	}
	if !i.Shares.IsPositive() {
		return ErrInvalidShares
	}
	if i.Price.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Value returns shares × price in cents, rounded half-up.
func (i Investment) Value() Money {
	cents := i.Shares.Mul(decimal.NewFromInt(i.Price.Cents)).Round(0)
	return Money{Cents: cents.IntPart()}
}
