package core

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Amounts are stored in USD cents. The rate table converts stored
// amounts into the user's display currency at render time.
var displayRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"GBP": decimal.RequireFromString("0.79"),
	"JPY": decimal.RequireFromString("147.5"),
	"CHF": decimal.RequireFromString("0.88"),
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CHF": "CHF ",
}

// DefaultCurrency is the storage currency and the preference users
// start with.
const DefaultCurrency = "USD"

var ErrUnknownCurrency = errors.New("unknown currency")

// SupportedCurrencies returns the display currencies in a stable order.
func SupportedCurrencies() []string {
	return []string{"USD", "EUR", "GBP", "JPY", "CHF"}
}

// ValidCurrency reports whether code has a conversion rate.
func ValidCurrency(code string) bool {
	_, ok := displayRates[code]
	return ok
}

// ConvertCents converts stored USD cents into the display currency,
// rounding half-up.
func ConvertCents(cents int64, currency string) (int64, error) {
	rate, ok := displayRates[currency]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, currency)
	}
	converted := decimal.NewFromInt(cents).Mul(rate).Round(0)
	return converted.IntPart(), nil
}

// FormatAmount renders cents in the given currency, e.g. "$12.34" or
// "-€5.00". Unknown currencies fall back to the plain code prefix.
func FormatAmount(cents int64, currency string) string {
	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = currency + " "
	}
	neg := cents < 0
	if neg {
		cents = -cents
	}
	whole := cents / 100
	rem := cents % 100
	s := symbol + strconv.FormatInt(whole, 10) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}
