package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateTable converts transaction currencies into the base reporting currency.
// Rates are fixed external configuration loaded once at startup; the table is
// read-only after construction and safe for concurrent use.
type RateTable struct {
	base  CurrencyCode
	rates map[CurrencyCode]decimal.Decimal
}

// NewRateTable builds a rate table. Rates map each supported currency to its
// multiplier into base; the base currency itself always converts 1:1.
func NewRateTable(base CurrencyCode, rates map[CurrencyCode]decimal.Decimal) RateTable {
	table := make(map[CurrencyCode]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		table[code] = rate
	}
	table[base] = decimal.NewFromInt(1)
	return RateTable{base: base, rates: table}
}

// Base returns the reporting currency all aggregates are normalised into.
func (t RateTable) Base() CurrencyCode {
	return t.base
}

// Supported lists the accepted currency codes in stable order.
func (t RateTable) Supported() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// ToBase converts an amount in the given currency into the base currency.
// Amounts in the base currency pass through unchanged. A code missing from
// the table is a hard error, never a silent 1:1 fallback.
func (t RateTable) ToBase(amount decimal.Decimal, currency CurrencyCode) (decimal.Decimal, error) {
	if currency == t.base {
		return amount, nil
	}
	rate, ok := t.rates[currency]
	if !ok {
		return decimal.Zero, &UnsupportedCurrencyError{Code: currency}
	}
	return amount.Mul(rate), nil
}

// MoneyToBase converts a Money value into the base currency.
func (t RateTable) MoneyToBase(m Money) (decimal.Decimal, error) {
	return t.ToBase(m.Amount, m.Currency)
}
