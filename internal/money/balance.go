package money

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SettledThreshold is the magnitude below which a per-currency amount is
// treated as fully settled. It absorbs the residue left by proportional
// allocation and penny rounding.
var SettledThreshold = decimal.New(1, -2) // 0.01

// Balance maps ISO currency codes to signed amounts. The sign convention is
// from the holder's point of view: positive means the counterparty owes the
// holder, negative means the holder owes the counterparty. A code never
// appears twice; Add merges into the existing entry.
type Balance map[string]decimal.Decimal

// Entry is one currency's signed amount, used for ordered views of a Balance.
type Entry struct {
	CurrencyCode string
	Amount       decimal.Decimal
}

// NewBalance returns an empty balance.
func NewBalance() Balance {
	return make(Balance)
}

// Add accumulates a signed amount under the given currency code.
func (b Balance) Add(code string, amount decimal.Decimal) {
	if amount.IsZero() {
		return
	}
	b[code] = b[code].Add(amount)
}

// Sub subtracts a signed amount under the given currency code.
func (b Balance) Sub(code string, amount decimal.Decimal) {
	b.Add(code, amount.Neg())
}

// Get returns the signed amount for a code, zero if absent.
func (b Balance) Get(code string) decimal.Decimal {
	return b[code]
}

// Merge adds every entry of other into b.
func (b Balance) Merge(other Balance) {
	for code, amount := range other {
		b.Add(code, amount)
	}
}

// Negated returns a copy with every amount sign-flipped.
func (b Balance) Negated() Balance {
	out := make(Balance, len(b))
	for code, amount := range b {
		out[code] = amount.Neg()
	}
	return out
}

// IsSettled reports whether every entry is below the settled threshold.
func (b Balance) IsSettled() bool {
	for _, amount := range b {
		if amount.Abs().GreaterThanOrEqual(SettledThreshold) {
			return false
		}
	}
	return true
}

// NonZero returns the entries whose magnitude is at least the settled
// threshold, sorted by currency code for stable output.
func (b Balance) NonZero() []Entry {
	entries := make([]Entry, 0, len(b))
	for code, amount := range b {
		if amount.Abs().LessThan(SettledThreshold) {
			continue
		}
		entries = append(entries, Entry{CurrencyCode: code, Amount: amount})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CurrencyCode < entries[j].CurrencyCode
	})
	return entries
}

// Rounded returns a copy with every amount rounded to its currency's
// minor unit.
func (b Balance) Rounded() Balance {
	out := make(Balance, len(b))
	for code, amount := range b {
		out[code] = Round(amount, code)
	}
	return out
}

// String renders the non-zero entries as "USD 12.50, EUR -3.00" for logs.
func (b Balance) String() string {
	entries := b.NonZero()
	if len(entries) == 0 {
		return "settled"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.CurrencyCode + " " + e.Amount.StringFixed(MinorUnits(e.CurrencyCode))
	}
	return strings.Join(parts, ", ")
}
