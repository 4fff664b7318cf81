// Package money provides currency metadata and multi-currency balance
// arithmetic. All amounts are decimal; binary floating point never touches
// a stored amount.
package money

import (
	"github.com/shopspring/decimal"
)

// Currency describes display metadata for an ISO 4217 currency code.
type Currency struct {
	// Code is the ISO 4217 code, e.g. "USD".
	Code string

	// Symbol is the display symbol, e.g. "$".
	Symbol string

	// Name is the English currency name.
	Name string

	// Flag is the emoji flag shown next to the currency.
	Flag string

	// MinorUnits is the number of decimal places of the minor unit
	// (2 for USD cents, 0 for JPY).
	MinorUnits int32
}

// currencies is the built-in registry. Codes not listed here are still
// accepted everywhere; they fall back to two minor units.
var currencies = map[string]Currency{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Flag: "🇺🇸", MinorUnits: 2},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Flag: "🇪🇺", MinorUnits: 2},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Flag: "🇬🇧", MinorUnits: 2},
	"CHF": {Code: "CHF", Symbol: "CHF", Name: "Swiss Franc", Flag: "🇨🇭", MinorUnits: 2},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Flag: "🇮🇳", MinorUnits: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Flag: "🇯🇵", MinorUnits: 0},
	"CNY": {Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", Flag: "🇨🇳", MinorUnits: 2},
	"KRW": {Code: "KRW", Symbol: "₩", Name: "South Korean Won", Flag: "🇰🇷", MinorUnits: 0},
	"AUD": {Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Flag: "🇦🇺", MinorUnits: 2},
	"CAD": {Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Flag: "🇨🇦", MinorUnits: 2},
	"SGD": {Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Flag: "🇸🇬", MinorUnits: 2},
	"HKD": {Code: "HKD", Symbol: "HK$", Name: "Hong Kong Dollar", Flag: "🇭🇰", MinorUnits: 2},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", Flag: "🇦🇪", MinorUnits: 2},
	"SEK": {Code: "SEK", Symbol: "kr", Name: "Swedish Krona", Flag: "🇸🇪", MinorUnits: 2},
	"NOK": {Code: "NOK", Symbol: "kr", Name: "Norwegian Krone", Flag: "🇳🇴", MinorUnits: 2},
	"DKK": {Code: "DKK", Symbol: "kr", Name: "Danish Krone", Flag: "🇩🇰", MinorUnits: 2},
	"NZD": {Code: "NZD", Symbol: "NZ$", Name: "New Zealand Dollar", Flag: "🇳🇿", MinorUnits: 2},
	"MXN": {Code: "MXN", Symbol: "MX$", Name: "Mexican Peso", Flag: "🇲🇽", MinorUnits: 2},
	"BRL": {Code: "BRL", Symbol: "R$", Name: "Brazilian Real", Flag: "🇧🇷", MinorUnits: 2},
	"ZAR": {Code: "ZAR", Symbol: "R", Name: "South African Rand", Flag: "🇿🇦", MinorUnits: 2},
	"THB": {Code: "THB", Symbol: "฿", Name: "Thai Baht", Flag: "🇹🇭", MinorUnits: 2},
	"KWD": {Code: "KWD", Symbol: "د.ك", Name: "Kuwaiti Dinar", Flag: "🇰🇼", MinorUnits: 3},
	"BHD": {Code: "BHD", Symbol: ".د.ب", Name: "Bahraini Dinar", Flag: "🇧🇭", MinorUnits: 3},
	"PLN": {Code: "PLN", Symbol: "zł", Name: "Polish Zloty", Flag: "🇵🇱", MinorUnits: 2},
	"TRY": {Code: "TRY", Symbol: "₺", Name: "Turkish Lira", Flag: "🇹🇷", MinorUnits: 2},
}

// Lookup returns the metadata for a currency code.
func Lookup(code string) (Currency, bool) {
	c, ok := currencies[code]
	return c, ok
}

// MinorUnits returns the number of minor-unit decimal places for a code.
// Unknown codes default to 2.
func MinorUnits(code string) int32 {
	if c, ok := currencies[code]; ok {
		return c.MinorUnits
	}
	return 2
}

// Round rounds an amount to the currency's minor unit, half away from zero.
func Round(amount decimal.Decimal, code string) decimal.Decimal {
	return amount.Round(MinorUnits(code))
}

// MinorUnit returns the smallest representable amount in the currency,
// e.g. 0.01 for USD and 1 for JPY.
func MinorUnit(code string) decimal.Decimal {
	return decimal.New(1, -MinorUnits(code))
}

// Format renders an amount with the currency's symbol, e.g. "$12.50".
// Negative amounts keep the sign in front of the symbol: "-$12.50".
func Format(amount decimal.Decimal, code string) string {
	c, ok := currencies[code]
	if !ok {
		return amount.StringFixed(2) + " " + code
	}
	if amount.IsNegative() {
		return "-" + c.Symbol + amount.Neg().StringFixed(c.MinorUnits)
	}
	return c.Symbol + amount.StringFixed(c.MinorUnits)
}
