package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Currency describes a currency the ledger can post in, with its display
// symbol and the number of decimal places amounts may carry.
type Currency struct {
	Code          string
	Name          string
	Symbol        string
	DecimalPlaces int32
}

// SmallestUnit returns the minimum representable amount for the currency.
func (c Currency) SmallestUnit() decimal.Decimal {
	return decimal.New(1, -c.DecimalPlaces)
}

// Round rounds an amount to the currency's scale, half up.
func (c Currency) Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(c.DecimalPlaces)
}

// AllowsScale reports whether amount fits within the currency's scale
// without rounding.
func (c Currency) AllowsScale(amount decimal.Decimal) bool {
	return amount.Exponent() >= -c.DecimalPlaces
}

var currencies = map[string]Currency{
	"USD":  {Code: "USD", Name: "US Dollar", Symbol: "$", DecimalPlaces: 2},
	"EUR":  {Code: "EUR", Name: "Euro", Symbol: "€", DecimalPlaces: 2},
	"GBP":  {Code: "GBP", Name: "British Pound", Symbol: "£", DecimalPlaces: 2},
	"JPY":  {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", DecimalPlaces: 0},
	"CHF":  {Code: "CHF", Name: "Swiss Franc", DecimalPlaces: 2},
	"CAD":  {Code: "CAD", Name: "Canadian Dollar", Symbol: "C$", DecimalPlaces: 2},
	"AUD":  {Code: "AUD", Name: "Australian Dollar", Symbol: "A$", DecimalPlaces: 2},
	"BTC":  {Code: "BTC", Name: "Bitcoin", Symbol: "₿", DecimalPlaces: 8},
	"ETH":  {Code: "ETH", Name: "Ethereum", Symbol: "Ξ", DecimalPlaces: 18},
	"USDC": {Code: "USDC", Name: "USD Coin", DecimalPlaces: 6},
	"USDT": {Code: "USDT", Name: "Tether", DecimalPlaces: 6},
}

// LookupCurrency returns the currency for code, if registered.
func LookupCurrency(code string) (Currency, bool) {
	c, ok := currencies[strings.ToUpper(code)]
	return c, ok
}
