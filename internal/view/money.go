package view

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

var symbols = map[currency.Unit]string{
	currency.USD: "$",
	currency.CAD: "CA$",
	currency.AUD: "A$",
	currency.EUR: "€",
	currency.GBP: "£",
	currency.JPY: "¥",
	currency.CHF: "CHF ",
	currency.INR: "₹",
}

// Money formats amounts in the store currency. Amounts are rounded only here,
// half away from zero, to the currency's standard number of decimals.
type Money struct {
	unit   currency.Unit
	symbol string
	scale  int32
}

// NewMoney returns a formatter for unit.
func NewMoney(unit currency.Unit) Money {
	scale, _ := currency.Standard.Rounding(unit)
	sym, ok := symbols[unit]
	if !ok {
		sym = unit.String() + " "
	}
	return Money{unit: unit, symbol: sym, scale: int32(scale)}
}

// Unit returns the store currency.
func (m Money) Unit() currency.Unit { return m.unit }

// Format renders d as "$63.99".
func (m Money) Format(d decimal.Decimal) string {
	return m.symbol + m.Fixed(d)
}

// Fixed renders d with the currency's decimals and no symbol.
func (m Money) Fixed(d decimal.Decimal) string {
	return d.StringFixed(m.scale)
}
