// Package money formats rupee amounts the way the marketplace displays them.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const rupee = "₹"

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Digits renders d with en-IN digit grouping and at most two fraction digits.
func Digits(d decimal.Decimal) string {
	if d.IsInteger() {
		return printer.Sprint(number.Decimal(d.IntPart()))
	}
	return printer.Sprint(number.Decimal(d.Round(2).InexactFloat64(), number.MaxFractionDigits(2)))
}

// INR renders d as a rupee amount, for example ₹45,000.
func INR(d decimal.Decimal) string {
	return rupee + Digits(d)
}

// NullINR renders a nullable amount, counting null as zero.
func NullINR(d decimal.NullDecimal) string {
	if !d.Valid {
		return INR(decimal.Zero)
	}
	return INR(d.Decimal)
}

// Percent renders a nullable percentage such as "12.5%", or "N/A" when null.
func Percent(d decimal.NullDecimal) string {
	if !d.Valid {
		return "N/A"
	}
	return d.Decimal.String() + "%"
}
