package view

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/pkg/money"
)

const (
	dateLayout      = "2 Jan 2006"
	clockLayout     = "15:04:05"
	clockDateLayout = "Monday, 2 January 2006"
	shortTimeLayout = "15:04"

	messagePreview = 100
	dealRefLength  = 16
)

var compactUnits = []struct {
	min    decimal.Decimal
	suffix string
}{
	{decimal.NewFromInt(10_000_000), "Cr"},
	{decimal.NewFromInt(100_000), "L"},
	{decimal.NewFromInt(1_000), "K"},
}

// Compact abbreviates large amounts for stat cards: 1.5K, 2.5L, 1.2Cr.
// Amounts below a thousand are rendered with en-IN grouping.
func Compact(d decimal.Decimal) string {
	for _, u := range compactUnits {
		if d.GreaterThanOrEqual(u.min) {
			return strings.TrimSuffix(d.Div(u.min).StringFixed(1), ".0") + u.suffix
		}
	}
	return money.Digits(d)
}

// CompactINR is Compact with a rupee sign.
func CompactINR(d decimal.Decimal) string { return "₹" + Compact(d) }

// Currency renders an exact rupee amount with en-IN grouping.
func Currency(d decimal.Decimal) string { return money.INR(d) }

// Date renders t as "2 Jan 2006", or "N/A" for the zero time.
func Date(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(dateLayout)
}

// ShortTime renders the time of day shown next to a notification.
func ShortTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(shortTimeLayout)
}

// ClockTime and ClockDate seed the header clock.
func ClockTime(t time.Time) string { return t.Format(clockLayout) }
func ClockDate(t time.Time) string { return t.Format(clockDateLayout) }

// Truncate shortens s to n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}

// DealRef is the human reference printed on deal cards.
func DealRef(id string) string {
	if len(id) > dealRefLength {
		id = id[:dealRefLength]
	}
	return "DEAL_" + strings.ToUpper(id)
}
