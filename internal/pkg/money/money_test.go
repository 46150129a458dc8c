package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestINR(t *testing.T) {
	cases := map[string]string{
		"0":        "₹0",
		"950":      "₹950",
		"45000":    "₹45,000",
		"1234.5":   "₹1,234.5",
		"99999.99": "₹99,999.99",
	}
	for in, want := range cases {
		if got := INR(decimal.RequireFromString(in)); got != want {
			t.Errorf("INR(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestNullINR_Null(t *testing.T) {
	if got := NullINR(decimal.NullDecimal{}); got != "₹0" {
		t.Errorf("NullINR(null) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewNullDecimal(decimal.RequireFromString("12.5"))); got != "12.5%" {
		t.Errorf("Percent = %q", got)
	}
	if got := Percent(decimal.NullDecimal{}); got != "N/A" {
		t.Errorf("Percent(null) = %q", got)
	}
}
