package service

import (
	"github.com/shopspring/decimal"

	"github.com/microsharks/dealroom/internal/core/domain"
)

var hundred = decimal.NewFromInt(100)

// FundingPercent returns received/needed as a whole percentage clamped to
// [0, 100]. It is 0 when needed is not positive.
func FundingPercent(received, needed decimal.Decimal) int {
	if needed.Sign() <= 0 {
		return 0
	}
	return clampPercent(received.Div(needed).Mul(hundred).Round(0).IntPart())
}

// SuccessRate returns deals/proposals as a whole percentage clamped to
// [0, 100]. It is 0 when there are no proposals.
func SuccessRate(deals, proposals int64) int {
	if proposals <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(deals).Div(decimal.NewFromInt(proposals))
	return clampPercent(ratio.Mul(hundred).Round(0).IntPart())
}

// SumAmounts adds nullable amounts, counting nulls as zero.
func SumAmounts(amounts []decimal.NullDecimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(domain.OrZero(a))
	}
	return total
}

// SumFundingReceived adds funding_received across proposals.
func SumFundingReceived(proposals []domain.Proposal) decimal.Decimal {
	amounts := make([]decimal.NullDecimal, len(proposals))
	for i, p := range proposals {
		amounts[i] = p.FundingReceived
	}
	return SumAmounts(amounts)
}

func clampPercent(v int64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return int(v)
}
