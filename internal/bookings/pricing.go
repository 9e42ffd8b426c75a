package bookings

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ComputeTotal prices a booking: (price - price*pct/100) * travelers, rounded
// to two decimal places. A zero percent means no offer.
func ComputeTotal(unitPrice decimal.Decimal, travelers int, discountPercent int) decimal.Decimal {
	discount := decimal.Zero
	if discountPercent > 0 {
		discount = unitPrice.Mul(decimal.NewFromInt(int64(discountPercent))).Div(hundred)
	}
	return unitPrice.Sub(discount).
		Mul(decimal.NewFromInt(int64(travelers))).
		Round(2)
}

// ToMinorUnits converts a two-decimal amount to an integer count of minor units
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
