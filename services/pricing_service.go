package services

import (
	"github.com/grandesports/training_platform/models"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// FinalPrice applies at most one discount to a session's base price and
// returns the price to charge plus the discount amount. The result is always
// within [0, base]: percentage values are clamped to [0,100] and fixed
// discounts larger than the base floor at zero, so a misconfigured code can
// never produce a negative charge.
func FinalPrice(base decimal.Decimal, discount *models.DiscountCode) (final, discountAmount decimal.Decimal) {
	if discount == nil {
		return base, decimal.Zero
	}

	switch discount.Type {
	case models.DiscountTypeFreeSession:
		final = decimal.Zero
	case models.DiscountTypePercentage:
		pct := discount.Value
		if pct.LessThan(decimal.Zero) {
			pct = decimal.Zero
		}
		if pct.GreaterThan(oneHundred) {
			pct = oneHundred
		}
		final = base.Mul(oneHundred.Sub(pct)).Div(oneHundred).Round(2)
	case models.DiscountTypeFixed:
		final = base.Sub(discount.Value)
		if final.LessThan(decimal.Zero) {
			final = decimal.Zero
		}
	default:
		final = base
	}

	if final.GreaterThan(base) {
		final = base
	}
	return final, base.Sub(final)
}

// Cents converts a decimal dollar amount to integer minor units for the
// payment processor.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Mul(oneHundred).IntPart()
}

// FromCents converts processor minor units back to a decimal dollar amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(oneHundred)
}
