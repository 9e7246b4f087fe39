package order

import (
	"github.com/shopspring/decimal"

	"github.com/relove/backend/internal/domain/shared"
)

// FeeBreakdown splits an item's gross price into the platform commission
// and the seller's share. Amounts are rounded to cents and always sum back
// to the gross.
type FeeBreakdown struct {
	Gross        decimal.Decimal
	PlatformFee  decimal.Decimal
	SellerAmount decimal.Decimal
	FeePercent   decimal.Decimal
}

// CalculateFees computes the platform fee for a gross amount at the given
// percentage. The fee is rounded half-up to 2 decimals and the seller gets
// the remainder, so no cent is ever lost to double rounding.
func CalculateFees(gross decimal.Decimal, feePercent decimal.Decimal) (FeeBreakdown, error) {
	if !gross.IsPositive() {
		return FeeBreakdown{}, shared.NewDomainError(shared.ErrCodeInvalidAmount, "gross amount must be positive")
	}
	if feePercent.IsNegative() || feePercent.GreaterThan(decimal.NewFromInt(100)) {
		return FeeBreakdown{}, shared.NewDomainError(shared.ErrCodeInvalidAmount, "fee percent must be between 0 and 100")
	}

	fee := gross.Mul(feePercent).Div(decimal.NewFromInt(100)).Round(2)
	return FeeBreakdown{
		Gross:        gross,
		PlatformFee:  fee,
		SellerAmount: gross.Sub(fee),
		FeePercent:   feePercent,
	}, nil
}
