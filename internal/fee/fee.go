// Package fee computes the transaction fee a payment method charges on an
// amount. It is pure and is the single place fees are derived; the registry
// calls it when validating a charge and the resulting fee is frozen onto
// the payment row at initiate time.
package fee

import (
	"fmt"

	"github.com/shopspring/decimal"

	"freshmart/internal/models"
)

// Compute returns the fee for charging amount under the given fee rule.
// Percentage fees round half-up to 2 decimal places; fixed fees are clamped
// so the fee never exceeds the amount being charged.
func Compute(amount decimal.Decimal, feeType models.FeeType, feeValue decimal.Decimal) (decimal.Decimal, error) {
	if feeValue.IsNegative() {
		return decimal.Zero, fmt.Errorf("fee value must not be negative: %s", feeValue)
	}

	switch feeType {
	case models.FeePercentage:
		if feeValue.GreaterThan(decimal.NewFromInt(100)) {
			return decimal.Zero, fmt.Errorf("percentage fee must not exceed 100: %s", feeValue)
		}
		return amount.Mul(feeValue).Div(decimal.NewFromInt(100)).Round(2), nil
	case models.FeeFixed:
		if feeValue.GreaterThan(amount) {
			return amount, nil
		}
		return feeValue.Round(2), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown fee type: %q", feeType)
	}
}

// Net returns amount minus the fee computed for it.
func Net(amount decimal.Decimal, feeType models.FeeType, feeValue decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	f, err := Compute(amount, feeType, feeValue)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return f, amount.Sub(f), nil
}
