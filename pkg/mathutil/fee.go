package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// TenThousands ...
var TenThousands = decimal.NewFromInt(10000)

// PlusFee calculates an amount with a fee added given an amount and a fee
// expressed in basis point (ie. 0.25% = 25). The fee is rounded up to the
// next satoshi.
func PlusFee(amount, feeAsBasisPoint uint64) (withFee, calculatedFee uint64) {
	fee := calcFee(amount, feeAsBasisPoint)
	return amount + fee, fee
}

// LessFee calculates an amount with a fee subtracted given an amount and a
// fee expressed in basis point (ie. 0.25% = 25).
func LessFee(amount, feeAsBasisPoint uint64) (withoutFee, calculatedFee uint64) {
	fee := calcFee(amount, feeAsBasisPoint)
	if fee > amount {
		return 0, amount
	}
	return amount - fee, fee
}

func calcFee(amount, feeAsBasisPoint uint64) uint64 {
	amountDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), 0)
	feeDecimal := decimal.NewFromBigInt(new(big.Int).SetUint64(feeAsBasisPoint), 0)
	return amountDecimal.Mul(feeDecimal).Div(TenThousands).Ceil().BigInt().Uint64()
}
