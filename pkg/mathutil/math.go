package mathutil

import (
	"errors"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// SatsPerBitcoin is the number of satoshis in one bitcoin
	SatsPerBitcoin = uint64(math.Pow10(8))
	// SatsPerBitcoinDecimal is SatsPerBitcoin as decimal.Decimal
	SatsPerBitcoinDecimal = decimal.NewFromInt(int64(SatsPerBitcoin))

	maxUint64Decimal = decimal.NewFromBigInt(
		new(big.Int).SetUint64(math.MaxUint64), 0,
	)

	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New(
		"amount must be a positive number with at most 8 decimal places",
	)
)

// SatsToBTC formats an amount of satoshis as a bitcoin amount with exactly
// 8 decimal places.
func SatsToBTC(sats uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(sats), -8).StringFixed(8)
}

// BTCToSats parses a bitcoin denominated amount, like the amount field of a
// BIP21 URI, into satoshis.
func BTCToSats(amount string) (uint64, error) {
	btc, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if btc.Sign() <= 0 {
		return 0, ErrInvalidAmount
	}
	sats := btc.Mul(SatsPerBitcoinDecimal)
	if !sats.Equal(sats.Truncate(0)) {
		return 0, ErrInvalidAmount
	}
	if sats.GreaterThan(maxUint64Decimal) {
		return 0, ErrInvalidAmount
	}
	return sats.BigInt().Uint64(), nil
}

// SafeAdd returns x + y and false on overflow.
func SafeAdd(x, y uint64) (uint64, bool) {
	z := x + y
	if z < x {
		return 0, false
	}
	return z, true
}

// SafeSub returns x - y and false on underflow.
func SafeSub(x, y uint64) (uint64, bool) {
	if y > x {
		return 0, false
	}
	return x - y, true
}
