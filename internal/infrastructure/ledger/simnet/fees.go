package simnet

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/destination"
	"github.com/skibidicash/wallet-core/pkg/mathutil"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

const (
	// 0.1%
	lightningSendFeeBasisPoint = 10
	// 0.25%
	lightningReceiveFeeBasisPoint = 25
	// 0.1 sat/vbyte
	liquidFeeRateMilliSatPerVByte = 100
	onchainTxVSize                = 141
)

var (
	lightningLimits = domain.LimitsPair{
		Send:    domain.Limits{MinSat: 1000, MaxSat: 25_000_000},
		Receive: domain.Limits{MinSat: 1000, MaxSat: 25_000_000, MaxZeroConfSat: 100_000},
	}
	onchainLimits = domain.LimitsPair{
		Send:    domain.Limits{MinSat: 25_000, MaxSat: 25_000_000},
		Receive: domain.Limits{MinSat: 25_000, MaxSat: 25_000_000},
	}
	liquidLimits = domain.LimitsPair{
		Send:    domain.Limits{MinSat: 1},
		Receive: domain.Limits{MinSat: 1},
	}
	recommendedFees = domain.FeeTiers{
		FastestFee:  20,
		HalfHourFee: 10,
		HourFee:     5,
		EconomyFee:  2,
		MinimumFee:  1,
	}
)

func (l *Ledger) FetchLimits(
	ctx context.Context, method domain.ReceiveMethod,
) (*domain.LimitsPair, error) {
	if err := l.requireConnected(); err != nil {
		return nil, err
	}
	limits := limitsForMethod(method)
	return &limits, nil
}

func (l *Ledger) RecommendedFees(ctx context.Context) (*domain.FeeTiers, error) {
	if err := l.requireConnected(); err != nil {
		return nil, err
	}
	fees := recommendedFees
	return &fees, nil
}

func limitsForMethod(method domain.ReceiveMethod) domain.LimitsPair {
	switch method {
	case domain.ReceiveMethodOnchainAddress:
		return onchainLimits
	case domain.ReceiveMethodLiquidAddress:
		return liquidLimits
	default:
		return lightningLimits
	}
}

func methodForKind(kind destination.Kind) domain.ReceiveMethod {
	switch kind {
	case destination.KindBitcoinAddress:
		return domain.ReceiveMethodOnchainAddress
	case destination.KindLiquidAddress:
		return domain.ReceiveMethodLiquidAddress
	default:
		return domain.ReceiveMethodLightning
	}
}

func sendFees(method domain.ReceiveMethod, amountSat uint64) uint64 {
	switch method {
	case domain.ReceiveMethodOnchainAddress:
		return onchainTxVSize * recommendedFees.HalfHourFee
	case domain.ReceiveMethodLiquidAddress:
		return liquidFee()
	default:
		_, fee := mathutil.PlusFee(amountSat, lightningSendFeeBasisPoint)
		return fee
	}
}

func receiveFees(method domain.ReceiveMethod, amountSat uint64) uint64 {
	switch method {
	case domain.ReceiveMethodOnchainAddress:
		return onchainTxVSize * recommendedFees.HalfHourFee
	case domain.ReceiveMethodLiquidAddress:
		return 0
	default:
		_, fee := mathutil.PlusFee(amountSat, lightningReceiveFeeBasisPoint)
		return fee
	}
}

// liquidFee is the fee of a confidential transaction with one input and
// two outputs, recipient and change.
func liquidFee() uint64 {
	vsize := wallet.EstimateLiquidTxSize(
		[]wallet.ScriptType{wallet.P2WPKH},
		[]wallet.ScriptType{wallet.P2WPKH, wallet.P2WPKH},
	)
	return (uint64(vsize)*liquidFeeRateMilliSatPerVByte + 999) / 1000
}
