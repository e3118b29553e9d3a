package domain

// ReceiveMethod ...
type ReceiveMethod int

const (
	ReceiveMethodLightning ReceiveMethod = iota
	ReceiveMethodOnchainAddress
	ReceiveMethodLiquidAddress
)

func (m ReceiveMethod) String() string {
	switch m {
	case ReceiveMethodLightning:
		return "Lightning"
	case ReceiveMethodOnchainAddress:
		return "OnchainAddress"
	case ReceiveMethodLiquidAddress:
		return "LiquidAddress"
	default:
		return "Unknown"
	}
}

// IsAddress returns whether the method yields an address rather than an
// invoice.
func (m ReceiveMethod) IsAddress() bool {
	return m == ReceiveMethodOnchainAddress || m == ReceiveMethodLiquidAddress
}

// ReceivePreparation is the outcome of preparing a receive: the fees the
// payer will be charged and the limits the amount was checked against.
type ReceivePreparation struct {
	Method    ReceiveMethod
	AmountSat *uint64
	FeesSat   uint64
	MinSat    uint64
	MaxSat    uint64
}

// ReceiveRequest is what the payer needs to send funds to the wallet.
type ReceiveRequest struct {
	Destination string
	AmountSat   *uint64
	Description string
	Method      ReceiveMethod
	FeesSat     uint64
}

// Limits are the amount bounds advertised by the backend for a method.
type Limits struct {
	MinSat         uint64
	MaxSat         uint64
	MaxZeroConfSat uint64
}

// Contains ...
func (l Limits) Contains(amountSat uint64) bool {
	return amountSat >= l.MinSat && (l.MaxSat == 0 || amountSat <= l.MaxSat)
}

// LimitsPair groups the limits of both directions of a method.
type LimitsPair struct {
	Send    Limits
	Receive Limits
}

// FeeTiers are the recommended on-chain fee rates in sat/vbyte.
type FeeTiers struct {
	FastestFee  uint64
	HalfHourFee uint64
	HourFee     uint64
	EconomyFee  uint64
	MinimumFee  uint64
}
