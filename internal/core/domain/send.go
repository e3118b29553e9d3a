package domain

import (
	"time"

	"github.com/skibidicash/wallet-core/pkg/destination"
)

// SendQuote is the fee quote returned by the ledger backend for a send.
type SendQuote struct {
	AmountSat uint64
	FeesSat   uint64
}

// PreparedSend is a fee-quoted outbound payment that can be executed at
// most once, before ExpiresAt.
type PreparedSend struct {
	ID          string
	Destination destination.Destination
	AmountSat   uint64
	FeesSat     uint64
	ExpiresAt   time.Time
}

// TotalSat is the amount leaving the wallet if the send is executed.
func (p PreparedSend) TotalSat() uint64 {
	return p.AmountSat + p.FeesSat
}

// IsExpired ...
func (p PreparedSend) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// RefundRequest asks the backend to send back the funds of a refundable
// payment.
type RefundRequest struct {
	PaymentID          string
	RefundAddress      string
	FeeRateSatPerVByte uint32
}
