package domain

import (
	"github.com/google/uuid"
)

// PaymentType ...
type PaymentType int

const (
	PaymentTypeSend PaymentType = iota
	PaymentTypeReceive
)

func (t PaymentType) String() string {
	switch t {
	case PaymentTypeSend:
		return "Send"
	case PaymentTypeReceive:
		return "Receive"
	default:
		return "Unknown"
	}
}

// PaymentState ...
type PaymentState int

const (
	PaymentStatePending PaymentState = iota
	PaymentStateWaitingConfirmation
	PaymentStateWaitingFeeAcceptance
	PaymentStateRefundable
	PaymentStateComplete
	PaymentStateFailed
)

func (s PaymentState) String() string {
	switch s {
	case PaymentStatePending:
		return "Pending"
	case PaymentStateWaitingConfirmation:
		return "WaitingConfirmation"
	case PaymentStateWaitingFeeAcceptance:
		return "WaitingFeeAcceptance"
	case PaymentStateRefundable:
		return "Refundable"
	case PaymentStateComplete:
		return "Complete"
	case PaymentStateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsFinal returns whether no further transition is allowed from this state.
func (s PaymentState) IsFinal() bool {
	return s == PaymentStateComplete || s == PaymentStateFailed
}

// AwaitsDecision returns whether the payment is stuck until it is refunded
// or its new fees are accepted.
func (s PaymentState) AwaitsDecision() bool {
	return s == PaymentStateRefundable || s == PaymentStateWaitingFeeAcceptance
}

// Payment is the data structure representing an incoming or outgoing
// payment.
type Payment struct {
	ID          string
	Type        PaymentType
	AmountSat   uint64
	FeesSat     uint64
	State       PaymentState
	Timestamp   int64
	Destination string
	TxID        string
	Description string
}

// NewPayment returns a Pending payment with a new id, created at the given
// unix timestamp.
func NewPayment(
	paymentType PaymentType, amountSat, feesSat uint64, destination string,
	timestamp int64,
) *Payment {
	return &Payment{
		ID:          uuid.New().String(),
		Type:        paymentType,
		AmountSat:   amountSat,
		FeesSat:     feesSat,
		State:       PaymentStatePending,
		Timestamp:   timestamp,
		Destination: destination,
	}
}

// Apply merges the given observation of the same payment into the current
// one. Complete and Failed payments are immutable: a different state is
// rejected with ErrPaymentFinalized, the same state is a no-op.
// A Refundable payment only moves to a final state, and one waiting for fee
// acceptance only to Refundable or a final state. Going back to Pending
// requires AcceptFees.
func (p *Payment) Apply(next Payment) error {
	if p.State.IsFinal() {
		if next.State != p.State {
			return ErrPaymentFinalized
		}
		return nil
	}
	if p.State.AwaitsDecision() && next.State != p.State &&
		!next.State.IsFinal() && next.State != PaymentStateRefundable {
		return ErrPaymentStateRegression
	}

	p.State = next.State
	if next.AmountSat > 0 {
		p.AmountSat = next.AmountSat
	}
	if next.FeesSat > 0 {
		p.FeesSat = next.FeesSat
	}
	if next.Timestamp > 0 {
		p.Timestamp = next.Timestamp
	}
	if next.Destination != "" {
		p.Destination = next.Destination
	}
	if next.TxID != "" {
		p.TxID = next.TxID
	}
	if next.Description != "" {
		p.Description = next.Description
	}
	return nil
}

// AcceptFees moves a payment waiting for fee acceptance back to Pending
// with the accepted fees. It is a no-op for a payment that is not waiting
// for fee acceptance anymore.
func (p *Payment) AcceptFees(feesSat uint64) error {
	if p.State.IsFinal() {
		return ErrPaymentFinalized
	}
	if p.State != PaymentStateWaitingFeeAcceptance {
		return nil
	}
	p.State = PaymentStatePending
	p.FeesSat = feesSat
	return nil
}

// IsPending returns whether the payment still affects the pending balances.
func (p Payment) IsPending() bool {
	return !p.State.IsFinal()
}
