package domain

import "time"

// EventType is the closed set of notifications emitted by the ledger
// backend.
type EventType int

const (
	EventPaymentSucceeded EventType = iota
	EventPaymentFailed
	EventPaymentPending
	EventPaymentWaitingConfirmation
	EventPaymentRefundable
	EventPaymentWaitingFeeAcceptance
	EventSynced
	EventDataSynced
)

func (t EventType) String() string {
	switch t {
	case EventPaymentSucceeded:
		return "PaymentSucceeded"
	case EventPaymentFailed:
		return "PaymentFailed"
	case EventPaymentPending:
		return "PaymentPending"
	case EventPaymentWaitingConfirmation:
		return "PaymentWaitingConfirmation"
	case EventPaymentRefundable:
		return "PaymentRefundable"
	case EventPaymentWaitingFeeAcceptance:
		return "PaymentWaitingFeeAcceptance"
	case EventSynced:
		return "Synced"
	case EventDataSynced:
		return "DataSynced"
	default:
		return "Unknown"
	}
}

// TriggersRefresh returns whether the event invalidates the cached balance.
func (t EventType) TriggersRefresh() bool {
	switch t {
	case EventPaymentSucceeded, EventPaymentFailed, EventPaymentPending,
		EventPaymentWaitingConfirmation, EventSynced, EventDataSynced:
		return true
	default:
		return false
	}
}

// Decision returns the kind of external decision the event requires, if
// any.
func (t EventType) Decision() (DecisionKind, bool) {
	switch t {
	case EventPaymentRefundable:
		return DecisionRefund, true
	case EventPaymentWaitingFeeAcceptance:
		return DecisionAcceptFees, true
	default:
		return 0, false
	}
}

// Event is a notification from the ledger backend. Payment is set for the
// payment variants only.
type Event struct {
	Type    EventType
	Payment *Payment
}

// NewPaymentEvent ...
func NewPaymentEvent(eventType EventType, payment Payment) Event {
	return Event{Type: eventType, Payment: &payment}
}

// NewSyncedEvent ...
func NewSyncedEvent() Event {
	return Event{Type: EventSynced}
}

// NewDataSyncedEvent ...
func NewDataSyncedEvent() Event {
	return Event{Type: EventDataSynced}
}

// DecisionKind is the action an external actor must take on a payment.
type DecisionKind int

const (
	DecisionRefund DecisionKind = iota
	DecisionAcceptFees
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRefund:
		return "Refund"
	case DecisionAcceptFees:
		return "AcceptFees"
	default:
		return "Unknown"
	}
}

// PendingDecision is a payment stuck until someone explicitly refunds it or
// accepts the fees proposed by the backend.
type PendingDecision struct {
	Kind       DecisionKind
	Payment    Payment
	ReceivedAt time.Time
}
