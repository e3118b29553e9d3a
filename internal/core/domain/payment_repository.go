package domain

import "context"

// PaymentRepository is the abstraction for any kind of database intended to
// persist the payment history.
type PaymentRepository interface {
	// AddPayment stores a new payment. It is a no-op if a payment with the
	// same id already exists.
	AddPayment(ctx context.Context, payment Payment) error
	// GetPayment returns the payment with the given id, or ErrPaymentNotFound.
	GetPayment(ctx context.Context, id string) (*Payment, error)
	// ListPayments returns the payments matching the given filter.
	ListPayments(ctx context.Context, filter PaymentFilter) ([]Payment, error)
	// UpdatePayment allows to commit multiple changes to the same payment in
	// a transactional way.
	UpdatePayment(
		ctx context.Context,
		id string,
		updateFn func(p *Payment) (*Payment, error),
	) error
	// UpsertPayment is like UpdatePayment, but calls upsertFn with a nil
	// payment if none with the given id exists and stores the result.
	UpsertPayment(
		ctx context.Context,
		id string,
		upsertFn func(p *Payment) (*Payment, error),
	) error
}
