package domain

import "context"

// UpsertPayment stores a payment never seen before, or merges the given
// observation into the stored one, in a single repository transaction.
func UpsertPayment(
	ctx context.Context, repo PaymentRepository, payment Payment,
) error {
	return repo.UpsertPayment(
		ctx, payment.ID, func(p *Payment) (*Payment, error) {
			if p == nil {
				return &payment, nil
			}
			if err := p.Apply(payment); err != nil {
				return nil, err
			}
			return p, nil
		},
	)
}
