package domain_test

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) AddPayment(
	ctx context.Context, payment domain.Payment,
) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentRepository) GetPayment(
	ctx context.Context, id string,
) (*domain.Payment, error) {
	args := m.Called(ctx, id)

	var res *domain.Payment
	if a := args.Get(0); a != nil {
		res = a.(*domain.Payment)
	}
	return res, args.Error(1)
}

func (m *mockPaymentRepository) ListPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)

	var res []domain.Payment
	if a := args.Get(0); a != nil {
		res = a.([]domain.Payment)
	}
	return res, args.Error(1)
}

func (m *mockPaymentRepository) UpdatePayment(
	ctx context.Context, id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	args := m.Called(ctx, id, updateFn)
	return args.Error(0)
}

func (m *mockPaymentRepository) UpsertPayment(
	ctx context.Context, id string,
	upsertFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	args := m.Called(ctx, id, upsertFn)
	return args.Error(0)
}
