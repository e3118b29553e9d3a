package dispatcher_test

import (
	"context"
	"sync/atomic"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockBalance struct {
	triggers atomic.Int32
}

func (m *mockBalance) Trigger() {
	m.triggers.Add(1)
}

func (m *mockBalance) count() int {
	return int(m.triggers.Load())
}

type mockProvider struct {
	backend ports.LedgerBackend
	err     error
}

func (p mockProvider) Backend() (ports.LedgerBackend, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.backend, nil
}

type mockLedgerBackend struct {
	ports.LedgerBackend
	mock.Mock
}

func (m *mockLedgerBackend) Refund(
	ctx context.Context, req domain.RefundRequest,
) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockLedgerBackend) FetchPaymentProposedFees(
	ctx context.Context, paymentID string,
) (uint64, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockLedgerBackend) AcceptPaymentProposedFees(
	ctx context.Context, paymentID string, feesSat uint64,
) error {
	args := m.Called(ctx, paymentID, feesSat)
	return args.Error(0)
}
