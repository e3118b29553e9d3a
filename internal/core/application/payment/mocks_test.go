package payment_test

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/destination"
	"github.com/stretchr/testify/mock"
)

type mockSession struct {
	lock      sync.RWMutex
	backend   ports.LedgerBackend
	network   domain.Network
	connected bool
}

func (m *mockSession) Backend() (ports.LedgerBackend, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if !m.connected {
		return nil, domain.ErrNotConnected
	}
	return m.backend, nil
}

func (m *mockSession) Network() (domain.Network, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	if !m.connected {
		return "", domain.ErrNotConnected
	}
	return m.network, nil
}

func (m *mockSession) setConnected(connected bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.connected = connected
}

type mockBalance struct {
	info     domain.WalletInfo
	triggers atomic.Int32
}

func (m *mockBalance) Current() domain.WalletInfo {
	return m.info
}

func (m *mockBalance) Trigger() {
	m.triggers.Add(1)
}

type mockLedgerBackend struct {
	ports.LedgerBackend
	mock.Mock
}

func (m *mockLedgerBackend) PrepareSendPayment(
	ctx context.Context, dest destination.Destination, amountSat *uint64,
) (*domain.SendQuote, error) {
	args := m.Called(ctx, dest, amountSat)

	var res *domain.SendQuote
	switch a := args.Get(0).(type) {
	case *domain.SendQuote:
		res = a
	case func(
		context.Context, destination.Destination, *uint64,
	) *domain.SendQuote:
		res = a(ctx, dest, amountSat)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) SendPayment(
	ctx context.Context, prepared domain.PreparedSend,
) (*domain.Payment, error) {
	args := m.Called(ctx, prepared)

	var res *domain.Payment
	switch a := args.Get(0).(type) {
	case *domain.Payment:
		res = a
	case func(context.Context, domain.PreparedSend) *domain.Payment:
		res = a(ctx, prepared)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) ListPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)

	var res []domain.Payment
	if a := args.Get(0); a != nil {
		res = a.([]domain.Payment)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) FetchLimits(
	ctx context.Context, method domain.ReceiveMethod,
) (*domain.LimitsPair, error) {
	args := m.Called(ctx, method)

	var res *domain.LimitsPair
	if a := args.Get(0); a != nil {
		res = a.(*domain.LimitsPair)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) RecommendedFees(
	ctx context.Context,
) (*domain.FeeTiers, error) {
	args := m.Called(ctx)

	var res *domain.FeeTiers
	if a := args.Get(0); a != nil {
		res = a.(*domain.FeeTiers)
	}
	return res, args.Error(1)
}
