package receive_test

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockSession struct {
	backend   ports.LedgerBackend
	network   domain.Network
	connected bool
}

func (m *mockSession) Backend() (ports.LedgerBackend, error) {
	if !m.connected {
		return nil, domain.ErrNotConnected
	}
	return m.backend, nil
}

func (m *mockSession) Network() (domain.Network, error) {
	if !m.connected {
		return "", domain.ErrNotConnected
	}
	return m.network, nil
}

type mockLedgerBackend struct {
	ports.LedgerBackend
	mock.Mock
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

func (m *mockLedgerBackend) PrepareReceivePayment(
	ctx context.Context, method domain.ReceiveMethod, amountSat *uint64,
) (*domain.ReceivePreparation, error) {
	args := m.Called(ctx, method, amountSat)

	var res *domain.ReceivePreparation
	if a := args.Get(0); a != nil {
		res = a.(*domain.ReceivePreparation)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) ReceivePayment(
	ctx context.Context, prep domain.ReceivePreparation,
	description string, useDescriptionHash bool,
) (*domain.ReceiveRequest, error) {
	args := m.Called(ctx, prep, description, useDescriptionHash)

	var res *domain.ReceiveRequest
	if a := args.Get(0); a != nil {
		res = a.(*domain.ReceiveRequest)
	}
	return res, args.Error(1)
}
