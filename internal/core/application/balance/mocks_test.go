package balance_test

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

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

func (m *mockLedgerBackend) GetInfo(ctx context.Context) (*domain.WalletInfo, error) {
	args := m.Called(ctx)

	var res *domain.WalletInfo
	if a := args.Get(0); a != nil {
		res = a.(*domain.WalletInfo)
	}
	return res, args.Error(1)
}

type funcLedgerBackend struct {
	ports.LedgerBackend
	getInfo func(ctx context.Context) (*domain.WalletInfo, error)
}

func (f funcLedgerBackend) GetInfo(ctx context.Context) (*domain.WalletInfo, error) {
	return f.getInfo(ctx)
}
