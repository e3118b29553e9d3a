package session_test

import (
	"context"
	"sync/atomic"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockDispatcher struct {
	starts atomic.Int32
	stops  atomic.Int32
	resets atomic.Int32
	events atomic.Int32
}

func (m *mockDispatcher) Start() {
	m.starts.Add(1)
}

func (m *mockDispatcher) Stop() {
	m.stops.Add(1)
}

func (m *mockDispatcher) Reset() {
	m.resets.Add(1)
}

func (m *mockDispatcher) Enqueue(domain.Event) {
	m.events.Add(1)
}

type mockLedgerBackend struct {
	ports.LedgerBackend
	mock.Mock
}

func (m *mockLedgerBackend) Connect(
	ctx context.Context, cfg ports.ConnectConfig,
) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *mockLedgerBackend) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockLedgerBackend) Sync(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockLedgerBackend) GetInfo(ctx context.Context) (*domain.WalletInfo, error) {
	args := m.Called(ctx)

	var res *domain.WalletInfo
	if a := args.Get(0); a != nil {
		res = a.(*domain.WalletInfo)
	}
	return res, args.Error(1)
}

func (m *mockLedgerBackend) AddEventListener(
	ctx context.Context, listener ports.EventListener,
) (string, error) {
	args := m.Called(ctx, listener)
	return args.String(0), args.Error(1)
}

func (m *mockLedgerBackend) RemoveEventListener(
	ctx context.Context, id string,
) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
