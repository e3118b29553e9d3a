package application

import (
	"context"
	"time"

	"github.com/skibidicash/wallet-core/internal/core/application/session"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
)

type SessionService interface {
	Connect(ctx context.Context, opts session.ConnectOpts) error
	Disconnect(ctx context.Context) error
	Reconnect(ctx context.Context) error
	Sync(ctx context.Context) error
	Backend() (ports.LedgerBackend, error)
	Network() (domain.Network, error)
	State() domain.SessionState
	Status() session.Status
	HealthCheck(ctx context.Context) (*session.Health, error)
}

func NewSessionService(
	backend ports.LedgerBackend, dispatcherSvc DispatcherService,
	timeout time.Duration,
) (SessionService, error) {
	return session.NewService(backend, dispatcherSvc, timeout)
}
