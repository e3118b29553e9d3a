package application

import (
	"context"
	"time"

	"github.com/skibidicash/wallet-core/internal/core/application/receive"
	"github.com/skibidicash/wallet-core/internal/core/domain"
)

type ReceiveService interface {
	PrepareReceive(
		ctx context.Context, method domain.ReceiveMethod, amountSat *uint64,
	) (*domain.ReceivePreparation, error)
	Issue(
		ctx context.Context, prep domain.ReceivePreparation, opts receive.IssueOpts,
	) (*domain.ReceiveRequest, error)
}

func NewReceiveService(
	sessionSvc SessionService, timeout time.Duration,
) (ReceiveService, error) {
	return receive.NewService(sessionSvc, timeout)
}
