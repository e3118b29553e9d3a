package application

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/skibidicash/wallet-core/internal/core/application/dispatcher"
	"github.com/skibidicash/wallet-core/internal/core/domain"
)

// DispatcherService consumes the backend events and keeps track of the
// payments waiting for an external decision.
type DispatcherService interface {
	Start()
	Stop()
	Reset()
	Enqueue(event domain.Event)
	PendingDecisions() []domain.PendingDecision
	ResolveRefund(
		ctx context.Context, paymentID, refundAddress string, feeRate uint32,
	) (string, error)
	AcceptFees(ctx context.Context, paymentID string) error
}

func NewDispatcherService(
	repo domain.PaymentRepository, balanceSvc BalanceService,
	provider dispatcher.BackendProvider, timeout time.Duration,
	clk clock.Clock,
) (DispatcherService, error) {
	return dispatcher.NewService(repo, balanceSvc, provider, timeout, clk)
}
