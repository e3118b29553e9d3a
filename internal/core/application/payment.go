package application

import (
	"context"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	"github.com/skibidicash/wallet-core/internal/core/application/payment"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/destination"
)

type PaymentService interface {
	ParseDestination(raw string) (*destination.Destination, error)
	PrepareSend(
		ctx context.Context, raw string, amountSat *uint64,
	) (*domain.PreparedSend, error)
	EstimateFees(
		ctx context.Context, raw string, amountSat *uint64,
	) (*domain.SendQuote, error)
	ExecuteSend(
		ctx context.Context, prepared domain.PreparedSend,
	) (*domain.Payment, error)
	ListPayments(
		ctx context.Context, filter domain.PaymentFilter,
	) ([]domain.Payment, error)
	LocalPayments(
		ctx context.Context, filter domain.PaymentFilter,
	) ([]domain.Payment, error)
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	Limits(
		ctx context.Context, method domain.ReceiveMethod,
	) (*domain.LimitsPair, error)
	RecommendedFees(ctx context.Context) (*domain.FeeTiers, error)
}

func NewPaymentService(
	sessionSvc SessionService, repo domain.PaymentRepository,
	balanceSvc BalanceService, network domain.Network,
	timeout, preparedSendTTL time.Duration, clk clock.Clock,
) (PaymentService, error) {
	return payment.NewService(payment.ServiceOpts{
		Session:          sessionSvc,
		Repo:             repo,
		Balance:          balanceSvc,
		Network:          network,
		OperationTimeout: timeout,
		PreparedSendTTL:  preparedSendTTL,
		Clock:            clk,
	})
}
