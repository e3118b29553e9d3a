package ports

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/destination"
)

// ConnectConfig holds what the backend needs to open a session for a
// wallet.
type ConnectConfig struct {
	Network  domain.Network
	APIKey   string
	Mnemonic []string
}

// EventListener receives the backend notifications. It must not block.
type EventListener func(event domain.Event)

// LedgerBackend is the external service settling payments and reporting
// balance, history and events. Every method may block on network I/O and
// must honor the context deadline.
type LedgerBackend interface {
	Connect(ctx context.Context, cfg ConnectConfig) error
	Disconnect(ctx context.Context) error
	Sync(ctx context.Context) error
	GetInfo(ctx context.Context) (*domain.WalletInfo, error)
	ListPayments(
		ctx context.Context, filter domain.PaymentFilter,
	) ([]domain.Payment, error)

	PrepareSendPayment(
		ctx context.Context, dest destination.Destination, amountSat *uint64,
	) (*domain.SendQuote, error)
	SendPayment(
		ctx context.Context, prepared domain.PreparedSend,
	) (*domain.Payment, error)

	PrepareReceivePayment(
		ctx context.Context, method domain.ReceiveMethod, amountSat *uint64,
	) (*domain.ReceivePreparation, error)
	ReceivePayment(
		ctx context.Context, prep domain.ReceivePreparation,
		description string, useDescriptionHash bool,
	) (*domain.ReceiveRequest, error)

	AddEventListener(ctx context.Context, listener EventListener) (string, error)
	RemoveEventListener(ctx context.Context, id string) error

	FetchLimits(
		ctx context.Context, method domain.ReceiveMethod,
	) (*domain.LimitsPair, error)
	RecommendedFees(ctx context.Context) (*domain.FeeTiers, error)

	FetchPaymentProposedFees(ctx context.Context, paymentID string) (uint64, error)
	AcceptPaymentProposedFees(
		ctx context.Context, paymentID string, feesSat uint64,
	) error
	Refund(ctx context.Context, req domain.RefundRequest) (string, error)
}
