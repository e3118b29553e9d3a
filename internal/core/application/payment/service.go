package payment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/destination"
)

// Session gives access to the connected ledger backend.
type Session interface {
	Backend() (ports.LedgerBackend, error)
	Network() (domain.Network, error)
}

// Balance is the cached wallet balance.
type Balance interface {
	Current() domain.WalletInfo
	Trigger()
}

// Service coordinates the two-phase send protocol: a send is first
// prepared, which quotes its fees, then executed at most once.
type Service struct {
	session Session
	repo    domain.PaymentRepository
	balance Balance
	network domain.Network
	timeout time.Duration
	ttl     time.Duration
	clock   clock.Clock

	lock     *sync.Mutex
	prepared map[string]domain.PreparedSend
}

// ServiceOpts is the struct given to the NewService function
type ServiceOpts struct {
	Session Session
	Repo    domain.PaymentRepository
	Balance Balance
	// Network is used to parse destinations while the session is not
	// connected.
	Network          domain.Network
	OperationTimeout time.Duration
	PreparedSendTTL  time.Duration
	Clock            clock.Clock
}

func (o ServiceOpts) validate() error {
	if o.Session == nil {
		return fmt.Errorf("missing session")
	}
	if o.Repo == nil {
		return fmt.Errorf("missing payment repository")
	}
	if o.Balance == nil {
		return fmt.Errorf("missing balance cache")
	}
	if !o.Network.IsValid() {
		return domain.ErrInvalidNetwork
	}
	if o.OperationTimeout <= 0 {
		return fmt.Errorf("operation timeout must be a positive duration")
	}
	if o.PreparedSendTTL <= 0 {
		return fmt.Errorf("prepared send ttl must be a positive duration")
	}
	return nil
}

func NewService(opts ServiceOpts) (*Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &Service{
		session:  opts.Session,
		repo:     opts.Repo,
		balance:  opts.Balance,
		network:  opts.Network,
		timeout:  opts.OperationTimeout,
		ttl:      opts.PreparedSendTTL,
		clock:    clk,
		lock:     &sync.Mutex{},
		prepared: make(map[string]domain.PreparedSend),
	}, nil
}

// ParseDestination recognizes the given payment target for the network of
// the session.
func (s *Service) ParseDestination(raw string) (*destination.Destination, error) {
	net, err := s.session.Network()
	if err != nil {
		net = s.network
	}

	dest, err := destination.Parse(raw, net.String())
	if err != nil {
		if errors.Is(err, destination.ErrNetworkMismatch) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNetworkMismatch, err)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedDestination, err)
	}
	return dest, nil
}

// PrepareSend quotes the fees for sending to the given destination and
// returns a prepared send that can be executed once before it expires.
// amountSat is required only if the destination does not embed one.
func (s *Service) PrepareSend(
	ctx context.Context, raw string, amountSat *uint64,
) (*domain.PreparedSend, error) {
	dest, quote, err := s.quote(ctx, raw, amountSat)
	if err != nil {
		return nil, err
	}

	prepared := domain.PreparedSend{
		ID:          uuid.New().String(),
		Destination: *dest,
		AmountSat:   quote.AmountSat,
		FeesSat:     quote.FeesSat,
		ExpiresAt:   s.clock.Now().Add(s.ttl),
	}

	s.lock.Lock()
	s.purgeExpired()
	s.prepared[prepared.ID] = prepared
	s.lock.Unlock()

	return &prepared, nil
}

// EstimateFees quotes the fees for sending to the given destination without
// preparing the send.
func (s *Service) EstimateFees(
	ctx context.Context, raw string, amountSat *uint64,
) (*domain.SendQuote, error) {
	_, quote, err := s.quote(ctx, raw, amountSat)
	return quote, err
}

// ExecuteSend sends the given prepared send. Each prepared send can be
// executed only once, even if the backend call fails, and only before its
// expiration.
func (s *Service) ExecuteSend(
	ctx context.Context, prepared domain.PreparedSend,
) (*domain.Payment, error) {
	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}

	send, err := s.consume(prepared.ID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payment, err := backend.SendPayment(ctx, *send)
	if err != nil {
		return nil, mapSendError(err)
	}

	if err := s.repo.AddPayment(ctx, *payment); err != nil {
		log.WithError(err).Warnf("failed to store payment %s", payment.ID)
	}
	s.balance.Trigger()

	return payment, nil
}

// ListPayments merges the payment history of the backend into the local
// one and returns the payments matching the filter.
func (s *Service) ListPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}

	backendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	payments, err := backend.ListPayments(backendCtx, filter)
	if err != nil {
		return nil, domain.MapTimeout(err)
	}

	for _, p := range payments {
		if err := domain.UpsertPayment(ctx, s.repo, p); err != nil &&
			!errors.Is(err, domain.ErrPaymentFinalized) {
			return nil, err
		}
	}

	return s.repo.ListPayments(ctx, filter)
}

// LocalPayments returns the payments of the local history matching the
// filter, without querying the backend.
func (s *Service) LocalPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	return s.repo.ListPayments(ctx, filter)
}

func (s *Service) GetPayment(
	ctx context.Context, id string,
) (*domain.Payment, error) {
	return s.repo.GetPayment(ctx, id)
}

func (s *Service) Limits(
	ctx context.Context, method domain.ReceiveMethod,
) (*domain.LimitsPair, error) {
	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	limits, err := backend.FetchLimits(ctx, method)
	if err != nil {
		return nil, domain.MapTimeout(err)
	}
	return limits, nil
}

func (s *Service) RecommendedFees(ctx context.Context) (*domain.FeeTiers, error) {
	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fees, err := backend.RecommendedFees(ctx)
	if err != nil {
		return nil, domain.MapTimeout(err)
	}
	return fees, nil
}

// quote validates the amount against the destination before reaching the
// backend for a fee quote.
func (s *Service) quote(
	ctx context.Context, raw string, amountSat *uint64,
) (*destination.Destination, *domain.SendQuote, error) {
	dest, err := s.ParseDestination(raw)
	if err != nil {
		return nil, nil, err
	}

	amount, err := resolveAmount(*dest, amountSat)
	if err != nil {
		return nil, nil, err
	}
	if dest.IsExpired(s.clock.Now()) {
		return nil, nil, domain.ErrInvoiceExpired
	}

	backend, err := s.session.Backend()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	quote, err := backend.PrepareSendPayment(ctx, *dest, &amount)
	if err != nil {
		return nil, nil, mapSendError(err)
	}

	info := s.balance.Current()
	if !info.IsEmpty() {
		total := quote.AmountSat + quote.FeesSat
		if total > info.BalanceSat {
			return nil, nil, fmt.Errorf(
				"%w: sending %d sats, balance is %d sats",
				domain.ErrInsufficientBalance, total, info.BalanceSat,
			)
		}
	}

	return dest, quote, nil
}

func (s *Service) consume(id string) (*domain.PreparedSend, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	prepared, ok := s.prepared[id]
	if !ok {
		return nil, domain.ErrStalePreparedSend
	}
	delete(s.prepared, id)

	if prepared.IsExpired(s.clock.Now()) {
		return nil, domain.ErrStalePreparedSend
	}
	return &prepared, nil
}

func (s *Service) purgeExpired() {
	now := s.clock.Now()
	for id, p := range s.prepared {
		if p.IsExpired(now) {
			delete(s.prepared, id)
		}
	}
}

func resolveAmount(dest destination.Destination, amountSat *uint64) (uint64, error) {
	if dest.HasAmount() {
		if amountSat != nil && *amountSat != *dest.AmountSat {
			return 0, domain.ErrAmbiguousAmount
		}
		return *dest.AmountSat, nil
	}
	if amountSat == nil || *amountSat == 0 {
		return 0, domain.ErrAmountRequired
	}
	return *amountSat, nil
}

func mapSendError(err error) error {
	err = domain.MapTimeout(err)
	for _, known := range []error{
		domain.ErrTimeout,
		domain.ErrNetworkUnavailable,
		domain.ErrPaymentRejected,
		domain.ErrInsufficientBalance,
		domain.ErrAmountOutOfRange,
		domain.ErrUnsupportedDestination,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrPaymentRejected, err)
}
