package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
)

// BackendProvider returns the ledger backend of the current session, or an
// error if the session is not connected.
type BackendProvider interface {
	Backend() (ports.LedgerBackend, error)
}

// BalanceTrigger schedules a refresh of the cached balance without
// blocking.
type BalanceTrigger interface {
	Trigger()
}

// Service is the single consumer of the ledger backend events. Events are
// queued by Enqueue and handled strictly in arrival order by one goroutine.
type Service struct {
	repo     domain.PaymentRepository
	balance  BalanceTrigger
	provider BackendProvider
	timeout  time.Duration
	clock    clock.Clock

	lock    *sync.Mutex
	queue   []domain.Event
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	running bool

	decisionsLock *sync.RWMutex
	decisions     []domain.PendingDecision
}

func NewService(
	repo domain.PaymentRepository, balance BalanceTrigger,
	provider BackendProvider, timeout time.Duration, clk clock.Clock,
) (*Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("missing payment repository")
	}
	if balance == nil {
		return nil, fmt.Errorf("missing balance trigger")
	}
	if provider == nil {
		return nil, fmt.Errorf("missing backend provider")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be a positive duration")
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	return &Service{
		repo:          repo,
		balance:       balance,
		provider:      provider,
		timeout:       timeout,
		clock:         clk,
		lock:          &sync.Mutex{},
		wake:          make(chan struct{}, 1),
		decisionsLock: &sync.RWMutex{},
	}, nil
}

// Start spawns the consumer goroutine. It is a no-op if already started.
func (s *Service) Start() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.quit = make(chan struct{})
	s.done = make(chan struct{})

	go s.listen(s.quit, s.done)

	s.signal()
	log.Debug("event dispatcher started")
}

// Stop handles the events still queued and waits for the consumer goroutine
// to exit. It is a no-op if not started.
func (s *Service) Stop() {
	s.lock.Lock()
	if !s.running {
		s.lock.Unlock()
		return
	}
	s.running = false
	quit, done := s.quit, s.done
	s.lock.Unlock()

	close(quit)
	<-done
	log.Debug("event dispatcher stopped")
}

// Reset drops the queued events and the pending decisions. It is meant to
// be called once the session feeding the dispatcher has ended.
func (s *Service) Reset() {
	s.lock.Lock()
	s.queue = nil
	s.lock.Unlock()

	s.decisionsLock.Lock()
	s.decisions = nil
	s.decisionsLock.Unlock()
}

// Enqueue queues the event and returns immediately. It is meant to be
// registered as the ledger backend event listener.
func (s *Service) Enqueue(event domain.Event) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.queue = append(s.queue, event)
	if s.running {
		s.signal()
	}
}

// PendingDecisions returns the payments waiting for an external decision,
// oldest first.
func (s *Service) PendingDecisions() []domain.PendingDecision {
	s.decisionsLock.RLock()
	defer s.decisionsLock.RUnlock()

	decisions := make([]domain.PendingDecision, len(s.decisions))
	copy(decisions, s.decisions)
	return decisions
}

// ResolveRefund asks the backend to refund the given refundable payment to
// refundAddress and returns the id of the refund transaction.
func (s *Service) ResolveRefund(
	ctx context.Context, paymentID, refundAddress string, feeRateSatPerVByte uint32,
) (string, error) {
	if _, err := s.getDecision(paymentID, domain.DecisionRefund); err != nil {
		return "", err
	}
	if refundAddress == "" {
		return "", fmt.Errorf("missing refund address")
	}

	backend, err := s.provider.Backend()
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	txid, err := backend.Refund(ctx, domain.RefundRequest{
		PaymentID:          paymentID,
		RefundAddress:      refundAddress,
		FeeRateSatPerVByte: feeRateSatPerVByte,
	})
	if err != nil {
		return "", domain.MapTimeout(err)
	}

	s.removeDecisions(paymentID)
	s.balance.Trigger()
	return txid, nil
}

// AcceptFees accepts the fees proposed by the backend for the given payment
// waiting for fee acceptance.
func (s *Service) AcceptFees(ctx context.Context, paymentID string) error {
	if _, err := s.getDecision(paymentID, domain.DecisionAcceptFees); err != nil {
		return err
	}

	backend, err := s.provider.Backend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	feesSat, err := backend.FetchPaymentProposedFees(ctx, paymentID)
	if err != nil {
		return domain.MapTimeout(err)
	}
	if err := backend.AcceptPaymentProposedFees(ctx, paymentID, feesSat); err != nil {
		return domain.MapTimeout(err)
	}

	if err := s.repo.UpdatePayment(
		ctx, paymentID, func(p *domain.Payment) (*domain.Payment, error) {
			if err := p.AcceptFees(feesSat); err != nil {
				return nil, err
			}
			return p, nil
		},
	); err != nil {
		log.WithError(err).Warnf("failed to store accepted fees of %s", paymentID)
	}

	s.removeDecisions(paymentID)
	s.balance.Trigger()
	return nil
}

func (s *Service) listen(quit, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-s.wake:
			s.drain()
		case <-quit:
			s.drain()
			return
		}
	}
}

// drain handles every queued event in order and triggers at most one
// balance refresh for the whole batch.
func (s *Service) drain() {
	for {
		s.lock.Lock()
		batch := s.queue
		s.queue = nil
		s.lock.Unlock()

		if len(batch) <= 0 {
			return
		}

		refresh := false
		for _, event := range batch {
			s.handle(event)
			if event.Type.TriggersRefresh() {
				refresh = true
			}
		}
		if refresh {
			s.balance.Trigger()
		}
	}
}

func (s *Service) handle(event domain.Event) {
	log.Debugf("handling event %s", event.Type)

	if event.Payment == nil {
		return
	}
	payment := *event.Payment

	if err := domain.UpsertPayment(
		context.Background(), s.repo, payment,
	); err != nil {
		if errors.Is(err, domain.ErrPaymentFinalized) ||
			errors.Is(err, domain.ErrPaymentStateRegression) {
			log.Debugf(
				"ignoring stale %s event for payment %s", event.Type, payment.ID,
			)
			return
		}
		log.WithError(err).Warnf(
			"failed to store payment %s from %s event", payment.ID, event.Type,
		)
	}

	if kind, ok := event.Type.Decision(); ok {
		s.addDecision(domain.PendingDecision{
			Kind:       kind,
			Payment:    payment,
			ReceivedAt: s.clock.Now(),
		})
		return
	}
	if payment.State.IsFinal() {
		s.removeDecisions(payment.ID)
	}
}

func (s *Service) addDecision(decision domain.PendingDecision) {
	s.decisionsLock.Lock()
	defer s.decisionsLock.Unlock()

	for i, d := range s.decisions {
		if d.Payment.ID == decision.Payment.ID && d.Kind == decision.Kind {
			s.decisions[i].Payment = decision.Payment
			return
		}
	}
	s.decisions = append(s.decisions, decision)
}

func (s *Service) getDecision(
	paymentID string, kind domain.DecisionKind,
) (*domain.PendingDecision, error) {
	s.decisionsLock.RLock()
	defer s.decisionsLock.RUnlock()

	for _, d := range s.decisions {
		if d.Payment.ID == paymentID && d.Kind == kind {
			decision := d
			return &decision, nil
		}
	}
	return nil, domain.ErrDecisionNotFound
}

func (s *Service) removeDecisions(paymentID string) {
	s.decisionsLock.Lock()
	defer s.decisionsLock.Unlock()

	decisions := s.decisions[:0]
	for _, d := range s.decisions {
		if d.Payment.ID != paymentID {
			decisions = append(decisions, d)
		}
	}
	s.decisions = decisions
}

func (s *Service) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
