package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

// EventDispatcher consumes the backend events of a connected session.
type EventDispatcher interface {
	Start()
	Stop()
	Reset()
	Enqueue(event domain.Event)
}

// ConnectOpts is the struct given to the Connect method
type ConnectOpts struct {
	Mnemonic []string
	Network  domain.Network
	APIKey   string
}

func (o ConnectOpts) validate() error {
	if err := wallet.ValidateMnemonic(o.Mnemonic); err != nil {
		return domain.ErrInvalidMnemonic
	}
	if !o.Network.IsValid() {
		return domain.ErrInvalidNetwork
	}
	return nil
}

// Status ...
type Status struct {
	State       domain.SessionState
	Connected   bool
	Network     domain.Network
	HasListener bool
	LastError   error
}

// Health is the outcome of probing the connected backend.
type Health struct {
	CanGetInfo bool
	CanSync    bool
}

// Service owns the connection to the ledger backend. State transitions
// never wait for each other: a transition requested while another one is in
// flight fails immediately with ErrConnectInProgress.
type Service struct {
	backend    ports.LedgerBackend
	dispatcher EventDispatcher
	timeout    time.Duration

	lock       *sync.Mutex
	state      domain.SessionState
	busy       bool
	opts       *ConnectOpts
	listenerID string
	// open gates the listener of the current session. Events delivered by
	// the backend once the session is closed are dropped.
	open    *atomic.Bool
	lastErr error
}

func NewService(
	backend ports.LedgerBackend, dispatcher EventDispatcher,
	timeout time.Duration,
) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("missing ledger backend")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("missing event dispatcher")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be a positive duration")
	}

	return &Service{
		backend:    backend,
		dispatcher: dispatcher,
		timeout:    timeout,
		lock:       &sync.Mutex{},
		state:      domain.SessionStateDisconnected,
	}, nil
}

// Connect opens the session with the ledger backend and registers the
// event dispatcher as the only listener. Connecting an already connected
// session is a no-op if the network is the same.
// The handshake is not aborted if ctx is canceled, it is bounded by the
// operation timeout only.
func (s *Service) Connect(ctx context.Context, opts ConnectOpts) error {
	if err := opts.validate(); err != nil {
		return err
	}

	s.lock.Lock()
	if s.busy {
		s.lock.Unlock()
		return domain.ErrConnectInProgress
	}
	if s.state == domain.SessionStateConnected {
		defer s.lock.Unlock()
		if s.opts.Network != opts.Network {
			return domain.ErrNetworkMismatch
		}
		return nil
	}
	s.busy = true
	s.state = domain.SessionStateConnecting
	s.opts = &opts
	prevListenerID := s.listenerID
	s.lock.Unlock()

	log.Debugf("connecting to ledger backend on %s", opts.Network)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	open := &atomic.Bool{}
	open.Store(true)
	listenerID, err := s.connect(ctx, opts, prevListenerID, open)

	s.lock.Lock()
	defer s.lock.Unlock()

	s.busy = false
	s.listenerID = listenerID
	s.open = open
	if err != nil {
		s.state = domain.SessionStateErrorBackoff
		s.lastErr = err
		log.WithError(err).Warn("failed to connect to ledger backend")
		return newConnectError(err)
	}

	s.state = domain.SessionStateConnected
	s.lastErr = nil
	log.Debugf("connected to ledger backend on %s", opts.Network)
	return nil
}

// Disconnect closes the session. It is a no-op if already disconnected.
func (s *Service) Disconnect(ctx context.Context) error {
	s.lock.Lock()
	if s.busy {
		s.lock.Unlock()
		return domain.ErrConnectInProgress
	}
	if s.state == domain.SessionStateDisconnected {
		s.lock.Unlock()
		return nil
	}
	s.busy = true
	wasConnected := s.state == domain.SessionStateConnected
	listenerID := s.listenerID
	if s.open != nil {
		s.open.Store(false)
	}
	s.lock.Unlock()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	if listenerID != "" {
		if err := s.backend.RemoveEventListener(ctx, listenerID); err != nil {
			log.WithError(err).Warn("failed to remove event listener")
		} else {
			listenerID = ""
		}
	}

	s.dispatcher.Stop()
	s.dispatcher.Reset()

	if wasConnected {
		if err := s.backend.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("failed to disconnect from ledger backend")
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.busy = false
	s.state = domain.SessionStateDisconnected
	s.listenerID = listenerID
	log.Debug("disconnected from ledger backend")
	return nil
}

// Reconnect disconnects the session, if needed, and connects it again with
// the options of the last connect attempt.
func (s *Service) Reconnect(ctx context.Context) error {
	s.lock.Lock()
	opts := s.opts
	s.lock.Unlock()

	if opts == nil {
		return domain.ErrNotConnected
	}

	if err := s.Disconnect(ctx); err != nil {
		return err
	}
	return s.Connect(ctx, *opts)
}

// Sync asks the backend to sync with the network. Failures are only logged
// since a stale view is recovered by the next sync.
func (s *Service) Sync(ctx context.Context) error {
	backend, err := s.Backend()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := backend.Sync(ctx); err != nil {
		log.WithError(fmt.Errorf("%w: %s", domain.ErrSyncFailed, domain.MapTimeout(err))).
			Warn("failed to sync wallet")
	}
	return nil
}

// Backend returns the ledger backend if the session is connected.
func (s *Service) Backend() (ports.LedgerBackend, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.busy {
		return nil, domain.ErrConnectInProgress
	}
	if s.state != domain.SessionStateConnected {
		return nil, domain.ErrNotConnected
	}
	return s.backend, nil
}

// Network returns the network of the connected session.
func (s *Service) Network() (domain.Network, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.state != domain.SessionStateConnected {
		return "", domain.ErrNotConnected
	}
	return s.opts.Network, nil
}

func (s *Service) State() domain.SessionState {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.state
}

func (s *Service) Status() Status {
	s.lock.Lock()
	defer s.lock.Unlock()

	status := Status{
		State:       s.state,
		Connected:   s.state == domain.SessionStateConnected,
		HasListener: s.listenerID != "",
		LastError:   s.lastErr,
	}
	if s.opts != nil {
		status.Network = s.opts.Network
	}
	return status
}

// HealthCheck checks the backend of the connected session.
func (s *Service) HealthCheck(ctx context.Context) (*Health, error) {
	backend, err := s.Backend()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	health := &Health{}
	if _, err := backend.GetInfo(ctx); err == nil {
		health.CanGetInfo = true
	} else {
		log.WithError(err).Debug("health check: get info failed")
	}
	if err := backend.Sync(ctx); err == nil {
		health.CanSync = true
	} else {
		log.WithError(err).Debug("health check: sync failed")
	}
	return health, nil
}

// connect returns the id of the registered listener.
func (s *Service) connect(
	ctx context.Context, opts ConnectOpts, prevListenerID string,
	open *atomic.Bool,
) (string, error) {
	if prevListenerID != "" {
		if err := s.backend.RemoveEventListener(ctx, prevListenerID); err != nil {
			log.WithError(err).Warn("failed to remove previous event listener")
		}
	}

	if err := s.backend.Connect(ctx, ports.ConnectConfig{
		Network:  opts.Network,
		APIKey:   opts.APIKey,
		Mnemonic: opts.Mnemonic,
	}); err != nil {
		return "", err
	}

	listenerID, err := s.backend.AddEventListener(ctx, func(event domain.Event) {
		if open.Load() {
			s.dispatcher.Enqueue(event)
		}
	})
	if err != nil {
		if err := s.backend.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("failed to disconnect from ledger backend")
		}
		return "", err
	}

	s.dispatcher.Start()
	return listenerID, nil
}
