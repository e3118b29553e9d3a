// Package simnet implements an in-process ledger backend. It settles
// payments instantly or on demand, issues real BOLT11 invoices and fresh
// Bitcoin and Liquid addresses, and lets tests inject failures.
package simnet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

const (
	defaultSettleDelay = 10 * time.Millisecond
)

var _ ports.LedgerBackend = (*Ledger)(nil)

// Config ...
type Config struct {
	// InitialBalanceSat is credited to every wallet on first connect.
	InitialBalanceSat uint64
	// APIKey, if set, must match the one given on connect.
	APIKey string
	// SettleDelay is the time a payment stays pending before succeeding.
	SettleDelay time.Duration
	// ManualSettlement keeps payments pending until SettlePayment or
	// FailPayment is called.
	ManualSettlement bool
	Clock            clock.Clock
}

// Ledger is a simulated ledger backend for a single wallet.
type Ledger struct {
	cfg   Config
	clock clock.Clock

	lock      *sync.RWMutex
	connected bool
	funded    bool
	network   domain.Network
	wallet    *wallet.Wallet
	nodeKey   *btcec.PrivateKey
	remoteKey *btcec.PrivateKey
	balance   uint64
	payments  map[string]*domain.Payment
	invoices  map[string]*issuedInvoice
	addresses map[string]*issuedAddress
	paidHash  map[string]struct{}
	nextIndex uint32
	proposed  map[string]uint64
	listeners map[string]ports.EventListener
	outbox    []domain.Event

	emitLock *sync.Mutex
	faults   *faults
	counters *counters
}

func NewLedger(cfg Config) (*Ledger, error) {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = defaultSettleDelay
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.NewDefaultClock()
	}

	remoteKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	return &Ledger{
		cfg:       cfg,
		clock:     clk,
		lock:      &sync.RWMutex{},
		remoteKey: remoteKey,
		payments:  make(map[string]*domain.Payment),
		invoices:  make(map[string]*issuedInvoice),
		addresses: make(map[string]*issuedAddress),
		paidHash:  make(map[string]struct{}),
		proposed:  make(map[string]uint64),
		listeners: make(map[string]ports.EventListener),
		emitLock:  &sync.Mutex{},
		faults:    newFaults(),
		counters:  newCounters(),
	}, nil
}

func (l *Ledger) Connect(ctx context.Context, cfg ports.ConnectConfig) error {
	l.counters.inc(MethodConnect)

	if err := l.faults.connectError(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !cfg.Network.IsValid() {
		return domain.ErrInvalidNetwork
	}
	if cfg.Network == domain.NetworkMainnet && cfg.APIKey == "" {
		return fmt.Errorf("%w: missing api key", domain.ErrUnauthorized)
	}
	if l.cfg.APIKey != "" && cfg.APIKey != l.cfg.APIKey {
		return fmt.Errorf("%w: invalid api key", domain.ErrUnauthorized)
	}

	w, err := wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: cfg.Mnemonic,
	})
	if err != nil {
		return domain.ErrInvalidMnemonic
	}
	nodeKey, err := deriveNodeKey(w, cfg.Network)
	if err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	l.connected = true
	l.network = cfg.Network
	l.wallet = w
	l.nodeKey = nodeKey
	if !l.funded {
		l.balance = l.cfg.InitialBalanceSat
		l.funded = true
	}

	log.Debugf("simnet: wallet connected on %s", cfg.Network)
	return nil
}

func (l *Ledger) Disconnect(ctx context.Context) error {
	l.counters.inc(MethodDisconnect)

	l.lock.Lock()
	defer l.lock.Unlock()

	l.connected = false
	return nil
}

func (l *Ledger) Sync(ctx context.Context) error {
	l.counters.inc(MethodSync)

	if err := l.faults.syncError(); err != nil {
		return err
	}
	if err := l.requireConnected(); err != nil {
		return err
	}

	l.emit(domain.NewSyncedEvent())
	return nil
}

func (l *Ledger) GetInfo(ctx context.Context) (*domain.WalletInfo, error) {
	l.counters.inc(MethodGetInfo)

	if err := l.faults.waitGetInfo(ctx); err != nil {
		return nil, err
	}
	if err := l.faults.getInfoError(); err != nil {
		return nil, err
	}

	l.lock.RLock()
	defer l.lock.RUnlock()

	if !l.connected {
		return nil, domain.ErrNotConnected
	}

	fingerprint, err := l.wallet.Fingerprint(l.network.String())
	if err != nil {
		return nil, err
	}
	_, pubkey, err := l.wallet.DeriveKeyPair(wallet.DeriveKeyPairOpts{
		Purpose: wallet.PurposePayment,
		Network: l.network.String(),
	})
	if err != nil {
		return nil, err
	}
	liquidNet, _ := wallet.LiquidParams(l.network.String())

	info := &domain.WalletInfo{
		BalanceSat:  l.balance,
		Fingerprint: fingerprint,
		Pubkey:      fmt.Sprintf("%x", pubkey.SerializeCompressed()),
		AssetBalances: []domain.AssetBalance{
			{
				AssetID:    liquidNet.AssetID,
				BalanceSat: l.balance,
				Name:       "Bitcoin",
				Ticker:     "BTC",
			},
		},
	}
	for _, p := range l.payments {
		if !p.IsPending() {
			continue
		}
		if p.Type == domain.PaymentTypeSend {
			info.PendingSendSat += p.AmountSat + p.FeesSat
		} else {
			info.PendingReceiveSat += p.AmountSat - p.FeesSat
		}
	}
	return info, nil
}

func (l *Ledger) ListPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	l.counters.inc(MethodListPayments)

	l.lock.RLock()
	defer l.lock.RUnlock()

	if !l.connected {
		return nil, domain.ErrNotConnected
	}

	payments := make([]domain.Payment, 0, len(l.payments))
	for _, p := range l.payments {
		payments = append(payments, *p)
	}
	return filter.Apply(payments), nil
}

func (l *Ledger) AddEventListener(
	ctx context.Context, listener ports.EventListener,
) (string, error) {
	l.counters.inc(MethodAddEventListener)

	if listener == nil {
		return "", fmt.Errorf("missing listener")
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	id := uuid.New().String()
	l.listeners[id] = listener
	return id, nil
}

func (l *Ledger) RemoveEventListener(ctx context.Context, id string) error {
	l.counters.inc(MethodRemoveEventListener)

	l.lock.Lock()
	defer l.lock.Unlock()

	if _, ok := l.listeners[id]; !ok {
		return fmt.Errorf("listener %s not found", id)
	}
	delete(l.listeners, id)
	return nil
}

// NumOfListeners returns the number of registered event listeners.
func (l *Ledger) NumOfListeners() int {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return len(l.listeners)
}

// Balance returns the spendable balance of the wallet.
func (l *Ledger) Balance() uint64 {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.balance
}

// Emit delivers the given events to every listener, in order.
func (l *Ledger) Emit(events ...domain.Event) {
	l.emit(events...)
}

func (l *Ledger) emit(events ...domain.Event) {
	l.lock.Lock()
	l.publish(events...)
	l.lock.Unlock()

	l.flush()
}

// publish queues the events for delivery. It must be called with the lock
// held, in the same critical section of the state change they report.
func (l *Ledger) publish(events ...domain.Event) {
	l.outbox = append(l.outbox, events...)
}

// flush delivers the published events to the listeners in publishing order.
// Listeners must not call back into the ledger.
func (l *Ledger) flush() {
	l.emitLock.Lock()
	defer l.emitLock.Unlock()

	for {
		l.lock.Lock()
		events := l.outbox
		l.outbox = nil
		listeners := make([]ports.EventListener, 0, len(l.listeners))
		for _, listener := range l.listeners {
			listeners = append(listeners, listener)
		}
		l.lock.Unlock()

		if len(events) <= 0 {
			return
		}
		for _, event := range events {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
}

func (l *Ledger) requireConnected() error {
	l.lock.RLock()
	defer l.lock.RUnlock()

	if !l.connected {
		return domain.ErrNotConnected
	}
	return nil
}

// update applies fn to the stored payment and emits the event of its new
// state, if any.
func (l *Ledger) update(
	id string, fn func(p *domain.Payment) (domain.EventType, error),
) error {
	l.lock.Lock()
	p, ok := l.payments[id]
	if !ok {
		l.lock.Unlock()
		return domain.ErrPaymentNotFound
	}
	eventType, err := fn(p)
	if err != nil {
		l.lock.Unlock()
		return err
	}
	l.publish(domain.NewPaymentEvent(eventType, *p))
	l.lock.Unlock()

	l.flush()
	return nil
}
