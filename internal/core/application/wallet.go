package application

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/application/session"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

// Wallet is the root of the application. It owns every service and drives
// the session with the seed held by the secret store.
type Wallet struct {
	cfg *Config
}

func NewWallet(cfg *Config) (*Wallet, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Wallet{cfg}, nil
}

// Connect opens the session with the ledger backend using the stored seed,
// generating one on first use, and schedules a balance refresh.
func (w *Wallet) Connect(ctx context.Context) error {
	mnemonic, err := w.cfg.KeyManagerService().GetOrCreateSeedPhrase(ctx)
	if err != nil {
		return err
	}

	if err := w.cfg.SessionService().Connect(ctx, session.ConnectOpts{
		Mnemonic: mnemonic,
		Network:  w.cfg.Network,
		APIKey:   w.cfg.APIKey,
	}); err != nil {
		return err
	}

	w.cfg.BalanceService().Trigger()
	return nil
}

// Disconnect closes the session and drops the cached balance.
func (w *Wallet) Disconnect(ctx context.Context) error {
	if err := w.cfg.SessionService().Disconnect(ctx); err != nil {
		return err
	}
	w.cfg.BalanceService().Reset()
	return nil
}

func (w *Wallet) Reconnect(ctx context.Context) error {
	if err := w.cfg.SessionService().Reconnect(ctx); err != nil {
		return err
	}
	w.cfg.BalanceService().Trigger()
	return nil
}

// Close disconnects the session and releases the payment history db.
func (w *Wallet) Close(ctx context.Context) {
	if err := w.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("failed to disconnect wallet")
	}
	w.cfg.RepoManager().Close()

	if closer, ok := w.cfg.SecretStore.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("failed to close secret store")
		}
	}
}

// AccountAddresses derives the addresses of the given account for the
// network of the wallet.
func (w *Wallet) AccountAddresses(
	ctx context.Context, accountIndex int,
) (*wallet.AccountAddresses, error) {
	return w.cfg.KeyManagerService().DeriveAddresses(
		ctx, accountIndex, w.cfg.Network,
	)
}

func (w *Wallet) KeyManager() KeyManagerService {
	return w.cfg.KeyManagerService()
}

func (w *Wallet) Session() SessionService {
	return w.cfg.SessionService()
}

func (w *Wallet) Balance() BalanceService {
	return w.cfg.BalanceService()
}

func (w *Wallet) Payments() PaymentService {
	return w.cfg.PaymentService()
}

func (w *Wallet) Receive() ReceiveService {
	return w.cfg.ReceiveService()
}

func (w *Wallet) Decisions() DispatcherService {
	return w.cfg.DispatcherService()
}
