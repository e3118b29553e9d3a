package keymanager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

const (
	mnemonicKey = "mnemonic"
)

// Backup is the exportable form of the seed phrase. Words are numbered
// starting from 1. EncryptedMnemonic is set only if a passphrase was given.
type Backup struct {
	Words             []string
	EncryptedMnemonic string
}

// Service manages the lifecycle of the wallet seed phrase over a secret
// store. It never falls back to a well known phrase: without a stored seed
// the only ways forward are generating or importing one.
type Service struct {
	store       ports.SecretStore
	entropySize int

	lock *sync.Mutex
}

func NewService(store ports.SecretStore, entropySize int) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("missing secret store")
	}
	if entropySize != 0 &&
		(entropySize < 128 || entropySize > 256 || entropySize%32 != 0) {
		return nil, wallet.ErrInvalidEntropySize
	}

	return &Service{store, entropySize, &sync.Mutex{}}, nil
}

// GetOrCreateSeedPhrase returns the stored seed phrase, or generates and
// persists a new one if none exists. A generated phrase is returned only
// once it has been read back from the store.
func (s *Service) GetOrCreateSeedPhrase(ctx context.Context) ([]string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	mnemonic, err := s.readMnemonic(ctx)
	if err != nil {
		return nil, err
	}
	if mnemonic != nil {
		return mnemonic, nil
	}

	mnemonic, err = wallet.NewMnemonic(wallet.NewMnemonicOpts{
		EntropySize: s.entropySize,
	})
	if err != nil {
		return nil, err
	}

	if err := s.writeMnemonic(ctx, mnemonic); err != nil {
		return nil, err
	}

	stored, err := s.readMnemonic(ctx)
	if err != nil {
		return nil, err
	}
	if strings.Join(stored, " ") != strings.Join(mnemonic, " ") {
		return nil, fmt.Errorf(
			"%w: stored seed does not match generated one",
			domain.ErrStorageUnavailable,
		)
	}

	log.Debug("generated new seed phrase")
	return stored, nil
}

// ImportSeedPhrase replaces the stored seed with the given one. Replacing an
// existing seed requires confirmOverwrite to be set.
func (s *Service) ImportSeedPhrase(
	ctx context.Context, phrase string, confirmOverwrite bool,
) error {
	mnemonic := wallet.SplitMnemonic(phrase)
	if err := wallet.ValidateMnemonic(mnemonic); err != nil {
		return domain.ErrInvalidMnemonic
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	hasSeed, err := s.hasSeed(ctx)
	if err != nil {
		return err
	}
	if hasSeed && !confirmOverwrite {
		return domain.ErrOverwriteNotConfirmed
	}

	if err := s.writeMnemonic(ctx, mnemonic); err != nil {
		return err
	}

	log.Debug("imported seed phrase")
	return nil
}

// HasSeed returns whether a seed phrase is stored, regardless of its
// validity.
func (s *Service) HasSeed(ctx context.Context) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.hasSeed(ctx)
}

// ResetSeed removes the stored seed phrase. It requires confirm to be set if
// a seed exists.
func (s *Service) ResetSeed(ctx context.Context, confirm bool) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	hasSeed, err := s.hasSeed(ctx)
	if err != nil {
		return err
	}
	if !hasSeed {
		return nil
	}
	if !confirm {
		return domain.ErrOverwriteNotConfirmed
	}

	if err := s.store.Remove(ctx, mnemonicKey); err != nil {
		return storageError(err)
	}

	log.Debug("removed seed phrase")
	return nil
}

// Wallet returns the keychain of the stored seed phrase. It does not create
// a seed if missing.
func (s *Service) Wallet(ctx context.Context) (*wallet.Wallet, error) {
	s.lock.Lock()
	mnemonic, err := s.readMnemonic(ctx)
	s.lock.Unlock()
	if err != nil {
		return nil, err
	}
	if mnemonic == nil {
		return nil, ErrSeedNotFound
	}

	return wallet.NewWalletFromMnemonic(wallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
}

// DeriveAddresses derives the addresses of the given account for the
// stored seed.
func (s *Service) DeriveAddresses(
	ctx context.Context, accountIndex int, network domain.Network,
) (*wallet.AccountAddresses, error) {
	if accountIndex < 0 || accountIndex > wallet.MaxHardenedValue {
		return nil, domain.ErrInvalidIndex
	}
	if !network.IsValid() {
		return nil, domain.ErrInvalidNetwork
	}

	w, err := s.Wallet(ctx)
	if err != nil {
		return nil, err
	}

	addresses, err := w.DeriveAddresses(wallet.DeriveAddressesOpts{
		AccountIndex: accountIndex,
		Network:      network.String(),
	})
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidIndex) {
			return nil, domain.ErrInvalidIndex
		}
		return nil, err
	}
	return addresses, nil
}

// ExportBackup returns the numbered word list of the stored seed phrase,
// and its encrypted form if a passphrase is given.
func (s *Service) ExportBackup(
	ctx context.Context, passphrase string,
) (*Backup, error) {
	s.lock.Lock()
	mnemonic, err := s.readMnemonic(ctx)
	s.lock.Unlock()
	if err != nil {
		return nil, err
	}
	if mnemonic == nil {
		return nil, ErrSeedNotFound
	}

	words := make([]string, 0, len(mnemonic))
	for i, w := range mnemonic {
		words = append(words, fmt.Sprintf("%d. %s", i+1, w))
	}

	backup := &Backup{Words: words}
	if passphrase != "" {
		encrypted, err := wallet.Encrypt(wallet.EncryptOpts{
			PlainText:  strings.Join(mnemonic, " "),
			Passphrase: passphrase,
		})
		if err != nil {
			return nil, err
		}
		backup.EncryptedMnemonic = encrypted
	}
	return backup, nil
}

func (s *Service) hasSeed(ctx context.Context) (bool, error) {
	value, err := s.store.Get(ctx, mnemonicKey)
	if err != nil {
		return false, storageError(err)
	}
	return len(value) > 0, nil
}

// readMnemonic returns nil, nil if no seed is stored. A stored phrase
// failing validation is reported as ErrInvalidMnemonic and left untouched.
func (s *Service) readMnemonic(ctx context.Context) ([]string, error) {
	value, err := s.store.Get(ctx, mnemonicKey)
	if err != nil {
		return nil, storageError(err)
	}
	if len(value) <= 0 {
		return nil, nil
	}

	mnemonic := wallet.SplitMnemonic(string(value))
	if err := wallet.ValidateMnemonic(mnemonic); err != nil {
		return nil, domain.ErrInvalidMnemonic
	}
	return mnemonic, nil
}

func (s *Service) writeMnemonic(ctx context.Context, mnemonic []string) error {
	if err := s.store.Set(
		ctx, mnemonicKey, []byte(strings.Join(mnemonic, " ")),
	); err != nil {
		return storageError(err)
	}
	return nil
}

func storageError(err error) error {
	if errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, err)
}
