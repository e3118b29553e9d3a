package secretstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/securestore"
	boltsecurestore "github.com/skibidicash/wallet-core/pkg/securestore/bolt"
)

const (
	secretStoreFilename = "secrets.db"
)

var (
	secretsBucket = []byte("wallet")

	// ErrMissingPassword ...
	ErrMissingPassword = errors.New("secret store password must not be empty")
)

// BoltSecretStore is a ports.SecretStore whose values are encrypted at rest
// into a bolt database.
type BoltSecretStore struct {
	store securestore.SecureStorage
}

// NewBoltSecretStore opens (or creates if not exists) the encrypted store in
// the given directory and unlocks it with the given password.
func NewBoltSecretStore(datadir, password string) (*BoltSecretStore, error) {
	if len(password) <= 0 {
		return nil, ErrMissingPassword
	}

	store, err := boltsecurestore.NewSecureStorage(datadir, secretStoreFilename)
	if err != nil {
		return nil, fmt.Errorf("opening secret store: %w", err)
	}

	pwd := []byte(password)
	if err := store.CreateUnlock(&pwd); err != nil {
		store.Close()
		return nil, fmt.Errorf("unlocking secret store: %w", err)
	}
	if err := store.CreateBucket(secretsBucket); err != nil {
		store.Close()
		return nil, fmt.Errorf("initializing secret store: %w", err)
	}

	return &BoltSecretStore{store}, nil
}

func (s *BoltSecretStore) Get(_ context.Context, key string) ([]byte, error) {
	value, err := s.store.GetFromBucket(secretsBucket, []byte(key))
	if err != nil {
		return nil, storageError(err)
	}
	return value, nil
}

func (s *BoltSecretStore) Set(_ context.Context, key string, value []byte) error {
	if err := s.store.AddToBucket(secretsBucket, []byte(key), value); err != nil {
		return storageError(err)
	}
	return nil
}

func (s *BoltSecretStore) Remove(_ context.Context, key string) error {
	if err := s.store.RemoveFromBucket(secretsBucket, []byte(key)); err != nil {
		return storageError(err)
	}
	return nil
}

// ChangePassword re-encrypts every secret with a key derived from the new
// password.
func (s *BoltSecretStore) ChangePassword(oldPassword, newPassword string) error {
	return s.store.ChangePassword([]byte(oldPassword), []byte(newPassword))
}

func (s *BoltSecretStore) Close() error {
	return s.store.Close()
}

func storageError(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrStorageUnavailable, err)
}

var _ ports.SecretStore = (*BoltSecretStore)(nil)
