package application

import (
	"context"

	"github.com/skibidicash/wallet-core/internal/core/application/keymanager"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

type KeyManagerService interface {
	GetOrCreateSeedPhrase(ctx context.Context) ([]string, error)
	ImportSeedPhrase(ctx context.Context, phrase string, confirmOverwrite bool) error
	HasSeed(ctx context.Context) (bool, error)
	ResetSeed(ctx context.Context, confirm bool) error
	DeriveAddresses(
		ctx context.Context, accountIndex int, network domain.Network,
	) (*wallet.AccountAddresses, error)
	ExportBackup(ctx context.Context, passphrase string) (*keymanager.Backup, error)
}

func NewKeyManagerService(
	store ports.SecretStore, entropySize int,
) (KeyManagerService, error) {
	return keymanager.NewService(store, entropySize)
}
