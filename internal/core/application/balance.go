package application

import (
	"context"
	"time"

	"github.com/skibidicash/wallet-core/internal/core/application/balance"
	"github.com/skibidicash/wallet-core/internal/core/domain"
)

type BalanceService interface {
	Refresh(ctx context.Context) (domain.WalletInfo, error)
	Current() domain.WalletInfo
	Formatted() balance.FormattedBalance
	Trigger()
	Wait()
	Reset()
}

func NewBalanceService(
	provider balance.BackendProvider, timeout time.Duration,
) (BalanceService, error) {
	return balance.NewCache(provider, timeout)
}
