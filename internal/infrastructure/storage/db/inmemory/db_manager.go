package inmemory

import (
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
)

type RepoManager struct {
	paymentRepository domain.PaymentRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		paymentRepository: NewPaymentRepositoryImpl(),
	}
}

func (d *RepoManager) PaymentRepository() domain.PaymentRepository {
	return d.paymentRepository
}

func (d *RepoManager) Close() {}
