package ports

import "github.com/skibidicash/wallet-core/internal/core/domain"

// RepoManager interface defines the methods to access the local payment
// history.
type RepoManager interface {
	PaymentRepository() domain.PaymentRepository
	Close()
}
