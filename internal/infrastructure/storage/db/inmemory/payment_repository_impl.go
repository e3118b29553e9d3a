package inmemory

import (
	"context"
	"sync"

	"github.com/skibidicash/wallet-core/internal/core/domain"
)

type paymentInmemoryStore struct {
	payments map[string]domain.Payment
	locker   *sync.RWMutex
}

type PaymentRepositoryImpl struct {
	store *paymentInmemoryStore
}

// NewPaymentRepositoryImpl returns a new empty PaymentRepositoryImpl
func NewPaymentRepositoryImpl() domain.PaymentRepository {
	return &PaymentRepositoryImpl{
		store: &paymentInmemoryStore{
			payments: map[string]domain.Payment{},
			locker:   &sync.RWMutex{},
		},
	}
}

func (r PaymentRepositoryImpl) AddPayment(
	_ context.Context, payment domain.Payment,
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	if _, ok := r.store.payments[payment.ID]; !ok {
		r.store.payments[payment.ID] = payment
	}
	return nil
}

func (r PaymentRepositoryImpl) GetPayment(
	_ context.Context, id string,
) (*domain.Payment, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	payment, ok := r.store.payments[id]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	return &payment, nil
}

func (r PaymentRepositoryImpl) ListPayments(
	_ context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	r.store.locker.RLock()
	defer r.store.locker.RUnlock()

	payments := make([]domain.Payment, 0, len(r.store.payments))
	for _, p := range r.store.payments {
		payments = append(payments, p)
	}

	return filter.Apply(payments), nil
}

func (r PaymentRepositoryImpl) UpdatePayment(
	_ context.Context,
	id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	payment, ok := r.store.payments[id]
	if !ok {
		return domain.ErrPaymentNotFound
	}

	updatedPayment, err := updateFn(&payment)
	if err != nil {
		return err
	}

	r.store.payments[id] = *updatedPayment
	return nil
}

func (r PaymentRepositoryImpl) UpsertPayment(
	_ context.Context,
	id string,
	upsertFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	r.store.locker.Lock()
	defer r.store.locker.Unlock()

	var stored *domain.Payment
	if payment, ok := r.store.payments[id]; ok {
		stored = &payment
	}

	payment, err := upsertFn(stored)
	if err != nil {
		return err
	}

	r.store.payments[id] = *payment
	return nil
}
