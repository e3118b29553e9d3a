package dbbadger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v3"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// maxConflictRetries bounds the attempts of a read-modify-write transaction
// conflicting with a concurrent one.
const maxConflictRetries = 5

type paymentRepositoryImpl struct {
	store *badgerhold.Store
}

// NewPaymentRepositoryImpl initialize a badger implementation of the
// domain.PaymentRepository
func NewPaymentRepositoryImpl(store *badgerhold.Store) domain.PaymentRepository {
	return paymentRepositoryImpl{store}
}

func (r paymentRepositoryImpl) AddPayment(
	ctx context.Context, payment domain.Payment,
) error {
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxInsert(tx, payment.ID, &payment)
	} else {
		err = r.store.Insert(payment.ID, &payment)
	}
	if err != nil && err != badgerhold.ErrKeyExists {
		return err
	}
	return nil
}

func (r paymentRepositoryImpl) GetPayment(
	ctx context.Context, id string,
) (*domain.Payment, error) {
	var payment domain.Payment
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, id, &payment)
	} else {
		err = r.store.Get(id, &payment)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	return &payment, nil
}

func (r paymentRepositoryImpl) ListPayments(
	ctx context.Context, filter domain.PaymentFilter,
) ([]domain.Payment, error) {
	query := filterToQuery(filter)

	var payments []domain.Payment
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &payments, query)
	} else {
		err = r.store.Find(&payments, query)
	}
	if err != nil {
		return nil, err
	}
	if payments == nil {
		payments = make([]domain.Payment, 0)
	}

	return payments, nil
}

func (r paymentRepositoryImpl) UpdatePayment(
	ctx context.Context,
	id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.updatePayment(tx, id, updateFn)
	}

	return r.store.Badger().Update(func(tx *badger.Txn) error {
		return r.updatePayment(tx, id, updateFn)
	})
}

func (r paymentRepositoryImpl) updatePayment(
	tx *badger.Txn,
	id string,
	updateFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	var payment domain.Payment
	if err := r.store.TxGet(tx, id, &payment); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return domain.ErrPaymentNotFound
		}
		return err
	}

	updatedPayment, err := updateFn(&payment)
	if err != nil {
		return err
	}

	return r.store.TxUpdate(tx, id, *updatedPayment)
}

func (r paymentRepositoryImpl) UpsertPayment(
	ctx context.Context,
	id string,
	upsertFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.upsertPayment(tx, id, upsertFn)
	}

	var err error
	for i := 0; i < maxConflictRetries; i++ {
		err = r.store.Badger().Update(func(tx *badger.Txn) error {
			return r.upsertPayment(tx, id, upsertFn)
		})
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

func (r paymentRepositoryImpl) upsertPayment(
	tx *badger.Txn,
	id string,
	upsertFn func(p *domain.Payment) (*domain.Payment, error),
) error {
	var payment domain.Payment
	var stored *domain.Payment
	if err := r.store.TxGet(tx, id, &payment); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			return err
		}
	} else {
		stored = &payment
	}

	upserted, err := upsertFn(stored)
	if err != nil {
		return err
	}

	if stored == nil {
		return r.store.TxInsert(tx, id, upserted)
	}
	return r.store.TxUpdate(tx, id, *upserted)
}

func filterToQuery(filter domain.PaymentFilter) *badgerhold.Query {
	var query *badgerhold.Query
	where := func(field string) *badgerhold.Criterion {
		if query == nil {
			return badgerhold.Where(field)
		}
		return query.And(field)
	}

	if len(filter.Types) > 0 {
		types := make([]interface{}, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, t)
		}
		query = where("Type").In(types...)
	}
	if len(filter.States) > 0 {
		states := make([]interface{}, 0, len(filter.States))
		for _, s := range filter.States {
			states = append(states, s)
		}
		query = where("State").In(states...)
	}
	if filter.FromTimestamp > 0 {
		query = where("Timestamp").Ge(filter.FromTimestamp)
	}
	if filter.ToTimestamp > 0 {
		query = where("Timestamp").Le(filter.ToTimestamp)
	}
	if query == nil {
		query = &badgerhold.Query{}
	}

	query.SortBy("Timestamp")
	if !filter.SortAscending {
		query.Reverse()
	}

	page := filter.GetPage()
	query.Skip(page.Offset()).Limit(page.Size)

	return query
}
