package simnet

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/destination"
)

func (l *Ledger) PrepareSendPayment(
	ctx context.Context, dest destination.Destination, amountSat *uint64,
) (*domain.SendQuote, error) {
	l.counters.inc(MethodPrepareSend)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.lock.RLock()
	defer l.lock.RUnlock()

	if !l.connected {
		return nil, domain.ErrNotConnected
	}
	return l.quote(dest, amountSat)
}

func (l *Ledger) SendPayment(
	ctx context.Context, prepared domain.PreparedSend,
) (*domain.Payment, error) {
	l.counters.inc(MethodSend)

	if err := l.faults.sendError(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.lock.Lock()
	if !l.connected {
		l.lock.Unlock()
		return nil, domain.ErrNotConnected
	}

	dest := prepared.Destination
	quote, err := l.quote(dest, &prepared.AmountSat)
	if err != nil {
		l.lock.Unlock()
		return nil, err
	}
	if dest.Kind == destination.KindBolt11 {
		if !dest.ExpiresAt.IsZero() && !l.clock.Now().Before(dest.ExpiresAt) {
			l.lock.Unlock()
			return nil, domain.ErrInvoiceExpired
		}
		if _, ok := l.paidHash[dest.PaymentHash]; ok {
			l.lock.Unlock()
			return nil, fmt.Errorf("%w: invoice already paid", domain.ErrPaymentRejected)
		}
		l.paidHash[dest.PaymentHash] = struct{}{}
	}

	p := &domain.Payment{
		ID:          prepared.ID,
		Type:        domain.PaymentTypeSend,
		AmountSat:   quote.AmountSat,
		FeesSat:     quote.FeesSat,
		State:       domain.PaymentStatePending,
		Timestamp:   l.clock.Now().Unix(),
		Destination: dest.Address,
		Description: dest.Description,
	}
	if !dest.Kind.IsLightning() {
		p.TxID = randomTxID()
	}
	l.balance -= quote.AmountSat + quote.FeesSat
	l.payments[p.ID] = p
	payment := *p
	l.publish(domain.NewPaymentEvent(domain.EventPaymentPending, payment))
	l.lock.Unlock()

	l.flush()
	go l.autoSettle(payment.ID)

	return &payment, nil
}

// quote must be called with the lock held.
func (l *Ledger) quote(
	dest destination.Destination, amountSat *uint64,
) (*domain.SendQuote, error) {
	if dest.Network != "" && dest.Network != l.network.String() {
		return nil, domain.ErrNetworkMismatch
	}

	var amount uint64
	switch {
	case amountSat != nil && *amountSat > 0:
		amount = *amountSat
	case dest.HasAmount():
		amount = *dest.AmountSat
	default:
		return nil, domain.ErrAmountRequired
	}

	method := methodForKind(dest.Kind)
	if limits := limitsForMethod(method); !limits.Send.Contains(amount) {
		return nil, domain.ErrAmountOutOfRange
	}

	fees := sendFees(method, amount)
	if amount+fees > l.balance {
		return nil, domain.ErrInsufficientBalance
	}
	return &domain.SendQuote{AmountSat: amount, FeesSat: fees}, nil
}

// SettlePayment completes the given pending payment.
func (l *Ledger) SettlePayment(id string) error {
	return l.update(id, func(p *domain.Payment) (domain.EventType, error) {
		if !p.IsPending() {
			return 0, domain.ErrPaymentFinalized
		}
		p.State = domain.PaymentStateComplete
		if p.Type == domain.PaymentTypeReceive {
			l.balance += p.AmountSat - p.FeesSat
		}
		return domain.EventPaymentSucceeded, nil
	})
}

// FailPayment fails the given pending payment, giving back the funds of a
// send.
func (l *Ledger) FailPayment(id string) error {
	return l.update(id, func(p *domain.Payment) (domain.EventType, error) {
		if !p.IsPending() {
			return 0, domain.ErrPaymentFinalized
		}
		p.State = domain.PaymentStateFailed
		if p.Type == domain.PaymentTypeSend {
			l.balance += p.AmountSat + p.FeesSat
		}
		return domain.EventPaymentFailed, nil
	})
}

func (l *Ledger) autoSettle(id string) {
	if l.cfg.ManualSettlement {
		return
	}
	<-l.clock.TickAfter(l.cfg.SettleDelay)

	if err := l.SettlePayment(id); err != nil {
		log.WithError(err).Debugf("simnet: payment %s not settled", id)
	}
}
