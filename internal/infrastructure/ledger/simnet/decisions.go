package simnet

import (
	"context"
	"fmt"

	"github.com/skibidicash/wallet-core/internal/core/domain"
)

// MarkRefundable moves the given pending send to Refundable, as if the
// swap behind it failed.
func (l *Ledger) MarkRefundable(id string) error {
	return l.update(id, func(p *domain.Payment) (domain.EventType, error) {
		if !p.IsPending() {
			return 0, domain.ErrPaymentFinalized
		}
		p.State = domain.PaymentStateRefundable
		return domain.EventPaymentRefundable, nil
	})
}

// ProposeFees moves the given pending payment to WaitingFeeAcceptance with
// the given new fees.
func (l *Ledger) ProposeFees(id string, feesSat uint64) error {
	return l.update(id, func(p *domain.Payment) (domain.EventType, error) {
		if !p.IsPending() {
			return 0, domain.ErrPaymentFinalized
		}
		p.State = domain.PaymentStateWaitingFeeAcceptance
		l.proposed[id] = feesSat
		return domain.EventPaymentWaitingFeeAcceptance, nil
	})
}

func (l *Ledger) FetchPaymentProposedFees(
	ctx context.Context, paymentID string,
) (uint64, error) {
	if err := l.requireConnected(); err != nil {
		return 0, err
	}

	l.lock.RLock()
	defer l.lock.RUnlock()

	fees, ok := l.proposed[paymentID]
	if !ok {
		return 0, domain.ErrPaymentNotFound
	}
	return fees, nil
}

func (l *Ledger) AcceptPaymentProposedFees(
	ctx context.Context, paymentID string, feesSat uint64,
) error {
	if err := l.requireConnected(); err != nil {
		return err
	}

	if err := l.update(paymentID, func(p *domain.Payment) (domain.EventType, error) {
		proposed, ok := l.proposed[paymentID]
		if !ok || p.State != domain.PaymentStateWaitingFeeAcceptance {
			return 0, fmt.Errorf("no fees proposed for payment %s", paymentID)
		}
		if proposed != feesSat {
			return 0, fmt.Errorf(
				"accepted fees %d do not match proposed ones %d", feesSat, proposed,
			)
		}
		if p.Type == domain.PaymentTypeSend {
			if l.balance+p.FeesSat < feesSat {
				return 0, domain.ErrInsufficientBalance
			}
			l.balance = l.balance + p.FeesSat - feesSat
		}
		delete(l.proposed, paymentID)
		p.FeesSat = feesSat
		p.State = domain.PaymentStatePending
		return domain.EventPaymentPending, nil
	}); err != nil {
		return err
	}

	go l.autoSettle(paymentID)
	return nil
}

func (l *Ledger) Refund(ctx context.Context, req domain.RefundRequest) (string, error) {
	l.counters.inc(MethodRefund)

	if err := l.requireConnected(); err != nil {
		return "", err
	}
	if req.RefundAddress == "" {
		return "", fmt.Errorf("missing refund address")
	}

	txid := randomTxID()
	refundFees := onchainTxVSize * uint64(req.FeeRateSatPerVByte)
	if err := l.update(req.PaymentID, func(p *domain.Payment) (domain.EventType, error) {
		if p.State != domain.PaymentStateRefundable {
			return 0, fmt.Errorf("payment %s is not refundable", p.ID)
		}
		total := p.AmountSat + p.FeesSat
		if refundFees > total {
			return 0, fmt.Errorf("refund fees exceed refundable amount")
		}
		p.State = domain.PaymentStateFailed
		p.TxID = txid
		// the refund goes to an external address
		return domain.EventPaymentFailed, nil
	}); err != nil {
		return "", err
	}
	return txid, nil
}
