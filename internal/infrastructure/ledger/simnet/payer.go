package simnet

import (
	"fmt"

	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

// NewRemoteInvoice returns an invoice issued by a node other than the
// wallet one, payable by the wallet.
func (l *Ledger) NewRemoteInvoice(amountSat *uint64, description string) (string, error) {
	l.lock.RLock()
	defer l.lock.RUnlock()

	if !l.connected {
		return "", domain.ErrNotConnected
	}

	invoice, _, err := newInvoice(l.remoteKey, l.network, l.clock.Now(), invoiceOpts{
		amountSat:   amountSat,
		description: description,
	})
	return invoice, err
}

// PayInvoice simulates an external payer paying an invoice issued by the
// wallet. It returns the id of the incoming payment.
func (l *Ledger) PayInvoice(invoice string) (string, error) {
	l.lock.Lock()
	if !l.connected {
		l.lock.Unlock()
		return "", domain.ErrNotConnected
	}

	params, _ := wallet.BitcoinParams(l.network.String())
	decoded, err := zpay32.Decode(invoice, params)
	if err != nil {
		l.lock.Unlock()
		return "", err
	}
	hash := fmt.Sprintf("%x", decoded.PaymentHash[:])

	issued, ok := l.invoices[hash]
	if !ok {
		l.lock.Unlock()
		return "", fmt.Errorf("invoice was not issued by this wallet")
	}
	if issued.paymentID != "" {
		l.lock.Unlock()
		return "", fmt.Errorf("invoice already paid")
	}

	p := domain.NewPayment(
		domain.PaymentTypeReceive, issued.amountSat, issued.feesSat, invoice,
		l.clock.Now().Unix(),
	)
	p.Description = issued.description
	issued.paymentID = p.ID
	l.payments[p.ID] = p
	payment := *p
	l.publish(domain.NewPaymentEvent(domain.EventPaymentPending, payment))
	l.lock.Unlock()

	l.flush()
	go l.autoSettle(payment.ID)
	return payment.ID, nil
}

// PayAddress simulates an external payer sending amountSat to an address
// issued by the wallet. The payment waits for confirmation before
// settling.
func (l *Ledger) PayAddress(addr string, amountSat uint64) (string, error) {
	l.lock.Lock()
	if !l.connected {
		l.lock.Unlock()
		return "", domain.ErrNotConnected
	}

	issued, ok := l.addresses[addr]
	if !ok {
		l.lock.Unlock()
		return "", fmt.Errorf("address was not issued by this wallet")
	}
	if issued.amountSat != nil && *issued.amountSat != amountSat {
		l.lock.Unlock()
		return "", fmt.Errorf(
			"address expects %d sats, got %d", *issued.amountSat, amountSat,
		)
	}

	fees := receiveFees(issued.method, amountSat)
	if fees > amountSat {
		l.lock.Unlock()
		return "", domain.ErrAmountOutOfRange
	}
	p := domain.NewPayment(
		domain.PaymentTypeReceive, amountSat, fees, addr, l.clock.Now().Unix(),
	)
	p.State = domain.PaymentStateWaitingConfirmation
	p.Description = issued.description
	p.TxID = randomTxID()
	l.payments[p.ID] = p
	payment := *p
	l.publish(domain.NewPaymentEvent(
		domain.EventPaymentWaitingConfirmation, payment,
	))
	l.lock.Unlock()

	l.flush()
	go l.autoSettle(payment.ID)
	return payment.ID, nil
}
