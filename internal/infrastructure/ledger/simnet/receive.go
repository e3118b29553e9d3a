package simnet

import (
	"context"
	"fmt"

	"github.com/skibidicash/wallet-core/internal/core/domain"
)

type issuedInvoice struct {
	invoice     string
	amountSat   uint64
	feesSat     uint64
	description string
	paymentID   string
}

type issuedAddress struct {
	method      domain.ReceiveMethod
	amountSat   *uint64
	description string
}

func (l *Ledger) PrepareReceivePayment(
	ctx context.Context, method domain.ReceiveMethod, amountSat *uint64,
) (*domain.ReceivePreparation, error) {
	l.counters.inc(MethodPrepareReceive)

	if err := l.requireConnected(); err != nil {
		return nil, err
	}

	limits := limitsForMethod(method)
	if method == domain.ReceiveMethodLightning && amountSat == nil {
		return nil, domain.ErrAmountRequired
	}

	var amount uint64
	if amountSat != nil {
		amount = *amountSat
		if !limits.Receive.Contains(amount) {
			return nil, domain.ErrAmountOutOfRange
		}
	}

	return &domain.ReceivePreparation{
		Method:    method,
		AmountSat: amountSat,
		FeesSat:   receiveFees(method, amount),
		MinSat:    limits.Receive.MinSat,
		MaxSat:    limits.Receive.MaxSat,
	}, nil
}

func (l *Ledger) ReceivePayment(
	ctx context.Context, prep domain.ReceivePreparation,
	description string, useDescriptionHash bool,
) (*domain.ReceiveRequest, error) {
	l.counters.inc(MethodReceive)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	if !l.connected {
		return nil, domain.ErrNotConnected
	}

	req := &domain.ReceiveRequest{
		AmountSat:   prep.AmountSat,
		Description: description,
		Method:      prep.Method,
		FeesSat:     prep.FeesSat,
	}

	switch prep.Method {
	case domain.ReceiveMethodLightning:
		if prep.AmountSat == nil {
			return nil, domain.ErrAmountRequired
		}
		invoice, hash, err := newInvoice(l.nodeKey, l.network, l.clock.Now(), invoiceOpts{
			amountSat:          prep.AmountSat,
			description:        description,
			useDescriptionHash: useDescriptionHash,
		})
		if err != nil {
			return nil, err
		}
		l.invoices[hash] = &issuedInvoice{
			invoice:     invoice,
			amountSat:   *prep.AmountSat,
			feesSat:     prep.FeesSat,
			description: description,
		}
		req.Destination = invoice

	case domain.ReceiveMethodOnchainAddress, domain.ReceiveMethodLiquidAddress:
		index := l.nextIndex
		var (
			addr string
			err  error
		)
		if prep.Method == domain.ReceiveMethodOnchainAddress {
			addr, err = freshBitcoinAddress(l.wallet, l.network, index)
		} else {
			addr, err = freshLiquidAddress(l.wallet, l.network, index)
		}
		if err != nil {
			return nil, err
		}
		l.nextIndex++
		l.addresses[addr] = &issuedAddress{
			method:      prep.Method,
			amountSat:   prep.AmountSat,
			description: description,
		}
		req.Destination = addr

	default:
		return nil, fmt.Errorf("unknown receive method %d", prep.Method)
	}

	return req, nil
}
