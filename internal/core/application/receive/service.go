package receive

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/wallet"
)

// Session gives access to the connected ledger backend.
type Session interface {
	Backend() (ports.LedgerBackend, error)
	Network() (domain.Network, error)
}

// IssueOpts ...
type IssueOpts struct {
	Description string
	// UseDescriptionHash commits to the description hash instead of the
	// description itself, Lightning only.
	UseDescriptionHash bool
}

// Service issues the invoices and addresses the wallet can be paid to.
type Service struct {
	session Session
	timeout time.Duration

	lock      *sync.Mutex
	addresses map[string]struct{}
}

func NewService(session Session, timeout time.Duration) (*Service, error) {
	if session == nil {
		return nil, fmt.Errorf("missing session")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("operation timeout must be a positive duration")
	}
	return &Service{
		session:   session,
		timeout:   timeout,
		lock:      &sync.Mutex{},
		addresses: make(map[string]struct{}),
	}, nil
}

// PrepareReceive checks the amount against the limits of the method and
// returns the fees the payer will be charged. Lightning receives require an
// amount, on-chain ones accept an open amount.
func (s *Service) PrepareReceive(
	ctx context.Context, method domain.ReceiveMethod, amountSat *uint64,
) (*domain.ReceivePreparation, error) {
	if method == domain.ReceiveMethodLightning &&
		(amountSat == nil || *amountSat == 0) {
		return nil, domain.ErrAmountRequired
	}

	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if amountSat != nil {
		limits, err := backend.FetchLimits(ctx, method)
		if err != nil {
			return nil, domain.MapTimeout(err)
		}
		if !limits.Receive.Contains(*amountSat) {
			return nil, fmt.Errorf(
				"%w: %d sats is not within [%d, %d]", domain.ErrAmountOutOfRange,
				*amountSat, limits.Receive.MinSat, limits.Receive.MaxSat,
			)
		}
	}

	prep, err := backend.PrepareReceivePayment(ctx, method, amountSat)
	if err != nil {
		return nil, domain.MapTimeout(err)
	}
	return prep, nil
}

// Issue asks the backend for the invoice or address of the given prepared
// receive. An address is never handed out twice.
func (s *Service) Issue(
	ctx context.Context, prep domain.ReceivePreparation, opts IssueOpts,
) (*domain.ReceiveRequest, error) {
	backend, err := s.session.Backend()
	if err != nil {
		return nil, err
	}
	net, err := s.session.Network()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := backend.ReceivePayment(
		ctx, prep, opts.Description, opts.UseDescriptionHash,
	)
	if err != nil {
		return nil, domain.MapTimeout(err)
	}

	if prep.Method == domain.ReceiveMethodLightning {
		if err := checkInvoice(*req, prep, net, opts); err != nil {
			return nil, err
		}
		return req, nil
	}

	if err := s.markIssued(req.Destination); err != nil {
		return nil, err
	}
	log.Debugf("issued %s %s", prep.Method, req.Destination)
	return req, nil
}

func (s *Service) markIssued(addr string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.addresses[addr]; ok {
		return fmt.Errorf("%w: %s", domain.ErrAddressReused, addr)
	}
	s.addresses[addr] = struct{}{}
	return nil
}

// checkInvoice decodes the invoice returned by the backend to make sure it
// requests what was prepared.
func checkInvoice(
	req domain.ReceiveRequest, prep domain.ReceivePreparation,
	net domain.Network, opts IssueOpts,
) error {
	params, err := wallet.BitcoinParams(net.String())
	if err != nil {
		return err
	}

	invoice, err := zpay32.Decode(req.Destination, params)
	if err != nil {
		return fmt.Errorf("%w: invalid invoice: %s", domain.ErrPaymentRejected, err)
	}

	if invoice.MilliSat == nil {
		return fmt.Errorf(
			"%w: invoice does not embed an amount", domain.ErrPaymentRejected,
		)
	}
	if *invoice.MilliSat%1000 != 0 {
		return fmt.Errorf(
			"%w: invoice amount of %d msat is not a whole number of sats",
			domain.ErrPaymentRejected, *invoice.MilliSat,
		)
	}
	if prep.AmountSat != nil {
		expected := lnwire.NewMSatFromSatoshis(btcutil.Amount(*prep.AmountSat))
		if *invoice.MilliSat != expected {
			return fmt.Errorf(
				"%w: invoice requests %d msat instead of %d",
				domain.ErrPaymentRejected, *invoice.MilliSat, expected,
			)
		}
	}

	if opts.UseDescriptionHash {
		hash := sha256.Sum256([]byte(opts.Description))
		if invoice.DescriptionHash == nil || *invoice.DescriptionHash != hash {
			return fmt.Errorf(
				"%w: invoice does not commit to the description hash",
				domain.ErrPaymentRejected,
			)
		}
	}
	return nil
}
