package receive_test

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/skibidicash/wallet-core/internal/core/application/receive"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testnetAddress = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"

var (
	ctx    = context.Background()
	limits = &domain.LimitsPair{
		Send:    domain.Limits{MinSat: 1000, MaxSat: 100000},
		Receive: domain.Limits{MinSat: 1000, MaxSat: 50000},
	}
)

func newTestService(t *testing.T) (*receive.Service, *mockSession, *mockLedgerBackend) {
	backend := &mockLedgerBackend{}
	session := &mockSession{
		backend: backend, network: domain.NetworkTestnet, connected: true,
	}
	svc, err := receive.NewService(session, time.Second)
	require.NoError(t, err)
	return svc, session, backend
}

func TestNewService(t *testing.T) {
	_, err := receive.NewService(nil, time.Second)
	require.Error(t, err)

	_, err = receive.NewService(&mockSession{}, 0)
	require.Error(t, err)
}

func TestPrepareReceive(t *testing.T) {
	tests := []struct {
		name        string
		method      domain.ReceiveMethod
		amount      *uint64
		expectedErr error
	}{
		{
			name:   "lightning",
			method: domain.ReceiveMethodLightning,
			amount: uint64Ptr(5000),
		},
		{
			name:        "lightning without amount",
			method:      domain.ReceiveMethodLightning,
			expectedErr: domain.ErrAmountRequired,
		},
		{
			name:        "lightning with zero amount",
			method:      domain.ReceiveMethodLightning,
			amount:      uint64Ptr(0),
			expectedErr: domain.ErrAmountRequired,
		},
		{
			name:        "below min",
			method:      domain.ReceiveMethodLightning,
			amount:      uint64Ptr(999),
			expectedErr: domain.ErrAmountOutOfRange,
		},
		{
			name:        "above max",
			method:      domain.ReceiveMethodOnchainAddress,
			amount:      uint64Ptr(50001),
			expectedErr: domain.ErrAmountOutOfRange,
		},
		{
			name:   "onchain open amount",
			method: domain.ReceiveMethodOnchainAddress,
		},
		{
			name:   "liquid with amount",
			method: domain.ReceiveMethodLiquidAddress,
			amount: uint64Ptr(50000),
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, _, backend := newTestService(t)
			prep := &domain.ReceivePreparation{
				Method: tt.method, AmountSat: tt.amount, FeesSat: 10,
				MinSat: limits.Receive.MinSat, MaxSat: limits.Receive.MaxSat,
			}
			backend.On("FetchLimits", mock.Anything, tt.method).Return(limits, nil)
			backend.On(
				"PrepareReceivePayment", mock.Anything, tt.method, tt.amount,
			).Return(prep, nil)

			got, err := svc.PrepareReceive(ctx, tt.method, tt.amount)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.Nil(t, got)
				backend.AssertNotCalled(
					t, "PrepareReceivePayment", mock.Anything, mock.Anything, mock.Anything,
				)
				return
			}

			require.NoError(t, err)
			require.Equal(t, prep, got)
			if tt.amount == nil {
				backend.AssertNotCalled(t, "FetchLimits", mock.Anything, mock.Anything)
			}
		})
	}

	t.Run("not connected", func(t *testing.T) {
		svc, session, _ := newTestService(t)
		session.connected = false

		_, err := svc.PrepareReceive(ctx, domain.ReceiveMethodLightning, uint64Ptr(5000))
		require.ErrorIs(t, err, domain.ErrNotConnected)
	})

	t.Run("backend timeout", func(t *testing.T) {
		svc, _, backend := newTestService(t)
		backend.On("FetchLimits", mock.Anything, mock.Anything).
			Return(nil, context.DeadlineExceeded)

		_, err := svc.PrepareReceive(ctx, domain.ReceiveMethodLightning, uint64Ptr(5000))
		require.ErrorIs(t, err, domain.ErrTimeout)
	})
}

func TestIssueLightning(t *testing.T) {
	prep := domain.ReceivePreparation{
		Method: domain.ReceiveMethodLightning, AmountSat: uint64Ptr(5000),
	}

	tests := []struct {
		name        string
		invoice     func(t *testing.T) string
		opts        receive.IssueOpts
		expectedErr error
	}{
		{
			name: "valid",
			invoice: func(t *testing.T) string {
				return newTestInvoice(t, uint64Ptr(5000), "coffee", false)
			},
			opts: receive.IssueOpts{Description: "coffee"},
		},
		{
			name: "valid with description hash",
			invoice: func(t *testing.T) string {
				return newTestInvoice(t, uint64Ptr(5000), "coffee", true)
			},
			opts: receive.IssueOpts{Description: "coffee", UseDescriptionHash: true},
		},
		{
			name: "wrong amount",
			invoice: func(t *testing.T) string {
				return newTestInvoice(t, uint64Ptr(4000), "coffee", false)
			},
			opts:        receive.IssueOpts{Description: "coffee"},
			expectedErr: domain.ErrPaymentRejected,
		},
		{
			name: "sub satoshi amount",
			invoice: func(t *testing.T) string {
				amount := lnwire.MilliSatoshi(5000500)
				return newTestInvoiceMSat(t, &amount, "coffee", false)
			},
			opts:        receive.IssueOpts{Description: "coffee"},
			expectedErr: domain.ErrPaymentRejected,
		},
		{
			name: "missing amount",
			invoice: func(t *testing.T) string {
				return newTestInvoice(t, nil, "coffee", false)
			},
			opts:        receive.IssueOpts{Description: "coffee"},
			expectedErr: domain.ErrPaymentRejected,
		},
		{
			name: "missing description hash",
			invoice: func(t *testing.T) string {
				return newTestInvoice(t, uint64Ptr(5000), "coffee", false)
			},
			opts:        receive.IssueOpts{Description: "coffee", UseDescriptionHash: true},
			expectedErr: domain.ErrPaymentRejected,
		},
		{
			name:        "not an invoice",
			invoice:     func(*testing.T) string { return testnetAddress },
			opts:        receive.IssueOpts{Description: "coffee"},
			expectedErr: domain.ErrPaymentRejected,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, _, backend := newTestService(t)
			req := &domain.ReceiveRequest{
				Destination: tt.invoice(t),
				AmountSat:   prep.AmountSat,
				Description: tt.opts.Description,
				Method:      domain.ReceiveMethodLightning,
			}
			backend.On(
				"ReceivePayment", mock.Anything, prep,
				tt.opts.Description, tt.opts.UseDescriptionHash,
			).Return(req, nil)

			got, err := svc.Issue(ctx, prep, tt.opts)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, req, got)
		})
	}
}

func TestIssueAddress(t *testing.T) {
	svc, session, backend := newTestService(t)
	prep := domain.ReceivePreparation{Method: domain.ReceiveMethodOnchainAddress}
	req := &domain.ReceiveRequest{
		Destination: testnetAddress, Method: domain.ReceiveMethodOnchainAddress,
	}
	backend.On("ReceivePayment", mock.Anything, prep, "", false).Return(req, nil)

	got, err := svc.Issue(ctx, prep, receive.IssueOpts{})
	require.NoError(t, err)
	require.Equal(t, testnetAddress, got.Destination)

	_, err = svc.Issue(ctx, prep, receive.IssueOpts{})
	require.ErrorIs(t, err, domain.ErrAddressReused)

	session.connected = false
	_, err = svc.Issue(ctx, prep, receive.IssueOpts{})
	require.ErrorIs(t, err, domain.ErrNotConnected)
}

func newTestInvoice(
	t *testing.T, amountSat *uint64, description string, useHash bool,
) string {
	if amountSat == nil {
		return newTestInvoiceMSat(t, nil, description, useHash)
	}
	amount := lnwire.NewMSatFromSatoshis(btcutil.Amount(*amountSat))
	return newTestInvoiceMSat(t, &amount, description, useHash)
}

func newTestInvoiceMSat(
	t *testing.T, amount *lnwire.MilliSatoshi, description string, useHash bool,
) string {
	key, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	var paymentHash, paymentAddr [32]byte
	_, err = rand.Read(paymentHash[:])
	require.NoError(t, err)
	_, err = rand.Read(paymentAddr[:])
	require.NoError(t, err)

	opts := []func(*zpay32.Invoice){
		zpay32.PaymentAddr(paymentAddr),
		zpay32.Expiry(time.Hour),
	}
	if useHash {
		opts = append(opts, zpay32.DescriptionHash(sha256.Sum256([]byte(description))))
	} else {
		opts = append(opts, zpay32.Description(description))
	}
	if amount != nil {
		opts = append(opts, zpay32.Amount(*amount))
	}

	invoice, err := zpay32.NewInvoice(
		&chaincfg.TestNet3Params, paymentHash, time.Now(), opts...,
	)
	require.NoError(t, err)

	encoded, err := invoice.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			return ecdsa.SignCompact(key, chainhash.HashB(msg), true), nil
		},
	})
	require.NoError(t, err)
	return encoded
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
