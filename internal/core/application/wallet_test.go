package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skibidicash/wallet-core/internal/core/application"
	"github.com/skibidicash/wallet-core/internal/core/application/receive"
	"github.com/skibidicash/wallet-core/internal/core/application/session"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/infrastructure/ledger/simnet"
	"github.com/skibidicash/wallet-core/internal/infrastructure/secretstore/inmemory"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic = "abandon abandon abandon abandon abandon abandon " +
		"abandon abandon abandon abandon abandon about"
	otherMnemonic = "legal winner thank year wave sausage worth useful " +
		"legal winner thank yellow"
	initialBalance = 1_000_000
	refundAddress  = "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
)

var ctx = context.Background()

func newTestConfig(ledger *simnet.Ledger) *application.Config {
	return &application.Config{
		DBType:           application.DBInMemory,
		SecretStore:      inmemory.NewSecretStore(),
		LedgerBackend:    ledger,
		Network:          domain.NetworkTestnet,
		OperationTimeout: 5 * time.Second,
		PreparedSendTTL:  time.Minute,
	}
}

func newTestWallet(
	t *testing.T, ledgerCfg simnet.Config,
) (*application.Wallet, *simnet.Ledger) {
	if ledgerCfg.InitialBalanceSat == 0 {
		ledgerCfg.InitialBalanceSat = initialBalance
	}
	ledger, err := simnet.NewLedger(ledgerCfg)
	require.NoError(t, err)

	w, err := application.NewWallet(newTestConfig(ledger))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close(context.Background()) })

	return w, ledger
}

func TestNewWallet(t *testing.T) {
	ledger, err := simnet.NewLedger(simnet.Config{})
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(cfg *application.Config)
	}{
		{"missing secret store", func(c *application.Config) { c.SecretStore = nil }},
		{"missing ledger backend", func(c *application.Config) { c.LedgerBackend = nil }},
		{"invalid network", func(c *application.Config) { c.Network = "signet" }},
		{"mainnet without api key", func(c *application.Config) { c.Network = domain.NetworkMainnet }},
		{"unknown db type", func(c *application.Config) { c.DBType = "postgres" }},
		{"badger without datadir", func(c *application.Config) { c.DBType = application.DBBadger }},
		{"zero timeout", func(c *application.Config) { c.OperationTimeout = 0 }},
		{"zero ttl", func(c *application.Config) { c.PreparedSendTTL = 0 }},
		{"invalid entropy size", func(c *application.Config) { c.EntropySize = 100 }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(ledger)
			tt.mutate(cfg)
			_, err := application.NewWallet(cfg)
			require.Error(t, err)
		})
	}

	t.Run("badger", func(t *testing.T) {
		cfg := newTestConfig(ledger)
		cfg.DBType = application.DBBadger
		cfg.DBConfig = t.TempDir()

		w, err := application.NewWallet(cfg)
		require.NoError(t, err)
		w.Close(ctx)
	})
}

// Scenario A: a new seed derives distinct and reproducible addresses.
func TestDeriveAccountAddresses(t *testing.T) {
	w, _ := newTestWallet(t, simnet.Config{})

	hasSeed, err := w.KeyManager().HasSeed(ctx)
	require.NoError(t, err)
	require.False(t, hasSeed)

	_, err = w.AccountAddresses(ctx, 0)
	require.Error(t, err)

	mnemonic, err := w.KeyManager().GetOrCreateSeedPhrase(ctx)
	require.NoError(t, err)
	require.Len(t, mnemonic, 12)

	first, err := w.AccountAddresses(ctx, 0)
	require.NoError(t, err)
	second, err := w.AccountAddresses(ctx, 1)
	require.NoError(t, err)

	require.NotEqual(t, first.PaymentAddress, second.PaymentAddress)
	require.NotEqual(t, first.CollectibleAddress, second.CollectibleAddress)
	require.NotEqual(t, first.PaymentAddress, first.CollectibleAddress)

	again, err := w.AccountAddresses(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, first, again)

	_, err = w.AccountAddresses(ctx, -1)
	require.ErrorIs(t, err, domain.ErrInvalidIndex)
}

func TestConnect(t *testing.T) {
	t.Run("generates seed and refreshes balance", func(t *testing.T) {
		w, ledger := newTestWallet(t, simnet.Config{})

		require.NoError(t, w.Connect(ctx))
		require.Equal(t, domain.SessionStateConnected, w.Session().State())
		require.Equal(t, 1, ledger.NumOfListeners())

		hasSeed, err := w.KeyManager().HasSeed(ctx)
		require.NoError(t, err)
		require.True(t, hasSeed)

		w.Balance().Wait()
		require.Equal(t, uint64(initialBalance), w.Balance().Current().BalanceSat)
		require.Equal(t, "0.01000000", w.Balance().Formatted().Balance)

		require.NoError(t, w.Connect(ctx))
		require.Equal(t, 1, ledger.Calls(simnet.MethodConnect))
	})

	t.Run("imported seed", func(t *testing.T) {
		w, _ := newTestWallet(t, simnet.Config{})

		require.NoError(t, w.KeyManager().ImportSeedPhrase(ctx, testMnemonic, false))
		require.NoError(t, w.Connect(ctx))

		w.Balance().Wait()
		require.Equal(t, "73c5da0a", w.Balance().Current().Fingerprint)
	})

	t.Run("retryable failure", func(t *testing.T) {
		w, ledger := newTestWallet(t, simnet.Config{})
		ledger.FailConnect(domain.ErrNetworkUnavailable)

		err := w.Connect(ctx)
		require.Error(t, err)
		var connectErr *session.ConnectError
		require.True(t, errors.As(err, &connectErr))
		require.True(t, connectErr.Retryable())
		require.Equal(t, domain.SessionStateErrorBackoff, w.Session().State())

		ledger.FailConnect(nil)
		require.NoError(t, w.Reconnect(ctx))
		require.Equal(t, domain.SessionStateConnected, w.Session().State())
		require.Equal(t, 1, ledger.NumOfListeners())
	})

	t.Run("disconnect and reconnect", func(t *testing.T) {
		w, ledger := newTestWallet(t, simnet.Config{})

		require.NoError(t, w.Connect(ctx))
		w.Balance().Wait()

		require.NoError(t, w.Disconnect(ctx))
		require.NoError(t, w.Disconnect(ctx))
		require.Equal(t, domain.SessionStateDisconnected, w.Session().State())
		require.Zero(t, ledger.NumOfListeners())
		require.True(t, w.Balance().Current().IsEmpty())

		_, err := w.Payments().PrepareSend(ctx, refundAddress, uint64Ptr(30000))
		require.ErrorIs(t, err, domain.ErrNotConnected)

		require.NoError(t, w.Reconnect(ctx))
		require.Equal(t, 1, ledger.NumOfListeners())
		w.Balance().Wait()
		require.Equal(t, uint64(initialBalance), w.Balance().Current().BalanceSat)
	})
}

// Scenario B: paying a fixed amount invoice records one payment that
// moves from Pending to Complete.
func TestSendInvoice(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{})
	require.NoError(t, w.Connect(ctx))
	w.Balance().Wait()

	amount := uint64(10000)
	invoice, err := ledger.NewRemoteInvoice(&amount, "coffee")
	require.NoError(t, err)

	prepared, err := w.Payments().PrepareSend(ctx, invoice, nil)
	require.NoError(t, err)
	require.Equal(t, amount, prepared.AmountSat)

	payment, err := w.Payments().ExecuteSend(ctx, *prepared)
	require.NoError(t, err)
	require.Equal(t, amount, payment.AmountSat)
	require.GreaterOrEqual(t, payment.FeesSat, uint64(0))
	require.Equal(t, domain.PaymentStatePending, payment.State)

	require.Eventually(t, func() bool {
		p, err := w.Payments().GetPayment(ctx, payment.ID)
		return err == nil && p.State == domain.PaymentStateComplete
	}, 2*time.Second, 10*time.Millisecond)

	payments, err := w.Payments().LocalPayments(ctx, domain.PaymentFilter{})
	require.NoError(t, err)
	require.Len(t, payments, 1)

	_, err = w.Payments().ExecuteSend(ctx, *prepared)
	require.ErrorIs(t, err, domain.ErrStalePreparedSend)

	require.Eventually(t, func() bool {
		return w.Balance().Current().BalanceSat ==
			initialBalance-payment.AmountSat-payment.FeesSat
	}, 2*time.Second, 10*time.Millisecond)
}

// Scenario C: a lightning receive request is issued for the given amount.
func TestReceiveLightning(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{})
	require.NoError(t, w.Connect(ctx))

	amount := uint64(5000)
	prep, err := w.Receive().PrepareReceive(ctx, domain.ReceiveMethodLightning, &amount)
	require.NoError(t, err)

	req, err := w.Receive().Issue(ctx, *prep, receive.IssueOpts{Description: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, req.Destination)
	require.Equal(t, domain.ReceiveMethodLightning, req.Method)

	id, err := ledger.PayInvoice(req.Destination)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		p, err := w.Payments().GetPayment(ctx, id)
		return err == nil && p.State == domain.PaymentStateComplete
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReceiveAddresses(t *testing.T) {
	w, _ := newTestWallet(t, simnet.Config{})
	require.NoError(t, w.Connect(ctx))

	seen := make(map[string]struct{})
	for _, method := range []domain.ReceiveMethod{
		domain.ReceiveMethodOnchainAddress, domain.ReceiveMethodLiquidAddress,
		domain.ReceiveMethodOnchainAddress, domain.ReceiveMethodLiquidAddress,
	} {
		prep, err := w.Receive().PrepareReceive(ctx, method, nil)
		require.NoError(t, err)
		req, err := w.Receive().Issue(ctx, *prep, receive.IssueOpts{})
		require.NoError(t, err)
		require.NotContains(t, seen, req.Destination)
		seen[req.Destination] = struct{}{}
	}
}

// Scenario D: failure events arriving while a refresh is running result in
// a single trailing refresh.
func TestFailureEventsCoalesceRefresh(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{ManualSettlement: true})
	require.NoError(t, w.Connect(ctx))
	w.Balance().Wait()

	prepared, err := w.Payments().PrepareSend(ctx, "satoshi@example.com", uint64Ptr(20000))
	require.NoError(t, err)
	payment, err := w.Payments().ExecuteSend(ctx, *prepared)
	require.NoError(t, err)

	// let the pending event go through the dispatcher
	time.Sleep(100 * time.Millisecond)
	w.Balance().Wait()
	require.Equal(t, uint64(initialBalance-20020), w.Balance().Current().BalanceSat)

	release := ledger.BlockGetInfo()
	defer release()
	base := ledger.Calls(simnet.MethodGetInfo)

	w.Balance().Trigger()
	require.Eventually(t, func() bool {
		return ledger.Calls(simnet.MethodGetInfo) == base+1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, ledger.FailPayment(payment.ID))
	failed, err := w.Payments().GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	failed.State = domain.PaymentStateFailed
	ledger.Emit(domain.NewPaymentEvent(domain.EventPaymentFailed, *failed))

	require.Eventually(t, func() bool {
		p, err := w.Payments().GetPayment(ctx, payment.ID)
		return err == nil && p.State == domain.PaymentStateFailed
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	release()
	w.Balance().Wait()

	require.Equal(t, base+2, ledger.Calls(simnet.MethodGetInfo))
	require.Equal(t, uint64(initialBalance), w.Balance().Current().BalanceSat)
}

func TestPendingDecisions(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{ManualSettlement: true})
	require.NoError(t, w.Connect(ctx))

	send := func() *domain.Payment {
		prepared, err := w.Payments().PrepareSend(
			ctx, "satoshi@example.com", uint64Ptr(20000),
		)
		require.NoError(t, err)
		payment, err := w.Payments().ExecuteSend(ctx, *prepared)
		require.NoError(t, err)
		return payment
	}

	refundable := send()
	waitingFees := send()
	require.NoError(t, ledger.MarkRefundable(refundable.ID))
	require.NoError(t, ledger.ProposeFees(waitingFees.ID, 50))

	require.Eventually(t, func() bool {
		return len(w.Decisions().PendingDecisions()) == 2
	}, time.Second, 10*time.Millisecond)

	_, err := w.Decisions().ResolveRefund(ctx, waitingFees.ID, refundAddress, 2)
	require.ErrorIs(t, err, domain.ErrDecisionNotFound)

	txid, err := w.Decisions().ResolveRefund(ctx, refundable.ID, refundAddress, 2)
	require.NoError(t, err)
	require.NotEmpty(t, txid)

	require.NoError(t, w.Decisions().AcceptFees(ctx, waitingFees.ID))
	require.Empty(t, w.Decisions().PendingDecisions())

	require.Eventually(t, func() bool {
		p, err := w.Payments().GetPayment(ctx, refundable.ID)
		return err == nil && p.State == domain.PaymentStateFailed
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, ledger.SettlePayment(waitingFees.ID))
	require.Eventually(t, func() bool {
		p, err := w.Payments().GetPayment(ctx, waitingFees.ID)
		return err == nil && p.State == domain.PaymentStateComplete &&
			p.FeesSat == 50
	}, time.Second, 10*time.Millisecond)
}

func TestRefundableSendKeepsDecision(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{ManualSettlement: true})
	require.NoError(t, w.Connect(ctx))

	prepared, err := w.Payments().PrepareSend(
		ctx, "satoshi@example.com", uint64Ptr(20000),
	)
	require.NoError(t, err)
	payment, err := w.Payments().ExecuteSend(ctx, *prepared)
	require.NoError(t, err)
	require.NoError(t, ledger.MarkRefundable(payment.ID))

	require.Eventually(t, func() bool {
		return len(w.Decisions().PendingDecisions()) == 1
	}, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	decisions := w.Decisions().PendingDecisions()
	require.Len(t, decisions, 1)
	require.Equal(t, domain.DecisionRefund, decisions[0].Kind)

	stored, err := w.Payments().GetPayment(ctx, payment.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentStateRefundable, stored.State)
}

func TestDecisionsDoNotOutliveSession(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{ManualSettlement: true})
	require.NoError(t, w.KeyManager().ImportSeedPhrase(ctx, testMnemonic, false))
	require.NoError(t, w.Connect(ctx))

	prepared, err := w.Payments().PrepareSend(
		ctx, "satoshi@example.com", uint64Ptr(20000),
	)
	require.NoError(t, err)
	payment, err := w.Payments().ExecuteSend(ctx, *prepared)
	require.NoError(t, err)
	require.NoError(t, ledger.MarkRefundable(payment.ID))
	require.Eventually(t, func() bool {
		return len(w.Decisions().PendingDecisions()) == 1
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, w.Disconnect(ctx))
	require.Empty(t, w.Decisions().PendingDecisions())

	require.NoError(t, w.KeyManager().ImportSeedPhrase(ctx, otherMnemonic, true))
	require.NoError(t, w.Connect(ctx))
	w.Balance().Wait()
	require.Empty(t, w.Decisions().PendingDecisions())
}

func TestDisconnectDuringRefresh(t *testing.T) {
	w, ledger := newTestWallet(t, simnet.Config{})
	require.NoError(t, w.Connect(ctx))
	w.Balance().Wait()

	release := ledger.BlockGetInfo()
	defer release()
	base := ledger.Calls(simnet.MethodGetInfo)

	w.Balance().Trigger()
	require.Eventually(t, func() bool {
		return ledger.Calls(simnet.MethodGetInfo) == base+1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Disconnect(ctx))
	release()
	w.Balance().Wait()

	require.True(t, w.Balance().Current().IsEmpty())
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
