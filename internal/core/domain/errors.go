package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidMnemonic is returned when a seed phrase fails word list or
	// checksum validation, including one already held by the secret store.
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidIndex ...
	ErrInvalidIndex = errors.New("account index must not be negative")
	// ErrInvalidNetwork ...
	ErrInvalidNetwork = errors.New("network must be one of mainnet, testnet, regtest")
	// ErrStorageUnavailable is returned when the secret store can not be read
	// or written.
	ErrStorageUnavailable = errors.New("secret storage is unavailable")
	// ErrOverwriteNotConfirmed is returned when importing or resetting a seed
	// would replace an existing one without explicit confirmation.
	ErrOverwriteNotConfirmed = errors.New(
		"a seed already exists, overwriting it requires explicit confirmation",
	)

	// ErrNotConnected ...
	ErrNotConnected = errors.New("wallet session is not connected")
	// ErrConnectInProgress ...
	ErrConnectInProgress = errors.New("wallet session is connecting")
	// ErrNetworkMismatch is returned when connecting an already connected
	// session to another network, or paying a destination of another network.
	ErrNetworkMismatch = errors.New("network does not match the session one")
	// ErrUnauthorized is returned by the backend when the credentials are
	// rejected.
	ErrUnauthorized = errors.New("backend rejected the credentials")

	// ErrUnsupportedDestination ...
	ErrUnsupportedDestination = errors.New("destination is not supported")
	// ErrAmountRequired ...
	ErrAmountRequired = errors.New("amount is required")
	// ErrAmbiguousAmount is returned when the amount given for a send
	// conflicts with the one embedded in the destination.
	ErrAmbiguousAmount = errors.New(
		"amount conflicts with the one embedded in the destination",
	)
	// ErrAmountOutOfRange ...
	ErrAmountOutOfRange = errors.New("amount is out of the allowed range")
	// ErrInsufficientBalance is advisory, computed against the cached balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrStalePreparedSend is returned when a prepared send has already been
	// executed, has expired or was never issued by this wallet.
	ErrStalePreparedSend = errors.New("prepared send is stale, prepare it again")
	// ErrInvoiceExpired ...
	ErrInvoiceExpired = errors.New("invoice is expired")
	// ErrAddressReused is returned when the backend hands out an address that
	// was already issued for a previous receive request.
	ErrAddressReused = errors.New("backend returned an already issued address")

	// ErrNetworkUnavailable ...
	ErrNetworkUnavailable = errors.New("network is unavailable")
	// ErrPaymentRejected ...
	ErrPaymentRejected = errors.New("payment rejected")
	// ErrTimeout ...
	ErrTimeout = errors.New("operation timed out")
	// ErrSyncFailed is never returned to send or receive callers, only logged.
	ErrSyncFailed = errors.New("sync failed")

	// ErrPaymentNotFound ...
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentFinalized is returned when trying to move a Complete or Failed
	// payment to another state.
	ErrPaymentFinalized = errors.New("payment is already finalized")
	// ErrPaymentStateRegression is returned when a payment waiting for a
	// refund or a fee acceptance is observed in an earlier state.
	ErrPaymentStateRegression = errors.New(
		"payment is waiting for a decision and can not go back to an earlier state",
	)
	// ErrDecisionNotFound ...
	ErrDecisionNotFound = errors.New("pending decision not found")
)

// IsRetryable returns whether the error describes a transient condition
// that may succeed if the same operation is attempted again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetworkUnavailable)
}

// MapTimeout reports a context deadline hit while waiting for the ledger
// backend as ErrTimeout. Any other error is returned as is.
func MapTimeout(err error) error {
	if err == nil || errors.Is(err, ErrTimeout) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrTimeout, err)
	}
	return err
}
