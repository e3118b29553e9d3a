package session

import "github.com/skibidicash/wallet-core/internal/core/domain"

// ConnectError is returned when the handshake with the ledger backend fails.
// The session is left in ErrorBackoff.
type ConnectError struct {
	Err       error
	retryable bool
}

func newConnectError(err error) *ConnectError {
	err = domain.MapTimeout(err)
	return &ConnectError{
		Err:       err,
		retryable: domain.IsRetryable(err),
	}
}

func (e *ConnectError) Error() string {
	return "failed to connect to ledger backend: " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Retryable returns whether connecting again may succeed without changing
// the connect options, like after a timeout or a network failure.
func (e *ConnectError) Retryable() bool {
	return e.retryable
}
