package domain

// SessionState is the state of the connection to the ledger backend.
type SessionState int

const (
	SessionStateDisconnected SessionState = iota
	SessionStateConnecting
	SessionStateConnected
	SessionStateErrorBackoff
)

func (s SessionState) String() string {
	switch s {
	case SessionStateDisconnected:
		return "Disconnected"
	case SessionStateConnecting:
		return "Connecting"
	case SessionStateConnected:
		return "Connected"
	case SessionStateErrorBackoff:
		return "ErrorBackoff"
	default:
		return "Unknown"
	}
}
