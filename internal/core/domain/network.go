package domain

// Network selects the chain the wallet operates on.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkTestnet Network = "testnet"
	NetworkRegtest Network = "regtest"
)

// ParseNetwork ...
func ParseNetwork(net string) (Network, error) {
	n := Network(net)
	if !n.IsValid() {
		return "", ErrInvalidNetwork
	}
	return n, nil
}

// IsValid ...
func (n Network) IsValid() bool {
	switch n {
	case NetworkMainnet, NetworkTestnet, NetworkRegtest:
		return true
	default:
		return false
	}
}

func (n Network) String() string {
	return string(n)
}
