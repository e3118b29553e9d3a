package wallet

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/vulpemventures/go-elements/network"
)

const (
	NetworkMainnet = "mainnet"
	NetworkTestnet = "testnet"
	NetworkRegtest = "regtest"
)

// BitcoinParams returns the btcd chain params for the given network name.
func BitcoinParams(net string) (*chaincfg.Params, error) {
	switch net {
	case NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	case NetworkRegtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, ErrInvalidNetwork
	}
}

// LiquidParams returns the go-elements network for the given network name.
func LiquidParams(net string) (*network.Network, error) {
	switch net {
	case NetworkMainnet:
		return &network.Liquid, nil
	case NetworkTestnet:
		return &network.Testnet, nil
	case NetworkRegtest:
		return &network.Regtest, nil
	default:
		return nil, ErrInvalidNetwork
	}
}

// CoinType is the BIP44 coin type: 0 for mainnet, 1 for every test network.
func CoinType(net string) uint32 {
	if net == NetworkMainnet {
		return 0
	}
	return 1
}
