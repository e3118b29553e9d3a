package destination

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/skibidicash/wallet-core/pkg/mathutil"
	"github.com/skibidicash/wallet-core/pkg/wallet"
	"github.com/vulpemventures/go-elements/address"
	"github.com/vulpemventures/go-elements/network"
)

const (
	lightningScheme     = "lightning:"
	bitcoinScheme       = "bitcoin:"
	liquidScheme        = "liquidnetwork:"
	liquidTestnetScheme = "liquidtestnet:"

	bolt12OfferPrefix = "lno1"
	lnurlPrefix       = "lnurl1"
	lnurlHRP          = "lnurl"
)

var (
	lightningAddressRegexp = regexp.MustCompile(
		`^[a-z0-9\-_.+]+@[a-z0-9\-]+(\.[a-z0-9\-]+)+$`,
	)

	allNetworks = []string{
		wallet.NetworkMainnet, wallet.NetworkTestnet, wallet.NetworkRegtest,
	}
)

// Parse recognizes the kind of the raw destination. When net is not empty,
// destinations bound to a different network are rejected with
// ErrNetworkMismatch.
func Parse(raw, net string) (*Destination, error) {
	s := strings.TrimSpace(raw)
	if len(s) <= 0 {
		return nil, ErrUnsupportedDestination
	}
	if net != "" {
		if _, err := wallet.BitcoinParams(net); err != nil {
			return nil, err
		}
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, lightningScheme) {
		s = s[len(lightningScheme):]
		lower = lower[len(lightningScheme):]
	}

	var (
		dest *Destination
		err  error
	)
	switch {
	case strings.HasPrefix(lower, bolt12OfferPrefix):
		dest = &Destination{Kind: KindBolt12Offer, Address: lower}
	case strings.HasPrefix(lower, lnurlPrefix):
		dest, err = parseLnUrl(lower)
	case strings.Contains(lower, "@"):
		dest, err = parseLightningAddress(lower)
	case strings.HasPrefix(lower, "ln"):
		dest, err = parseBolt11(lower, net)
	case strings.HasPrefix(lower, bitcoinScheme):
		dest, err = parseURI(s[len(bitcoinScheme):], net, parseBitcoinAddress)
	case strings.HasPrefix(lower, liquidScheme):
		dest, err = parseURI(s[len(liquidScheme):], net, parseLiquidAddress)
	case strings.HasPrefix(lower, liquidTestnetScheme):
		dest, err = parseURI(s[len(liquidTestnetScheme):], net, parseLiquidAddress)
	default:
		dest, err = parseAddress(s, net)
	}
	if err != nil {
		return nil, err
	}

	dest.Raw = raw
	return dest, nil
}

func parseLnUrl(s string) (*Destination, error) {
	hrp, _, err := bech32.DecodeNoLimit(s)
	if err != nil || hrp != lnurlHRP {
		return nil, ErrUnsupportedDestination
	}
	return &Destination{Kind: KindLnUrl, Address: s}, nil
}

func parseLightningAddress(s string) (*Destination, error) {
	if !lightningAddressRegexp.MatchString(s) {
		return nil, ErrUnsupportedDestination
	}
	return &Destination{Kind: KindLightningAddress, Address: s}, nil
}

func parseBolt11(s, net string) (*Destination, error) {
	var lastErr error
	for _, candidate := range candidateNetworks(net) {
		params, _ := wallet.BitcoinParams(candidate)
		invoice, err := zpay32.Decode(s, params)
		if err != nil {
			lastErr = err
			continue
		}
		if net != "" && candidate != net {
			return nil, ErrNetworkMismatch
		}

		dest := &Destination{
			Kind:      KindBolt11,
			Address:   s,
			Network:   candidate,
			ExpiresAt: invoice.Timestamp.Add(invoice.Expiry()),
		}
		if invoice.MilliSat != nil {
			if *invoice.MilliSat%1000 != 0 {
				return nil, fmt.Errorf(
					"%w: %d msat is not a whole number of sats",
					ErrInvalidAmount, *invoice.MilliSat,
				)
			}
			amount := uint64(invoice.MilliSat.ToSatoshis())
			dest.AmountSat = &amount
		}
		if invoice.Description != nil {
			dest.Description = *invoice.Description
		}
		if invoice.PaymentHash != nil {
			dest.PaymentHash = hex.EncodeToString(invoice.PaymentHash[:])
		}
		return dest, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedDestination, lastErr)
}

func parseAddress(s, net string) (*Destination, error) {
	dest, err := parseBitcoinAddress(s, net)
	if err == nil || errors.Is(err, ErrNetworkMismatch) {
		return dest, err
	}
	return parseLiquidAddress(s, net)
}

func parseBitcoinAddress(s, net string) (*Destination, error) {
	// bech32 addresses may be uppercase, as in QR codes.
	if strings.ToUpper(s) == s {
		s = strings.ToLower(s)
	}
	for _, candidate := range candidateNetworks(net) {
		params, _ := wallet.BitcoinParams(candidate)
		addr, err := btcutil.DecodeAddress(s, params)
		if err != nil || !addr.IsForNet(params) {
			continue
		}
		if net != "" && candidate != net {
			return nil, ErrNetworkMismatch
		}
		return &Destination{
			Kind:    KindBitcoinAddress,
			Address: addr.EncodeAddress(),
			Network: candidate,
		}, nil
	}
	return nil, ErrUnsupportedDestination
}

func parseLiquidAddress(s, net string) (*Destination, error) {
	liquidNet, err := address.NetworkForAddress(s)
	if err != nil {
		return nil, ErrUnsupportedDestination
	}
	if _, err := address.ToOutputScript(s); err != nil {
		return nil, ErrUnsupportedDestination
	}
	name := liquidNetworkName(liquidNet)
	if name == "" {
		return nil, ErrUnsupportedDestination
	}
	if net != "" && name != net {
		return nil, ErrNetworkMismatch
	}
	return &Destination{
		Kind:    KindLiquidAddress,
		Address: s,
		Network: name,
	}, nil
}

// parseURI handles the BIP21 query string shared by bitcoin: and liquid
// URIs. Amounts are denominated in BTC.
func parseURI(
	s, net string, parseFn func(string, string) (*Destination, error),
) (*Destination, error) {
	addr, query, _ := strings.Cut(s, "?")
	dest, err := parseFn(addr, net)
	if err != nil {
		return nil, err
	}

	values, err := url.ParseQuery(query)
	if err != nil {
		return nil, ErrUnsupportedDestination
	}
	for key := range values {
		if strings.HasPrefix(key, "req-") {
			return nil, ErrUnsupportedDestination
		}
	}

	if amount := values.Get("amount"); amount != "" {
		sats, err := mathutil.BTCToSats(amount)
		if err != nil {
			return nil, ErrInvalidAmount
		}
		dest.AmountSat = &sats
	}
	dest.Description = values.Get("message")
	if dest.Description == "" {
		dest.Description = values.Get("label")
	}
	return dest, nil
}

func candidateNetworks(net string) []string {
	if net == "" {
		return allNetworks
	}
	candidates := []string{net}
	for _, n := range allNetworks {
		if n != net {
			candidates = append(candidates, n)
		}
	}
	return candidates
}

func liquidNetworkName(n *network.Network) string {
	switch n.Bech32 {
	case network.Liquid.Bech32:
		return wallet.NetworkMainnet
	case network.Testnet.Bech32:
		return wallet.NetworkTestnet
	case network.Regtest.Bech32:
		return wallet.NetworkRegtest
	default:
		return ""
	}
}
