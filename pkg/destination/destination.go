// Package destination recognizes the payment targets a wallet can send to:
// BOLT11 invoices, BOLT12 offers, LNURL strings, Lightning addresses and
// Bitcoin or Liquid addresses, optionally wrapped in a BIP21-style URI.
package destination

import (
	"errors"
	"time"
)

var (
	// ErrUnsupportedDestination ...
	ErrUnsupportedDestination = errors.New("destination is not supported")
	// ErrNetworkMismatch ...
	ErrNetworkMismatch = errors.New("destination belongs to another network")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("destination carries an invalid amount")
)

// Kind is the type of a parsed destination.
type Kind int

const (
	KindUnknown Kind = iota
	KindBolt11
	KindBolt12Offer
	KindLnUrl
	KindLightningAddress
	KindBitcoinAddress
	KindLiquidAddress
)

func (k Kind) String() string {
	switch k {
	case KindBolt11:
		return "bolt11"
	case KindBolt12Offer:
		return "bolt12_offer"
	case KindLnUrl:
		return "lnurl"
	case KindLightningAddress:
		return "lightning_address"
	case KindBitcoinAddress:
		return "bitcoin_address"
	case KindLiquidAddress:
		return "liquid_address"
	default:
		return "unknown"
	}
}

// IsLightning returns whether the destination settles over Lightning.
func (k Kind) IsLightning() bool {
	switch k {
	case KindBolt11, KindBolt12Offer, KindLnUrl, KindLightningAddress:
		return true
	default:
		return false
	}
}

// Destination is the parsed form of a raw payment target.
type Destination struct {
	Kind Kind
	// Raw is the input as given by the caller.
	Raw string
	// Address is the bare target: the invoice, offer, lnurl, lightning
	// address or on-chain address without any URI decoration.
	Address string
	// AmountSat is set only when the destination embeds an amount.
	AmountSat   *uint64
	Description string
	// Network is empty when it cannot be inferred, like for lightning
	// addresses or bolt12 offers.
	Network string

	// Bolt11 only.
	PaymentHash string
	ExpiresAt   time.Time
}

// HasAmount returns whether the destination embeds a fixed amount.
func (d Destination) HasAmount() bool {
	return d.AmountSat != nil
}

// IsExpired returns whether the destination has an expiration that is
// already past at the given time.
func (d Destination) IsExpired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}
