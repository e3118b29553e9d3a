package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/vulpemventures/go-elements/payment"
)

// AccountAddresses groups the receiving addresses of a single account.
type AccountAddresses struct {
	AccountIndex int
	// PaymentAddress is P2WPKH at m/84'/coin'/index'/0/0.
	PaymentAddress string
	// CollectibleAddress is P2TR at m/86'/coin'/index'/0/0.
	CollectibleAddress string
	// LiquidAddress is the confidential P2WPKH of the payment key.
	LiquidAddress string
	PublicKey     string
	Fingerprint   string
}

// DeriveAddressesOpts is the struct given to DeriveAddresses method
type DeriveAddressesOpts struct {
	AccountIndex int
	Network      string
}

func (o DeriveAddressesOpts) validate() error {
	if err := validateAccountIndex(o.AccountIndex); err != nil {
		return err
	}
	if _, err := BitcoinParams(o.Network); err != nil {
		return err
	}
	return nil
}

// DeriveAddresses derives every address of the given account. The result is
// a pure function of seed, index and network.
func (w *Wallet) DeriveAddresses(opts DeriveAddressesOpts) (
	*AccountAddresses, error,
) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	params, _ := BitcoinParams(opts.Network)
	liquidNet, _ := LiquidParams(opts.Network)

	_, paymentKey, err := w.DeriveKeyPair(DeriveKeyPairOpts{
		AccountIndex: opts.AccountIndex,
		Purpose:      PurposePayment,
		Network:      opts.Network,
	})
	if err != nil {
		return nil, err
	}
	_, collectibleKey, err := w.DeriveKeyPair(DeriveKeyPairOpts{
		AccountIndex: opts.AccountIndex,
		Purpose:      PurposeCollectible,
		Network:      opts.Network,
	})
	if err != nil {
		return nil, err
	}

	p2wpkh, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(paymentKey.SerializeCompressed()), params,
	)
	if err != nil {
		return nil, err
	}

	outputKey := txscript.ComputeTaprootKeyNoScript(collectibleKey)
	p2tr, err := btcutil.NewAddressTaproot(
		schnorr.SerializePubKey(outputKey), params,
	)
	if err != nil {
		return nil, err
	}

	script := payment.FromPublicKey(paymentKey, liquidNet, nil).WitnessScript
	_, blindingKey, err := w.DeriveBlindingKeyPair(DeriveBlindingKeyPairOpts{
		Script: script,
	})
	if err != nil {
		return nil, err
	}
	liquidAddr, err := payment.FromPublicKey(
		paymentKey, liquidNet, blindingKey,
	).ConfidentialWitnessPubKeyHash()
	if err != nil {
		return nil, err
	}

	fingerprint, err := w.Fingerprint(opts.Network)
	if err != nil {
		return nil, err
	}

	return &AccountAddresses{
		AccountIndex:       opts.AccountIndex,
		PaymentAddress:     p2wpkh.EncodeAddress(),
		CollectibleAddress: p2tr.EncodeAddress(),
		LiquidAddress:      liquidAddr,
		PublicKey:          hex.EncodeToString(paymentKey.SerializeCompressed()),
		Fingerprint:        fingerprint,
	}, nil
}
