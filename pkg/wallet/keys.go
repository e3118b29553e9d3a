package wallet

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/vulpemventures/go-elements/slip77"
)

// Purpose is the BIP43 purpose field of a derivation path. Keys derived for
// different purposes never collide because the purpose is a hardened step.
type Purpose uint32

const (
	// PurposePayment is BIP84, native segwit v0.
	PurposePayment Purpose = 84
	// PurposeCollectible is BIP86, taproot key-path only.
	PurposeCollectible Purpose = 86
)

func (p Purpose) String() string {
	switch p {
	case PurposePayment:
		return "payment"
	case PurposeCollectible:
		return "collectible"
	default:
		return "unknown"
	}
}

// DeriveKeyPairOpts is the struct given to DeriveKeyPair method
type DeriveKeyPairOpts struct {
	AccountIndex int
	Purpose      Purpose
	Network      string
}

func (o DeriveKeyPairOpts) validate() error {
	if err := validateAccountIndex(o.AccountIndex); err != nil {
		return err
	}
	if o.Purpose != PurposePayment && o.Purpose != PurposeCollectible {
		return ErrInvalidPurpose
	}
	if _, err := BitcoinParams(o.Network); err != nil {
		return err
	}
	return nil
}

// DeriveKeyPair derives the key pair of the first external key of the given
// account for the given purpose.
func (w *Wallet) DeriveKeyPair(opts DeriveKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	path := NewAccountDerivationPath(
		opts.Purpose, CoinType(opts.Network), uint32(opts.AccountIndex),
	)
	return w.DerivePathKeyPair(path, opts.Network)
}

// DerivePathKeyPair derives the key pair at an arbitrary absolute path.
func (w *Wallet) DerivePathKeyPair(path DerivationPath, net string) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if len(path) <= 0 {
		return nil, nil, ErrNullDerivationPath
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}

	hdNode, err := w.masterKey(net)
	if err != nil {
		return nil, nil, err
	}
	for _, step := range path {
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, nil, err
		}
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// DeriveBlindingKeyPairOpts is the struct given to DeriveBlindingKeyPair method
type DeriveBlindingKeyPairOpts struct {
	Script []byte
}

func (o DeriveBlindingKeyPairOpts) validate() error {
	if len(o.Script) <= 0 {
		return ErrNullOutputScript
	}
	return nil
}

// DeriveBlindingKeyPair derives the SLIP77 blinding key pair from the provided
// output script
func (w *Wallet) DeriveBlindingKeyPair(opts DeriveBlindingKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}
	slip77Node, err := slip77.FromMasterKey(w.blindingMasterKey)
	if err != nil {
		return nil, nil, err
	}
	return slip77Node.DeriveKey(opts.Script)
}

// Fingerprint returns the hex encoded first 4 bytes of HASH160 of the master
// public key.
func (w *Wallet) Fingerprint(net string) (string, error) {
	if err := w.validate(); err != nil {
		return "", err
	}
	master, err := w.masterKey(net)
	if err != nil {
		return "", err
	}
	pubkey, err := master.ECPubKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(btcutil.Hash160(pubkey.SerializeCompressed())[:4]), nil
}

func (w *Wallet) masterKey(net string) (*hdkeychain.ExtendedKey, error) {
	params, err := BitcoinParams(net)
	if err != nil {
		return nil, err
	}
	return hdkeychain.NewMaster(w.seed, params)
}

func validateAccountIndex(index int) error {
	if index < 0 || int64(index) > int64(MaxHardenedValue) {
		return ErrInvalidIndex
	}
	return nil
}
