package simnet

import (
	"crypto/rand"
	"crypto/sha256"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/lntypes"
	"github.com/lightningnetwork/lnd/lnwire"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/pkg/wallet"
	"github.com/vulpemventures/go-elements/payment"
)

const (
	// BIP43 purpose of the lightning node identity key.
	nodeKeyPurpose = 1017
	nodeKeyFamily  = 6
	invoiceExpiry  = time.Hour
)

// deriveNodeKey derives the key signing the invoices of the wallet at
// m/1017'/coin'/6'/0/0.
func deriveNodeKey(w *wallet.Wallet, net domain.Network) (*btcec.PrivateKey, error) {
	path := wallet.DerivationPath{
		hdkeychain.HardenedKeyStart + nodeKeyPurpose,
		hdkeychain.HardenedKeyStart + wallet.CoinType(net.String()),
		hdkeychain.HardenedKeyStart + nodeKeyFamily,
		0, 0,
	}
	key, _, err := w.DerivePathKeyPair(path, net.String())
	return key, err
}

type invoiceOpts struct {
	amountSat          *uint64
	description        string
	useDescriptionHash bool
}

// newInvoice returns the encoded invoice signed with key along with its
// payment hash.
func newInvoice(
	key *btcec.PrivateKey, net domain.Network, now time.Time, opts invoiceOpts,
) (string, string, error) {
	params, err := wallet.BitcoinParams(net.String())
	if err != nil {
		return "", "", err
	}

	var preimage lntypes.Preimage
	if _, err := rand.Read(preimage[:]); err != nil {
		return "", "", err
	}
	var paymentAddr [32]byte
	if _, err := rand.Read(paymentAddr[:]); err != nil {
		return "", "", err
	}
	paymentHash := preimage.Hash()

	options := []func(*zpay32.Invoice){
		zpay32.PaymentAddr(paymentAddr),
		zpay32.Expiry(invoiceExpiry),
	}
	if opts.useDescriptionHash {
		options = append(options, zpay32.DescriptionHash(
			sha256.Sum256([]byte(opts.description)),
		))
	} else {
		options = append(options, zpay32.Description(opts.description))
	}
	if opts.amountSat != nil {
		options = append(options, zpay32.Amount(
			lnwire.NewMSatFromSatoshis(btcutil.Amount(*opts.amountSat)),
		))
	}

	invoice, err := zpay32.NewInvoice(params, paymentHash, now, options...)
	if err != nil {
		return "", "", err
	}

	encoded, err := invoice.Encode(zpay32.MessageSigner{
		SignCompact: func(msg []byte) ([]byte, error) {
			return ecdsa.SignCompact(key, chainhash.HashB(msg), true), nil
		},
	})
	if err != nil {
		return "", "", err
	}
	return encoded, paymentHash.String(), nil
}

// freshBitcoinAddress returns the P2WPKH address at m/84'/coin'/0'/0/index.
func freshBitcoinAddress(
	w *wallet.Wallet, net domain.Network, index uint32,
) (string, error) {
	_, pubkey, err := w.DerivePathKeyPair(receivePath(net, index), net.String())
	if err != nil {
		return "", err
	}
	params, _ := wallet.BitcoinParams(net.String())

	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), params,
	)
	if err != nil {
		return "", err
	}
	return addr.EncodeAddress(), nil
}

// freshLiquidAddress returns the confidential P2WPKH address of the key at
// m/84'/coin'/0'/0/index, blinded with its SLIP77 blinding key.
func freshLiquidAddress(
	w *wallet.Wallet, net domain.Network, index uint32,
) (string, error) {
	_, pubkey, err := w.DerivePathKeyPair(receivePath(net, index), net.String())
	if err != nil {
		return "", err
	}
	liquidNet, _ := wallet.LiquidParams(net.String())

	script := payment.FromPublicKey(pubkey, liquidNet, nil).WitnessScript
	_, blindingKey, err := w.DeriveBlindingKeyPair(wallet.DeriveBlindingKeyPairOpts{
		Script: script,
	})
	if err != nil {
		return "", err
	}
	return payment.FromPublicKey(
		pubkey, liquidNet, blindingKey,
	).ConfidentialWitnessPubKeyHash()
}

func receivePath(net domain.Network, index uint32) wallet.DerivationPath {
	return wallet.DerivationPath{
		hdkeychain.HardenedKeyStart + uint32(wallet.PurposePayment),
		hdkeychain.HardenedKeyStart + wallet.CoinType(net.String()),
		hdkeychain.HardenedKeyStart,
		0, index,
	}
}

func randomTxID() string {
	var b [32]byte
	_, _ = rand.Read(b[:])
	return chainhash.Hash(b).String()
}
