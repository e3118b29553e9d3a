package wallet

import (
	"errors"
)

var (
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed must not be null")
	// ErrNullBlindingMasterKey ...
	ErrNullBlindingMasterKey = errors.New("blinding master key must not be null")
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic must not be null")
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidIndex ...
	ErrInvalidIndex = errors.New(
		"account index must be in range [0, 2147483647]",
	)
	// ErrInvalidPurpose ...
	ErrInvalidPurpose = errors.New("purpose must be either payment or collectible")
	// ErrInvalidNetwork ...
	ErrInvalidNetwork = errors.New(
		"network must be one of mainnet, testnet or regtest",
	)
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = errors.New("passphrase is wrong or cypher is corrupted")
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullOutputScript ...
	ErrNullOutputScript = errors.New("output script must not be null")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
)

// Wallet holds a BIP39 mnemonic together with the seed and the SLIP-77
// master blinding key it generates. Signing keys are never cached: every
// derivation starts again from the seed.
type Wallet struct {
	mnemonic          []string
	seed              []byte
	blindingMasterKey []byte
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	EntropySize int
}

// NewWallet creates a wallet from a freshly generated mnemonic.
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	mnemonic, err := NewMnemonic(NewMnemonicOpts{EntropySize: opts.EntropySize})
	if err != nil {
		return nil, err
	}
	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{Mnemonic: mnemonic})
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic
// method
type NewWalletFromMnemonicOpts struct {
	Mnemonic []string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	return ValidateMnemonic(o.Mnemonic)
}

// NewWalletFromMnemonic restores a wallet from the given mnemonic.
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := generateSeedFromMnemonic(opts.Mnemonic)
	blindingMasterKey, err := generateBlindingMasterKey(seed)
	if err != nil {
		return nil, err
	}

	mnemonic := make([]string, len(opts.Mnemonic))
	copy(mnemonic, opts.Mnemonic)

	return &Wallet{
		mnemonic:          mnemonic,
		seed:              seed,
		blindingMasterKey: blindingMasterKey,
	}, nil
}

func (w *Wallet) validate() error {
	if len(w.seed) <= 0 {
		return ErrNullSeed
	}
	if len(w.blindingMasterKey) <= 0 {
		return ErrNullBlindingMasterKey
	}
	return nil
}

// Mnemonic is getter for the wallet mnemonic
func (w *Wallet) Mnemonic() ([]string, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	mnemonic := make([]string, len(w.mnemonic))
	copy(mnemonic, w.mnemonic)
	return mnemonic, nil
}
