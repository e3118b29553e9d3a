package wallet

import "strings"

type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	return generateMnemonic(opts.EntropySize)
}

// ValidateMnemonic checks word list and checksum of the given mnemonic.
func ValidateMnemonic(mnemonic []string) error {
	if len(mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !isMnemonicValid(mnemonic) {
		return ErrInvalidMnemonic
	}
	return nil
}

// NewSeed returns the 64-byte BIP39 seed of the given mnemonic, with empty
// passphrase.
func NewSeed(mnemonic []string) ([]byte, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	return generateSeedFromMnemonic(mnemonic), nil
}

// SplitMnemonic normalizes a space separated phrase into its words.
func SplitMnemonic(phrase string) []string {
	return strings.Fields(strings.ToLower(phrase))
}
