package domain

// AssetBalance is the balance of a single Liquid asset.
type AssetBalance struct {
	AssetID    string
	BalanceSat uint64
	Name       string
	Ticker     string
}

// WalletInfo is an immutable snapshot of the wallet state as reported by
// the ledger backend. A snapshot is always replaced as a whole.
type WalletInfo struct {
	BalanceSat        uint64
	PendingSendSat    uint64
	PendingReceiveSat uint64
	Fingerprint       string
	Pubkey            string
	AssetBalances     []AssetBalance
}

// Copy returns a deep copy of the snapshot.
func (i WalletInfo) Copy() WalletInfo {
	info := i
	if i.AssetBalances != nil {
		info.AssetBalances = make([]AssetBalance, len(i.AssetBalances))
		copy(info.AssetBalances, i.AssetBalances)
	}
	return info
}

// IsEmpty returns whether this is the zero-valued snapshot.
func (i WalletInfo) IsEmpty() bool {
	return i.BalanceSat == 0 && i.PendingSendSat == 0 &&
		i.PendingReceiveSat == 0 && i.Fingerprint == "" && i.Pubkey == "" &&
		len(i.AssetBalances) == 0
}
