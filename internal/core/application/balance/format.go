package balance

import "github.com/skibidicash/wallet-core/pkg/mathutil"

// FormattedAsset is an asset balance ready to be displayed.
type FormattedAsset struct {
	AssetID string
	Name    string
	Ticker  string
	Amount  string
}

// FormattedBalance is the current snapshot with amounts expressed both in
// satoshis and in bitcoin with 8 decimal places.
type FormattedBalance struct {
	BalanceSat        uint64
	Balance           string
	PendingSendSat    uint64
	PendingSend       string
	PendingReceiveSat uint64
	PendingReceive    string
	Assets            []FormattedAsset
}

// Formatted returns the current snapshot ready to be displayed.
func (c *Cache) Formatted() FormattedBalance {
	info := c.Current()

	assets := make([]FormattedAsset, 0, len(info.AssetBalances))
	for _, a := range info.AssetBalances {
		assets = append(assets, FormattedAsset{
			AssetID: a.AssetID,
			Name:    a.Name,
			Ticker:  a.Ticker,
			Amount:  mathutil.SatsToBTC(a.BalanceSat),
		})
	}

	return FormattedBalance{
		BalanceSat:        info.BalanceSat,
		Balance:           mathutil.SatsToBTC(info.BalanceSat),
		PendingSendSat:    info.PendingSendSat,
		PendingSend:       mathutil.SatsToBTC(info.PendingSendSat),
		PendingReceiveSat: info.PendingReceiveSat,
		PendingReceive:    mathutil.SatsToBTC(info.PendingReceiveSat),
		Assets:            assets,
	}
}
