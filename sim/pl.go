package sim

import (
	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/strategies/torb"
)

// PnlPips is the directional pip result of a move from entry to exit.
func PnlPips(symbol string, dir torb.Direction, entry, exit float64) float64 {
	return market.ToPips(symbol, dir.Sign()*(exit-entry))
}

// PnlAmount converts a pip result to account currency.
func PnlAmount(pips, units, pipValuePerUnit float64) float64 {
	return pips * units * pipValuePerUnit
}
