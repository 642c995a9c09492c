package sim

import (
	"time"

	"github.com/rustyeddy/torb/market"
	"github.com/rustyeddy/torb/strategies/torb"
)

// markPrice is the side a position would close on: bid for longs, ask for
// shorts.
func markPrice(dir torb.Direction, tick market.Tick) float64 {
	if dir == torb.Short {
		return tick.Ask
	}
	return tick.Bid
}

func hitStopLoss(t *VirtualTrade, price float64) bool {
	if t.Direction == torb.Long {
		return price <= t.StopLoss
	}
	return price >= t.StopLoss
}

func hitTakeProfit(t *VirtualTrade, price float64) bool {
	if t.Direction == torb.Long {
		return price >= t.TakeProfit
	}
	return price <= t.TakeProfit
}

func hitTimeStop(t *VirtualTrade, now time.Time) bool {
	return t.MaxHold > 0 && now.Sub(t.EntryTime) > t.MaxHold
}

// exitFor returns the exit for an open trade at tick. Price levels are
// checked before the holding time.
func exitFor(t *VirtualTrade, tick market.Tick, now time.Time) (ExitReason, float64, bool) {
	px := markPrice(t.Direction, tick)
	switch {
	case hitTakeProfit(t, px):
		return ExitTakeProfit, px, true
	case hitStopLoss(t, px):
		return ExitStopLoss, px, true
	case hitTimeStop(t, now):
		return ExitTimeStop, px, true
	}
	return "", 0, false
}
