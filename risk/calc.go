package risk

import "math"

// RR is the reward to risk ratio of a trade plan, 0 when there is no risk.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}
