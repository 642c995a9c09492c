package indicators

// RSI computes the relative strength index of the last period changes using
// a simple average of gains and losses. With fewer than period+1 closes it
// returns the neutral 50; with no losses it returns 100.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 50.0
	}

	window := closes[len(closes)-period-1:]

	var avgGain, avgLoss float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
