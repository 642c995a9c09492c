package risk

// USD_JPY in a JPY account -> QuoteToAccount = 1.0
// USD_JPY in a USD account -> QuoteToAccount = 1 / USDJPY mid

import "math"

type Inputs struct {
	Equity         float64 // notional the risk fraction applies to
	RiskPct        float64 // 0.02
	EntryPrice     float64
	StopPrice      float64
	PipLocation    int
	QuoteToAccount float64
}

type Result struct {
	Units           float64
	StopPips        float64
	RiskAmount      float64
	PipValuePerUnit float64
}

func pipSize(loc int) float64 {
	return math.Pow10(loc)
}

// Calculate sizes a position so that hitting the stop loses RiskPct of
// Equity. Units are floored; a zero stop distance yields zero units.
func Calculate(in Inputs) Result {
	pip := pipSize(in.PipLocation)
	stopPips := math.Round(math.Abs(in.EntryPrice-in.StopPrice)/pip*1e6) / 1e6

	riskAmt := in.Equity * in.RiskPct
	pipValuePerUnit := pip * in.QuoteToAccount

	res := Result{
		StopPips:        stopPips,
		RiskAmount:      riskAmt,
		PipValuePerUnit: pipValuePerUnit,
	}
	if stopPips <= 0 || pipValuePerUnit <= 0 {
		return res
	}
	res.Units = math.Floor(riskAmt / (stopPips * pipValuePerUnit))
	return res
}
