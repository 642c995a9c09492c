package journal

import "fmt"

// Summary is the daily performance rollup of closed trades.
type Summary struct {
	Trades    int
	Wins      int
	Losses    int
	NetPips   float64
	NetAmount float64
	BestPips  float64
	WorstPips float64
	ByReason  map[string]int
}

// WinRate is wins over closed trades, 0 with no trades.
func (s Summary) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades)
}

func (s Summary) String() string {
	return fmt.Sprintf("trades=%d wins=%d losses=%d win_rate=%.1f%% net_pips=%.1f net_amount=%.2f",
		s.Trades, s.Wins, s.Losses, 100*s.WinRate(), s.NetPips, s.NetAmount)
}

// Summarize rolls up the closed trades in trades. Open trades are ignored; a
// zero pip result counts as neither win nor loss.
func Summarize(trades []Trade) Summary {
	s := Summary{ByReason: make(map[string]int)}
	for _, t := range trades {
		if !t.Closed {
			continue
		}
		if s.Trades == 0 || t.PnlPips > s.BestPips {
			s.BestPips = t.PnlPips
		}
		if s.Trades == 0 || t.PnlPips < s.WorstPips {
			s.WorstPips = t.PnlPips
		}
		s.Trades++
		switch {
		case t.PnlPips > 0:
			s.Wins++
		case t.PnlPips < 0:
			s.Losses++
		}
		s.NetPips += t.PnlPips
		s.NetAmount += t.PnlAmount
		s.ByReason[t.Reason]++
	}
	return s
}
