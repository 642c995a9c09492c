package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatTradeOrg renders a trade as an Org-mode block. Structured facts go in
// the PROPERTIES drawer; the Thesis/Execution/Review headings are left for
// notes.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Instrument, t.Direction, shortID(t.TradeID))
	open := t.OpenTime.UTC().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":INSTRUMENT: %s\n", t.Instrument))
	b.WriteString(fmt.Sprintf(":DIRECTION: %s\n", t.Direction))
	b.WriteString(fmt.Sprintf(":UNITS: %.0f\n", t.Units))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":STOP_LOSS: %.5f\n", t.StopLoss))
	b.WriteString(fmt.Sprintf(":TAKE_PROFIT: %.5f\n", t.TakeProfit))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", open))
	b.WriteString(fmt.Sprintf(":SESSION: %s\n", t.Session))
	b.WriteString(fmt.Sprintf(":CONFIDENCE: %.2f\n", t.Confidence))
	b.WriteString(fmt.Sprintf(":RANGE: %.5f-%.5f\n", t.RangeLow, t.RangeHigh))
	if t.Closed {
		b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.5f\n", t.ExitPrice))
		b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", t.ExitTime.UTC().Format(time.RFC3339)))
		b.WriteString(fmt.Sprintf(":EXIT_REASON: %s\n", t.Reason))
		b.WriteString(fmt.Sprintf(":PNL_PIPS: %.1f\n", t.PnlPips))
		b.WriteString(fmt.Sprintf(":PNL_AMOUNT: %.2f\n", t.PnlAmount))
	} else {
		b.WriteString(":STATUS: OPEN\n")
	}
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
