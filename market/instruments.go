// market/instruments.go
package market

import (
	"errors"
	"math"
	"strings"
)

var ErrUnknownInstrument = errors.New("unknown instrument")

type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	// PipLocation is the power of ten of one pip: -3 for JPY quoted pairs,
	// -4 for everything else.
	PipLocation         int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		BaseCurrency:     "USD",
		QuoteCurrency:    "JPY",
		PipLocation:      -3,
		MinimumTradeSize: 1,
	},
	"EUR_JPY": {
		Name:             "EUR_JPY",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "JPY",
		PipLocation:      -3,
		MinimumTradeSize: 1,
	},
	"GBP_JPY": {
		Name:             "GBP_JPY",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "JPY",
		PipLocation:      -3,
		MinimumTradeSize: 1,
	},
}

// Lookup returns the metadata for an instrument. Symbols that are not in the
// table are split on "_" or "/" (or as a 6 letter pair) so the pip rule can
// still be applied.
func Lookup(instrument string) (InstrumentMeta, error) {
	if meta, ok := Instruments[instrument]; ok {
		return meta, nil
	}

	s := strings.ToUpper(strings.TrimSpace(instrument))
	var base, quote string
	switch {
	case strings.ContainsAny(s, "_/"):
		parts := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '/' })
		if len(parts) != 2 {
			return InstrumentMeta{}, ErrUnknownInstrument
		}
		base, quote = parts[0], parts[1]
	case len(s) == 6:
		base, quote = s[:3], s[3:]
	default:
		return InstrumentMeta{}, ErrUnknownInstrument
	}

	loc := -4
	if quote == "JPY" {
		loc = -3
	}
	return InstrumentMeta{
		Name:             instrument,
		BaseCurrency:     base,
		QuoteCurrency:    quote,
		PipLocation:      loc,
		MinimumTradeSize: 1,
	}, nil
}

// PipSize is the size of one pip in price units: 0.001 for JPY quoted
// pairs, 0.0001 otherwise.
func PipSize(instrument string) float64 {
	meta, err := Lookup(instrument)
	if err != nil {
		return 0.0001
	}
	return math.Pow10(meta.PipLocation)
}

// ToPips converts a price distance to pips, rounded to a millionth of a pip
// so that thresholds compare cleanly after float subtraction.
func ToPips(instrument string, delta float64) float64 {
	return math.Round(delta/PipSize(instrument)*1e6) / 1e6
}

// FromPips converts pips to a price distance.
func FromPips(instrument string, pips float64) float64 {
	return pips * PipSize(instrument)
}
