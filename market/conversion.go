package market

import (
	"fmt"
)

// QuoteToAccountRate converts one unit of the instrument's quote currency to
// the account currency, using mid for the base == account case.
func QuoteToAccountRate(instrument string, accountCurrency string, mid float64) (float64, error) {
	meta, err := Lookup(instrument)
	if err != nil {
		return 0, fmt.Errorf("%w %s", err, instrument)
	}

	// Case 1: quote currency == account currency (EUR_USD in USD, USD_JPY in JPY)
	if meta.QuoteCurrency == accountCurrency {
		return 1.0, nil
	}

	// Case 2: account currency is the base (USD_JPY in USD)
	if meta.BaseCurrency == accountCurrency {
		if mid <= 0 {
			return 0, fmt.Errorf("no mid price to convert %s to %s", meta.QuoteCurrency, accountCurrency)
		}
		return 1.0 / mid, nil
	}

	return 0, fmt.Errorf(
		"cross conversion not implemented for %s → %s",
		meta.QuoteCurrency,
		accountCurrency,
	)
}
