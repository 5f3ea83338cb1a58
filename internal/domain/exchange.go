package domain

import "fmt"

// ExchangeConfig is the per-exchange display configuration announced by the
// server before any portfolio or price event for that exchange.
type ExchangeConfig struct {
	Name string
	// QuoteCurrency denominates every market on the exchange, e.g. "USDT".
	QuoteCurrency string
	// ValueDecimalPlaces is the fixed precision for rendered values.
	ValueDecimalPlaces int
}

// MarketSymbol derives the full market symbol for a base asset on this
// exchange.
func (c *ExchangeConfig) MarketSymbol(base string) string {
	return fmt.Sprintf("%s/%s", base, c.QuoteCurrency)
}

// SelfMarket returns the quote currency's own market symbol (e.g.
// "USDT/USDT"), whose price is pinned to 1.0 because it never arrives as a
// price event.
func (c *ExchangeConfig) SelfMarket() string {
	return c.MarketSymbol(c.QuoteCurrency)
}
