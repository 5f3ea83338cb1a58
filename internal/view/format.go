// Package view renders dashboard state into styled terminal output. Render
// functions are pure in the entity's fields: the same input always produces
// the same output, and nothing is ever read back out of rendered text.
package view

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"coindeck/internal/domain"
)

// Placeholder stands in for values that are absent rather than zero.
const Placeholder = "—"

// amountScale caps the digits shown for raw asset amounts.
const amountScale = 8

// FormatAmount renders an asset quantity with trailing zeros stripped, so
// "1.50000000" displays as "1.5" and "25000" stays "25000".
func FormatAmount(d decimal.Decimal) string {
	s := d.Round(amountScale).String()
	if !strings.ContainsRune(s, '.') {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatValue renders a quote-currency value at the exchange's fixed
// precision.
func FormatValue(d decimal.Decimal, places int) string {
	if places < 0 {
		places = 0
	}
	return d.StringFixed(int32(places))
}

// FormatQuote renders a value with its quote currency suffix.
func FormatQuote(d decimal.Decimal, cfg domain.ExchangeConfig) string {
	return FormatValue(d, cfg.ValueDecimalPlaces) + " " + cfg.QuoteCurrency
}

// FormatPercent renders a signed percentage with two decimals.
func FormatPercent(d decimal.Decimal) string {
	s := d.StringFixed(2) + "%"
	if !d.IsNegative() {
		return "+" + s
	}
	return s
}

// FormatOptPercent renders an optional percentage, placeholder when absent.
func FormatOptPercent(d *decimal.Decimal) string {
	if d == nil {
		return Placeholder
	}
	return FormatPercent(*d)
}

// FormatOptAmount renders an optional quantity, placeholder when absent.
func FormatOptAmount(d *decimal.Decimal) string {
	if d == nil {
		return Placeholder
	}
	return FormatAmount(*d)
}

// FormatClock renders a log timestamp as local wall-clock time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Local().Format("15:04:05")
}
