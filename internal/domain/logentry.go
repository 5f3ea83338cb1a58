package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LogEntry is one server-side activity record scoped to an exchange. Entries
// are append-only and displayed newest first.
type LogEntry struct {
	Exchange  string
	Timestamp time.Time

	// Status is the server's event tag, e.g. "open", "closed", "Cancelling".
	Status  string
	OrderID string
	Symbol  string
	Message string
	Side    Side

	Price     *decimal.Decimal
	Amount    *decimal.Decimal
	StopPrice *decimal.Decimal
	Fee       *decimal.Decimal
	Reason    string
	Triggered bool
}

// Same reports whether two entries are the same wire record. The server
// replays its cached log on every connect, so replayed entries must be
// recognizable.
func (e LogEntry) Same(o LogEntry) bool {
	return e.Exchange == o.Exchange &&
		e.Timestamp.Equal(o.Timestamp) &&
		e.Status == o.Status &&
		e.OrderID == o.OrderID &&
		e.Symbol == o.Symbol &&
		e.Message == o.Message &&
		e.Side == o.Side &&
		e.Reason == o.Reason &&
		e.Triggered == o.Triggered &&
		decimalPtrEqual(e.Price, o.Price) &&
		decimalPtrEqual(e.Amount, o.Amount) &&
		decimalPtrEqual(e.StopPrice, o.StopPrice) &&
		decimalPtrEqual(e.Fee, o.Fee)
}

// Hidden reports whether the entry is excluded from display. Success records
// are broadcast for bookkeeping but never shown.
func (e *LogEntry) Hidden() bool {
	return strings.EqualFold(e.Status, "success")
}
