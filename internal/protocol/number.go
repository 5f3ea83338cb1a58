package protocol

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Number decodes a JSON numeric field that may arrive as a number, a quoted
// string, or garbage. Malformed or non-finite input coerces to zero instead
// of failing the whole frame: a bad field degrades that one field's display
// only.
type Number struct {
	decimal.Decimal
}

func (n *Number) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(bytes.TrimSpace(data), `"`))
	if s == "" || s == "null" {
		n.Decimal = decimal.Zero
		return nil
	}
	switch strings.ToLower(s) {
	case "nan", "inf", "+inf", "-inf", "infinity", "-infinity":
		n.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = d
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

// Ptr converts an optional wire number to an optional decimal.
func (n *Number) Ptr() *decimal.Decimal {
	if n == nil {
		return nil
	}
	d := n.Decimal
	return &d
}
