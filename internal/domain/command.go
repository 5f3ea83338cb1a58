package domain

// TradeCommand is a structured trade instruction parsed server-side from a
// natural-language request. It is shown to the user for confirmation and
// echoed back verbatim on execute, so the wire field names are preserved.
type TradeCommand struct {
	Intent    string  `json:"intent"`
	Symbol    string  `json:"symbol"`
	Amount    *string `json:"amount"`
	Price     *string `json:"price"`
	OrderType string  `json:"order_type"`
	StopPrice *string `json:"stop_price,omitempty"`
	TotalCost *string `json:"total_cost,omitempty"`
	// CurrentPrice is attached by the server when it knows the market.
	CurrentPrice *float64 `json:"current_price,omitempty"`
}

// IsLimit reports whether the command carries an explicit limit price.
func (c *TradeCommand) IsLimit() bool {
	return c.OrderType == "limit" && c.Price != nil
}
