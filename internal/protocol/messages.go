// Package protocol defines the JSON message catalogue spoken over the
// dashboard WebSocket. Inbound frames are discriminated by a "type" field;
// outbound messages carry the same field so the server can dispatch them.
package protocol

import "coindeck/internal/domain"

// Inbound message types.
const (
	TypeExchangesList      = "exchanges_list"
	TypeFollowCoins        = "follow_coins"
	TypeValueFormat        = "value_format"
	TypePortfolioUpdate    = "portfolio_update"
	TypeRemoveHolding      = "remove_holding"
	TypeOrdersUpdate       = "orders_update"
	TypePriceUpdate        = "price_update"
	TypeLog                = "log"
	TypeReferencePriceInfo = "reference_price_info"
	TypeNlpTradeConfirm    = "nlp_trade_confirm"
	TypeNlpError           = "nlp_error"
)

// Outbound message types.
const (
	TypeCancelOrders    = "cancel_orders"
	TypeCancelAllOrders = "cancel_all_orders"
	TypeNlpCommand      = "nlp_command"
	TypeNlpExecute      = "nlp_execute"
)

// ExchangesList announces every exchange the server coordinates.
type ExchangesList struct {
	Data []string `json:"data"`
}

// FollowCoins lists base assets shown even at zero balance.
type FollowCoins struct {
	Exchange string   `json:"exchange"`
	Follows  []string `json:"follows"`
}

// ValueFormat carries per-exchange display configuration. It precedes the
// first portfolio or price event for the exchange.
type ValueFormat struct {
	Exchange           string `json:"exchange"`
	ValueDecimalPlaces int    `json:"value_decimal_places"`
	QuoteCurrency      string `json:"quote_currency"`
}

// PortfolioUpdate upserts one asset balance.
type PortfolioUpdate struct {
	Symbol      string  `json:"symbol"`
	Exchange    string  `json:"exchange"`
	Free        Number  `json:"free"`
	Locked      Number  `json:"locked"`
	AvgBuyPrice *Number `json:"avg_buy_price"`
	RealisedPnl *Number `json:"realised_pnl"`
}

// RemoveHolding drops an asset that left the portfolio entirely.
type RemoveHolding struct {
	Symbol   string `json:"symbol"`
	Exchange string `json:"exchange"`
}

// OrdersUpdate is a full open-order snapshot for the exchanges present in
// Data. It is a wholesale replacement, never an incremental mutation.
type OrdersUpdate struct {
	Data []OrderInfo `json:"data"`
}

// OrderInfo is one open order on the wire.
type OrderInfo struct {
	ID          string  `json:"id"`
	Exchange    string  `json:"exchange"`
	Symbol      string  `json:"symbol"`
	Side        string  `json:"side"`
	Price       Number  `json:"price"`
	StopPrice   *Number `json:"stop_price,omitempty"`
	Amount      Number  `json:"amount"`
	Filled      Number  `json:"filled"`
	Timestamp   int64   `json:"timestamp"`
	IsTriggered bool    `json:"is_triggered,omitempty"`
}

// Order converts the wire order into its domain form.
func (o *OrderInfo) Order() domain.Order {
	return domain.Order{
		ID:        o.ID,
		Exchange:  o.Exchange,
		Symbol:    o.Symbol,
		Side:      domain.ParseSide(o.Side),
		Price:     o.Price.Decimal,
		StopPrice: o.StopPrice.Ptr(),
		Amount:    o.Amount.Decimal,
		Filled:    o.Filled.Decimal,
		Timestamp: o.Timestamp,
		Triggered: o.IsTriggered,
	}
}

// PriceUpdate is the highest-frequency event: a new last price for one
// market symbol, optionally with a server-computed 24h percentage.
type PriceUpdate struct {
	Symbol     string  `json:"symbol"`
	Exchange   string  `json:"exchange"`
	Price      Number  `json:"price"`
	Percentage *Number `json:"percentage,omitempty"`
}

// Log is one exchange activity record.
type Log struct {
	Exchange  string     `json:"exchange"`
	Timestamp string     `json:"timestamp"`
	Message   LogPayload `json:"message"`
}

// LogPayload is the structured body of a log event.
type LogPayload struct {
	Status      string  `json:"status"`
	OrderID     string  `json:"order_id,omitempty"`
	Symbol      string  `json:"symbol,omitempty"`
	Message     string  `json:"message,omitempty"`
	Side        string  `json:"side,omitempty"`
	Price       *Number `json:"price,omitempty"`
	Amount      *Number `json:"amount,omitempty"`
	StopPrice   *Number `json:"stop_price,omitempty"`
	IsTriggered bool    `json:"is_triggered,omitempty"`
	Fee         *Number `json:"fee,omitempty"`
	Reason      string  `json:"reason,omitempty"`
}

// ReferencePriceInfo replaces the 24h-change baseline table, keyed by
// exchange then base asset symbol.
type ReferencePriceInfo struct {
	Time   string                       `json:"time"`
	Prices map[string]map[string]Number `json:"prices"`
}

// NlpTradeConfirm asks the user to confirm a parsed trade command.
type NlpTradeConfirm struct {
	Command domain.TradeCommand `json:"command"`
}

// NlpError reports a failed natural-language parse or execution.
type NlpError struct {
	Message string `json:"message"`
}

// CancelTarget identifies one order to cancel.
type CancelTarget struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
}

// CancelOrders requests cancellation of selected orders.
type CancelOrders struct {
	Type     string         `json:"type"`
	Orders   []CancelTarget `json:"orders"`
	Exchange string         `json:"exchange"`
}

// NewCancelOrders builds a cancel request for the given orders.
func NewCancelOrders(exchange string, targets []CancelTarget) CancelOrders {
	return CancelOrders{Type: TypeCancelOrders, Orders: targets, Exchange: exchange}
}

// CancelAllOrders requests cancellation of every open order on an exchange.
type CancelAllOrders struct {
	Type     string `json:"type"`
	Exchange string `json:"exchange"`
}

// NewCancelAllOrders builds a cancel-all request.
func NewCancelAllOrders(exchange string) CancelAllOrders {
	return CancelAllOrders{Type: TypeCancelAllOrders, Exchange: exchange}
}

// NlpCommand submits a natural-language trade request for parsing.
type NlpCommand struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	Exchange string `json:"exchange"`
}

// NewNlpCommand builds a parse request.
func NewNlpCommand(exchange, text string) NlpCommand {
	return NlpCommand{Type: TypeNlpCommand, Text: text, Exchange: exchange}
}

// NlpExecute confirms a previously parsed command for execution. The command
// is echoed back exactly as received.
type NlpExecute struct {
	Type     string              `json:"type"`
	Command  domain.TradeCommand `json:"command"`
	Exchange string              `json:"exchange"`
}

// NewNlpExecute builds an execute request.
func NewNlpExecute(exchange string, cmd domain.TradeCommand) NlpExecute {
	return NlpExecute{Type: TypeNlpExecute, Command: cmd, Exchange: exchange}
}
