// Package reconcile converts inbound protocol events plus current store
// state into minimal view patches, and recomputes every value derived from
// more than one entity (totals, shares, PnL, price diffs).
//
// All methods run synchronously inside the single UI event loop; the engine
// never blocks and never throws away the connection over a bad event.
package reconcile

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coindeck/internal/domain"
	"coindeck/internal/protocol"
	"coindeck/internal/store"
)

// Engine owns no state of its own; it reads and mutates the store and
// decides which cards must change.
type Engine struct {
	store *store.Store
	log   *zap.Logger
}

// New creates an engine over the given store.
func New(st *store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: st, log: log}
}

// Apply dispatches one decoded inbound message. Unknown message values are
// dropped with a warning; they never fail.
func (e *Engine) Apply(msg any) []Patch {
	switch m := msg.(type) {
	case *protocol.ExchangesList:
		return e.ApplyExchangesList(m.Data)
	case *protocol.FollowCoins:
		return e.ApplyFollows(m.Exchange, m.Follows)
	case *protocol.ValueFormat:
		return e.ApplyValueFormat(m)
	case *protocol.PortfolioUpdate:
		return e.ApplyPortfolioUpdate(m)
	case *protocol.RemoveHolding:
		return e.ApplyRemoveHolding(m.Symbol, m.Exchange)
	case *protocol.OrdersUpdate:
		return e.ApplyOrdersSnapshot(m)
	case *protocol.PriceUpdate:
		return e.ApplyPriceUpdate(m)
	case *protocol.Log:
		return e.ApplyLog(m)
	case *protocol.ReferencePriceInfo:
		return e.ApplyReferenceSnapshot(m)
	case *protocol.NlpTradeConfirm:
		return e.ApplyTradeConfirm(m.Command)
	case *protocol.NlpError:
		return []Patch{put(KindNotice, "", m.Message)}
	default:
		e.log.Warn("unhandled message", zap.Any("msg", msg))
		return nil
	}
}

// ApplyExchangesList records the exchange set and redraws the tab bar.
func (e *Engine) ApplyExchangesList(names []string) []Patch {
	e.store.SetExchanges(names)
	return []Patch{reset(KindTabs, e.store.ActiveExchange())}
}

// ApplyFollows replaces the follow set. Zero-balance holdings that fell out
// of the set lose their card.
func (e *Engine) ApplyFollows(exchange string, follows []string) []Patch {
	e.store.SetFollows(exchange, follows)

	var patches []Patch
	for _, h := range e.store.HoldingsFor(exchange) {
		if h.Total().IsZero() && !e.store.IsFollowed(exchange, h.Base) {
			e.store.RemoveHolding(exchange, h.Market)
			patches = append(patches, remove(KindHolding, exchange, h.Market))
		}
	}
	if len(patches) > 0 {
		patches = append(patches, e.RecomputeAggregate(exchange)...)
	}
	return patches
}

// ApplyValueFormat records display configuration for an exchange. The whole
// holdings section is redrawn because precision and quote currency changed.
func (e *Engine) ApplyValueFormat(m *protocol.ValueFormat) []Patch {
	e.store.SetConfig(domain.ExchangeConfig{
		Name:               m.Exchange,
		QuoteCurrency:      m.QuoteCurrency,
		ValueDecimalPlaces: m.ValueDecimalPlaces,
	})
	patches := []Patch{reset(KindHolding, m.Exchange)}
	return append(patches, e.RecomputeAggregate(m.Exchange)...)
}

// ApplyPriceUpdate is the hot path: it touches exactly the holding on the
// updated market plus the orders referencing it, never the whole entity set.
func (e *Engine) ApplyPriceUpdate(m *protocol.PriceUpdate) []Patch {
	market := m.Symbol
	if !strings.ContainsRune(market, '/') {
		cfg, ok := e.store.Config(m.Exchange)
		if !ok {
			e.log.Warn("price update before exchange config, dropped",
				zap.String("exchange", m.Exchange), zap.String("symbol", m.Symbol))
			return nil
		}
		market = cfg.MarketSymbol(m.Symbol)
	}
	price := m.Price.Decimal
	e.store.MergePrices(m.Exchange, map[string]decimal.Decimal{market: price})

	var patches []Patch
	if h := e.store.Holding(m.Exchange, market); h != nil {
		h.Price = price
		if m.Percentage != nil {
			h.ChangePercent = m.Percentage.Ptr()
		} else {
			h.ChangePercent = domain.ChangePercent(price, e.store.ReferencePrice(m.Exchange, h.Base))
		}
		patches = append(patches, put(KindHolding, m.Exchange, market))
		patches = append(patches, e.RecomputeAggregate(m.Exchange)...)
	}

	for _, id := range e.store.OrderIDsBySymbol(m.Exchange, market) {
		patches = append(patches, put(KindOrder, m.Exchange, id))
	}
	return patches
}

// ApplyPortfolioUpdate upserts one holding. Events for exchanges whose
// configuration has not arrived are dropped: the server replays the full
// snapshot after configuration on every connect, so nothing is lost.
func (e *Engine) ApplyPortfolioUpdate(m *protocol.PortfolioUpdate) []Patch {
	cfg, ok := e.store.Config(m.Exchange)
	if !ok {
		e.log.Warn("portfolio update before exchange config, dropped",
			zap.String("exchange", m.Exchange), zap.String("symbol", m.Symbol))
		return nil
	}

	market := cfg.MarketSymbol(m.Symbol)
	free, locked := m.Free.Decimal, m.Locked.Decimal
	total := free.Add(locked)

	if total.IsZero() {
		return e.applyZeroBalance(cfg, m, market)
	}

	h := e.store.Holding(m.Exchange, market)
	if h == nil {
		h = &domain.Holding{Exchange: m.Exchange, Base: m.Symbol, Market: market}
		e.store.SetHolding(h)
	}
	h.Free = free
	h.Locked = locked
	h.AvgBuyPrice = m.AvgBuyPrice.Ptr()
	h.RealizedPnl = m.RealisedPnl.Ptr()
	h.Empty = false
	h.Price = e.store.Price(m.Exchange, market)
	h.ChangePercent = domain.ChangePercent(h.Price, e.store.ReferencePrice(m.Exchange, h.Base))

	patches := []Patch{put(KindHolding, m.Exchange, market)}
	return append(patches, e.RecomputeAggregate(m.Exchange)...)
}

// applyZeroBalance keeps followed assets visible in an empty state and drops
// everything else.
func (e *Engine) applyZeroBalance(cfg domain.ExchangeConfig, m *protocol.PortfolioUpdate, market string) []Patch {
	if e.store.IsFollowed(m.Exchange, m.Symbol) {
		h := e.store.Holding(m.Exchange, market)
		if h == nil {
			h = &domain.Holding{Exchange: m.Exchange, Base: m.Symbol, Market: market}
			e.store.SetHolding(h)
		}
		h.Free = decimal.Zero
		h.Locked = decimal.Zero
		h.Empty = true
		h.Price = e.store.Price(m.Exchange, market)
		patches := []Patch{put(KindHolding, m.Exchange, market)}
		return append(patches, e.RecomputeAggregate(m.Exchange)...)
	}

	if e.store.Holding(m.Exchange, market) == nil {
		return nil
	}
	e.store.RemoveHolding(m.Exchange, market)
	patches := []Patch{remove(KindHolding, m.Exchange, market)}
	return append(patches, e.RecomputeAggregate(m.Exchange)...)
}

// ApplyRemoveHolding drops the holding for a base asset entirely.
func (e *Engine) ApplyRemoveHolding(symbol, exchange string) []Patch {
	cfg, ok := e.store.Config(exchange)
	if !ok {
		e.log.Warn("remove holding before exchange config, dropped",
			zap.String("exchange", exchange), zap.String("symbol", symbol))
		return nil
	}
	market := cfg.MarketSymbol(symbol)
	if e.store.Holding(exchange, market) == nil {
		return nil
	}
	e.store.RemoveHolding(exchange, market)
	patches := []Patch{remove(KindHolding, exchange, market)}
	return append(patches, e.RecomputeAggregate(exchange)...)
}

// ApplyOrdersSnapshot swaps the full order set of the exchanges present in
// the snapshot. An empty snapshot names no exchange, so it clears every
// known book: a wrongly kept stale order invites a cancel that can never
// succeed, while an over-cleared book is restored by the exchange's next
// broadcast.
func (e *Engine) ApplyOrdersSnapshot(m *protocol.OrdersUpdate) []Patch {
	byExchange := make(map[string][]domain.Order)
	for i := range m.Data {
		o := m.Data[i].Order()
		byExchange[o.Exchange] = append(byExchange[o.Exchange], o)
	}
	if len(byExchange) == 0 {
		for _, name := range e.store.Exchanges() {
			byExchange[name] = nil
		}
	}

	var patches []Patch
	for exchange, orders := range byExchange {
		created, updated, removed := e.store.ReplaceOrders(exchange, orders)
		for _, id := range removed {
			patches = append(patches, remove(KindOrder, exchange, id))
		}
		for _, id := range updated {
			patches = append(patches, put(KindOrder, exchange, id))
		}
		for _, id := range created {
			patches = append(patches, put(KindOrder, exchange, id))
		}
	}
	return patches
}

// ApplyReferenceSnapshot replaces the 24h baseline and recomputes the change
// percent of every holding, because the baseline moved, not the price.
func (e *Engine) ApplyReferenceSnapshot(m *protocol.ReferencePriceInfo) []Patch {
	prices := make(map[string]map[string]decimal.Decimal, len(m.Prices))
	for exchange, perBase := range m.Prices {
		prices[exchange] = make(map[string]decimal.Decimal, len(perBase))
		for base, p := range perBase {
			prices[exchange][base] = p.Decimal
		}
	}
	e.store.SetReferencePrices(m.Time, prices)

	var patches []Patch
	for _, exchange := range e.store.Exchanges() {
		for _, h := range e.store.HoldingsFor(exchange) {
			h.ChangePercent = domain.ChangePercent(h.Price, e.store.ReferencePrice(exchange, h.Base))
			patches = append(patches, put(KindHolding, exchange, h.Market))
		}
	}
	return patches
}

// ApplyLog stores one activity record. Success records are kept but never
// displayed.
func (e *Engine) ApplyLog(m *protocol.Log) []Patch {
	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		ts = time.Now().UTC()
	}
	entry := domain.LogEntry{
		Exchange:  m.Exchange,
		Timestamp: ts,
		Status:    m.Message.Status,
		OrderID:   m.Message.OrderID,
		Symbol:    m.Message.Symbol,
		Message:   m.Message.Message,
		Side:      domain.ParseSide(m.Message.Side),
		Price:     m.Message.Price.Ptr(),
		Amount:    m.Message.Amount.Ptr(),
		StopPrice: m.Message.StopPrice.Ptr(),
		Fee:       m.Message.Fee.Ptr(),
		Reason:    m.Message.Reason,
		Triggered: m.Message.IsTriggered,
	}
	if !e.store.AppendLog(entry) {
		// replayed cache entry, already stored and displayed
		return nil
	}
	if entry.Hidden() {
		return nil
	}
	return []Patch{put(KindLog, m.Exchange, "")}
}

// ApplyTradeConfirm replaces the pending command and opens the confirmation
// modal.
func (e *Engine) ApplyTradeConfirm(cmd domain.TradeCommand) []Patch {
	e.store.SetPendingCommand(&cmd)
	return []Patch{put(KindCommand, "", "")}
}

// SetActiveExchange switches the visible exchange and redraws every
// filtered section; cached state of other exchanges stays intact.
func (e *Engine) SetActiveExchange(name string) []Patch {
	e.store.SetActiveExchange(name)
	return []Patch{
		reset(KindTabs, name),
		reset(KindHolding, name),
		reset(KindOrder, name),
		reset(KindLog, name),
		reset(KindAggregate, name),
	}
}

// RecomputeAggregate sums holding values for the exchange and refreshes each
// holding's share of the total. Shares are nil (rendered as a placeholder)
// when the total is zero.
func (e *Engine) RecomputeAggregate(exchange string) []Patch {
	holdings := e.store.HoldingsFor(exchange)

	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(h.Value())
	}
	e.store.SetTotal(exchange, total)

	var patches []Patch
	for _, h := range holdings {
		share := domain.SharePercent(h.Value(), total)
		if !sharesEqual(h.Share, share) {
			h.Share = share
			patches = append(patches, put(KindHolding, exchange, h.Market))
		}
	}
	return append(patches, Patch{Kind: KindAggregate, Op: OpPut, Exchange: exchange})
}

func sharesEqual(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
