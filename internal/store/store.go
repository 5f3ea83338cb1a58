// Package store owns every piece of mutable dashboard state: prices,
// holdings, orders, logs, exchange metadata and the pending trade command.
//
// The store is confined to the UI event loop goroutine; all methods are
// synchronous merges with no side effects beyond the store itself. Reads of
// absent keys return zero values, never errors.
package store

import (
	"sort"

	"github.com/shopspring/decimal"

	"coindeck/internal/domain"
)

// Store is the single owned state object shared by the reconciliation engine
// and the render layer.
type Store struct {
	exchanges []string
	active    string

	configs map[string]domain.ExchangeConfig
	follows map[string]map[string]struct{}

	holdings map[string]map[string]*domain.Holding // exchange -> market
	prices   map[string]map[string]decimal.Decimal // exchange -> market

	orders         map[string]map[string]*domain.Order // exchange -> order id
	orderIDs       map[string][]string                 // exchange -> ids, newest first
	ordersBySymbol map[string]map[string][]string      // exchange -> market -> ids
	selection      map[string]map[string]bool          // exchange -> order id

	refPrices map[string]map[string]decimal.Decimal // exchange -> base asset
	refTime   string

	logs map[string][]domain.LogEntry // newest first

	totals map[string]decimal.Decimal // aggregate value per exchange

	pending *domain.TradeCommand
}

// New returns an empty store.
func New() *Store {
	return &Store{
		configs:        make(map[string]domain.ExchangeConfig),
		follows:        make(map[string]map[string]struct{}),
		holdings:       make(map[string]map[string]*domain.Holding),
		prices:         make(map[string]map[string]decimal.Decimal),
		orders:         make(map[string]map[string]*domain.Order),
		orderIDs:       make(map[string][]string),
		ordersBySymbol: make(map[string]map[string][]string),
		selection:      make(map[string]map[string]bool),
		refPrices:      make(map[string]map[string]decimal.Decimal),
		logs:           make(map[string][]domain.LogEntry),
		totals:         make(map[string]decimal.Decimal),
	}
}

// SetExchanges records the announced exchange set in server order. The first
// exchange becomes active when none is set yet.
func (s *Store) SetExchanges(names []string) {
	s.exchanges = append([]string(nil), names...)
	if s.active == "" && len(s.exchanges) > 0 {
		s.active = s.exchanges[0]
	}
}

// Exchanges returns the known exchange names in announcement order.
func (s *Store) Exchanges() []string {
	return append([]string(nil), s.exchanges...)
}

// ActiveExchange returns the exchange whose holdings, orders and logs are
// visible.
func (s *Store) ActiveExchange() string {
	return s.active
}

// SetActiveExchange switches visibility. It never fails; cached state of the
// other exchanges is untouched.
func (s *Store) SetActiveExchange(name string) {
	s.active = name
}

// SetConfig records per-exchange display configuration and seeds the quote
// currency's self market at price 1.0, which never arrives as a price event.
func (s *Store) SetConfig(cfg domain.ExchangeConfig) {
	s.configs[cfg.Name] = cfg
	s.MergePrices(cfg.Name, map[string]decimal.Decimal{
		cfg.SelfMarket(): decimal.NewFromInt(1),
	})
}

// Config returns the exchange configuration and whether it has arrived yet.
func (s *Store) Config(exchange string) (domain.ExchangeConfig, bool) {
	cfg, ok := s.configs[exchange]
	return cfg, ok
}

// SetFollows replaces the follow set of base assets kept visible at zero
// balance.
func (s *Store) SetFollows(exchange string, bases []string) {
	set := make(map[string]struct{}, len(bases))
	for _, b := range bases {
		set[b] = struct{}{}
	}
	s.follows[exchange] = set
}

// IsFollowed reports whether a base asset is in the exchange follow set.
func (s *Store) IsFollowed(exchange, base string) bool {
	_, ok := s.follows[exchange][base]
	return ok
}

// Follows returns the follow set of an exchange.
func (s *Store) Follows(exchange string) []string {
	bases := make([]string, 0, len(s.follows[exchange]))
	for b := range s.follows[exchange] {
		bases = append(bases, b)
	}
	sort.Strings(bases)
	return bases
}

// MergePrices shallow-merges a market-symbol price mapping, last write wins
// per symbol. Idempotent.
func (s *Store) MergePrices(exchange string, partial map[string]decimal.Decimal) {
	m, ok := s.prices[exchange]
	if !ok {
		m = make(map[string]decimal.Decimal, len(partial))
		s.prices[exchange] = m
	}
	for symbol, price := range partial {
		m[symbol] = price
	}
}

// Price returns the last known price for a market symbol, zero when never
// seen.
func (s *Store) Price(exchange, market string) decimal.Decimal {
	return s.prices[exchange][market]
}

// SetHolding upserts a holding under its (exchange, market) key.
func (s *Store) SetHolding(h *domain.Holding) {
	m, ok := s.holdings[h.Exchange]
	if !ok {
		m = make(map[string]*domain.Holding)
		s.holdings[h.Exchange] = m
	}
	m[h.Market] = h
}

// Holding returns the holding for a market symbol, nil when absent.
func (s *Store) Holding(exchange, market string) *domain.Holding {
	return s.holdings[exchange][market]
}

// RemoveHolding deletes a holding. Removing an absent key is a no-op.
func (s *Store) RemoveHolding(exchange, market string) {
	delete(s.holdings[exchange], market)
}

// HoldingsFor returns the exchange's holdings sorted by market symbol for
// stable display.
func (s *Store) HoldingsFor(exchange string) []*domain.Holding {
	m := s.holdings[exchange]
	out := make([]*domain.Holding, 0, len(m))
	for _, h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Market < out[j].Market })
	return out
}

// ReplaceOrders swaps the full open-order set of one exchange, preserving
// selection state for surviving ids. It reports which ids were created,
// updated and removed so the caller can patch instead of redraw.
func (s *Store) ReplaceOrders(exchange string, orders []domain.Order) (created, updated, removed []string) {
	old := s.orders[exchange]
	next := make(map[string]*domain.Order, len(orders))
	for i := range orders {
		o := orders[i]
		next[o.ID] = &o
	}

	for id := range old {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}

	// Survivors keep their slots; only the ones whose content changed are
	// reported, so an identical snapshot yields an empty patch set. New ids
	// are slotted by descending timestamp so the list stays newest first
	// without a full resort.
	var ids []string
	for _, id := range s.orderIDs[exchange] {
		o, ok := next[id]
		if !ok {
			continue
		}
		ids = append(ids, id)
		if !old[id].Equal(o) {
			updated = append(updated, id)
		}
	}
	for _, o := range orders {
		if _, existed := old[o.ID]; existed {
			continue
		}
		created = append(created, o.ID)
		ids = insertByTimestamp(ids, o.ID, next)
	}

	s.orders[exchange] = next
	s.orderIDs[exchange] = ids
	s.reindexOrders(exchange)

	sel := s.selection[exchange]
	for _, id := range removed {
		delete(sel, id)
	}
	return created, updated, removed
}

func insertByTimestamp(ids []string, id string, all map[string]*domain.Order) []string {
	ts := all[id].Timestamp
	at := sort.Search(len(ids), func(i int) bool {
		return all[ids[i]].Timestamp < ts
	})
	ids = append(ids, "")
	copy(ids[at+1:], ids[at:])
	ids[at] = id
	return ids
}

func (s *Store) reindexOrders(exchange string) {
	idx := make(map[string][]string)
	for _, id := range s.orderIDs[exchange] {
		o := s.orders[exchange][id]
		idx[o.Symbol] = append(idx[o.Symbol], id)
	}
	s.ordersBySymbol[exchange] = idx
}

// Order returns one order by id, nil when absent.
func (s *Store) Order(exchange, id string) *domain.Order {
	return s.orders[exchange][id]
}

// OrderIDsFor returns the exchange's order ids newest first.
func (s *Store) OrderIDsFor(exchange string) []string {
	return append([]string(nil), s.orderIDs[exchange]...)
}

// OrderIDsBySymbol returns the ids of live orders on one market symbol. This
// is the index that keeps price fan-out proportional to the orders actually
// referencing the symbol.
func (s *Store) OrderIDsBySymbol(exchange, market string) []string {
	return s.ordersBySymbol[exchange][market]
}

// ToggleSelected flips an order's checkbox and returns the new state.
func (s *Store) ToggleSelected(exchange, id string) bool {
	sel, ok := s.selection[exchange]
	if !ok {
		sel = make(map[string]bool)
		s.selection[exchange] = sel
	}
	sel[id] = !sel[id]
	return sel[id]
}

// Selected reports an order's checkbox state.
func (s *Store) Selected(exchange, id string) bool {
	return s.selection[exchange][id]
}

// SelectedOrders returns the selected orders of an exchange, newest first.
func (s *Store) SelectedOrders(exchange string) []*domain.Order {
	var out []*domain.Order
	for _, id := range s.orderIDs[exchange] {
		if s.selection[exchange][id] {
			out = append(out, s.orders[exchange][id])
		}
	}
	return out
}

// SetReferencePrices replaces the 24h-change baseline table.
func (s *Store) SetReferencePrices(time string, prices map[string]map[string]decimal.Decimal) {
	s.refTime = time
	s.refPrices = prices
}

// ReferencePrice returns the baseline price for a base asset, nil when no
// baseline exists.
func (s *Store) ReferencePrice(exchange, base string) *decimal.Decimal {
	p, ok := s.refPrices[exchange][base]
	if !ok {
		return nil
	}
	return &p
}

// ReferenceTime returns when the baseline was captured.
func (s *Store) ReferenceTime() string {
	return s.refTime
}

// AppendLog prepends an entry so logs read newest first. The server replays
// its cached log on every connect; an entry already stored is skipped and
// reported false.
func (s *Store) AppendLog(e domain.LogEntry) bool {
	for _, have := range s.logs[e.Exchange] {
		if have.Same(e) {
			return false
		}
	}
	s.logs[e.Exchange] = append([]domain.LogEntry{e}, s.logs[e.Exchange]...)
	return true
}

// LogsFor returns the exchange's log entries newest first.
func (s *Store) LogsFor(exchange string) []domain.LogEntry {
	return append([]domain.LogEntry(nil), s.logs[exchange]...)
}

// SetTotal records the aggregate holding value of an exchange.
func (s *Store) SetTotal(exchange string, total decimal.Decimal) {
	s.totals[exchange] = total
}

// Total returns the aggregate holding value, zero when never computed.
func (s *Store) Total(exchange string) decimal.Decimal {
	return s.totals[exchange]
}

// SetPendingCommand replaces the at-most-one in-flight trade command.
func (s *Store) SetPendingCommand(cmd *domain.TradeCommand) {
	s.pending = cmd
}

// PendingCommand returns the command awaiting confirmation, nil when none.
func (s *Store) PendingCommand() *domain.TradeCommand {
	return s.pending
}

// TakePendingCommand clears and returns the pending command.
func (s *Store) TakePendingCommand() *domain.TradeCommand {
	cmd := s.pending
	s.pending = nil
	return cmd
}
