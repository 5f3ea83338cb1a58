package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"coindeck/internal/i18n"
	"coindeck/internal/reconcile"
	"coindeck/internal/store"
)

// Registry holds one rendered card per live entity, keyed the same way the
// store keys the entity. Patches from the reconciliation engine re-render
// only the affected cards; everything else is reused as-is.
type Registry struct {
	store *store.Store

	holdings   map[string]map[string]string // exchange -> market
	orders     map[string]map[string]string // exchange -> order id
	aggregates map[string]string
	tabs       string
}

// NewRegistry creates a registry over the store.
func NewRegistry(st *store.Store) *Registry {
	return &Registry{
		store:      st,
		holdings:   make(map[string]map[string]string),
		orders:     make(map[string]map[string]string),
		aggregates: make(map[string]string),
	}
}

// Apply consumes engine patches in order. Command and notice patches are the
// UI layer's concern and are skipped here.
func (r *Registry) Apply(patches []reconcile.Patch) {
	for _, p := range patches {
		switch p.Kind {
		case reconcile.KindHolding:
			r.applyHolding(p)
		case reconcile.KindOrder:
			r.applyOrder(p)
		case reconcile.KindTabs:
			r.tabs = RenderTabs(r.store.Exchanges(), r.store.ActiveExchange())
		case reconcile.KindAggregate:
			r.applyAggregate(p)
		case reconcile.KindLog, reconcile.KindCommand, reconcile.KindNotice:
			// logs render from the store on demand; command/notice
			// belong to the interaction layer
		}
	}
}

func (r *Registry) applyHolding(p reconcile.Patch) {
	switch p.Op {
	case reconcile.OpReset:
		delete(r.holdings, p.Exchange)
	case reconcile.OpRemove:
		delete(r.holdings[p.Exchange], p.Key)
	case reconcile.OpPut:
		h := r.store.Holding(p.Exchange, p.Key)
		cfg, ok := r.store.Config(p.Exchange)
		if h == nil || !ok {
			return
		}
		cards, exists := r.holdings[p.Exchange]
		if !exists {
			cards = make(map[string]string)
			r.holdings[p.Exchange] = cards
		}
		cards[p.Key] = RenderHoldingCard(h, cfg)
	}
}

func (r *Registry) applyOrder(p reconcile.Patch) {
	switch p.Op {
	case reconcile.OpReset:
		delete(r.orders, p.Exchange)
	case reconcile.OpRemove:
		delete(r.orders[p.Exchange], p.Key)
	case reconcile.OpPut:
		r.renderOrder(p.Exchange, p.Key)
	}
}

func (r *Registry) renderOrder(exchange, id string) {
	o := r.store.Order(exchange, id)
	cfg, ok := r.store.Config(exchange)
	if o == nil || !ok {
		return
	}
	cards, exists := r.orders[exchange]
	if !exists {
		cards = make(map[string]string)
		r.orders[exchange] = cards
	}
	cards[id] = RenderOrderCard(o, r.store.Price(exchange, o.Symbol), r.store.Selected(exchange, id), cfg)
}

func (r *Registry) applyAggregate(p reconcile.Patch) {
	cfg, ok := r.store.Config(p.Exchange)
	if !ok {
		return
	}
	r.aggregates[p.Exchange] = RenderAggregate(i18n.T("total.label"), r.store.Total(p.Exchange), cfg)
}

// InvalidateOrder re-renders one order card, used when its selection state
// flips without a server event.
func (r *Registry) InvalidateOrder(exchange, id string) {
	r.renderOrder(exchange, id)
}

// Tabs returns the rendered exchange tab bar.
func (r *Registry) Tabs() string {
	if r.tabs == "" {
		r.tabs = RenderTabs(r.store.Exchanges(), r.store.ActiveExchange())
	}
	return r.tabs
}

// Aggregate returns the total-value line of an exchange.
func (r *Registry) Aggregate(exchange string) string {
	if line, ok := r.aggregates[exchange]; ok {
		return line
	}
	cfg, ok := r.store.Config(exchange)
	if !ok {
		return ""
	}
	line := RenderAggregate(i18n.T("total.label"), r.store.Total(exchange), cfg)
	r.aggregates[exchange] = line
	return line
}

// HoldingsSection assembles the holdings pane of an exchange in store
// order, rendering any card missing from the cache.
func (r *Registry) HoldingsSection(exchange string) string {
	holdings := r.store.HoldingsFor(exchange)
	if len(holdings) == 0 {
		return dimStyle.Render(i18n.T("holdings.empty"))
	}
	cfg, ok := r.store.Config(exchange)
	if !ok {
		return dimStyle.Render(i18n.T("holdings.empty"))
	}

	cards, exists := r.holdings[exchange]
	if !exists {
		cards = make(map[string]string)
		r.holdings[exchange] = cards
	}
	blocks := make([]string, 0, len(holdings))
	for _, h := range holdings {
		card, ok := cards[h.Market]
		if !ok {
			card = RenderHoldingCard(h, cfg)
			cards[h.Market] = card
		}
		blocks = append(blocks, card)
	}
	return strings.Join(blocks, "\n")
}

// OrdersSection assembles the order pane newest first, marking the cursor
// row. A cursor below zero draws no marker.
func (r *Registry) OrdersSection(exchange string, cursor int) string {
	ids := r.store.OrderIDsFor(exchange)
	if len(ids) == 0 {
		return dimStyle.Render(i18n.T("orders.empty"))
	}

	blocks := make([]string, 0, len(ids))
	for i, id := range ids {
		card, ok := r.orders[exchange][id]
		if !ok {
			r.renderOrder(exchange, id)
			card = r.orders[exchange][id]
		}
		marker := "  "
		if i == cursor {
			marker = titleStyle.Render("▸ ")
		}
		blocks = append(blocks, lipgloss.JoinHorizontal(lipgloss.Top, marker, card))
	}
	return strings.Join(blocks, "\n")
}

// LogsSection assembles up to limit visible log lines, newest first.
// Success-tagged entries are filtered out.
func (r *Registry) LogsSection(exchange string, limit int) string {
	var lines []string
	for _, e := range r.store.LogsFor(exchange) {
		if e.Hidden() {
			continue
		}
		lines = append(lines, RenderLogLine(e))
		if limit > 0 && len(lines) >= limit {
			break
		}
	}
	if len(lines) == 0 {
		return dimStyle.Render(i18n.T("logs.empty"))
	}
	return strings.Join(lines, "\n")
}
