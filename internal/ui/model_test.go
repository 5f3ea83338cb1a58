package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"coindeck/internal/domain"
	"coindeck/internal/i18n"
	"coindeck/internal/protocol"
	"coindeck/internal/reconcile"
	"coindeck/internal/store"
	"coindeck/internal/transport"
	"coindeck/internal/view"
)

func TestMain(m *testing.M) {
	i18n.Init("en-US")
	m.Run()
}

type fakeSender struct {
	sent []any
	down bool
}

func (f *fakeSender) Send(v any) bool {
	if f.down {
		return false
	}
	f.sent = append(f.sent, v)
	return true
}

func newTestModel(t *testing.T) (Model, *store.Store, *fakeSender) {
	t.Helper()
	st := store.New()
	st.SetExchanges([]string{"binance", "upbit"})
	st.SetConfig(domain.ExchangeConfig{Name: "binance", QuoteCurrency: "USDT", ValueDecimalPlaces: 2})
	st.SetConfig(domain.ExchangeConfig{Name: "upbit", QuoteCurrency: "KRW", ValueDecimalPlaces: 0})

	eng := reconcile.New(st, nil)
	reg := view.NewRegistry(st)
	sender := &fakeSender{}
	return New(st, eng, reg, sender, make(chan any)), st, sender
}

func seedOrders(st *store.Store) {
	st.ReplaceOrders("binance", []domain.Order{
		{ID: "o1", Exchange: "binance", Symbol: "BTC/USDT", Side: domain.SideBuy,
			Price: decimal.NewFromInt(24000), Amount: decimal.NewFromInt(1), Timestamp: 2000},
		{ID: "o2", Exchange: "binance", Symbol: "ETH/USDT", Side: domain.SideSell,
			Price: decimal.NewFromInt(1900), Amount: decimal.NewFromInt(3), Timestamp: 1000},
	})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func deliver(m Model, event any) Model {
	next, _ := m.Update(serverEventMsg{event: event})
	return next.(Model)
}

func TestCancelWithNothingSelectedShowsAlert(t *testing.T) {
	m, st, sender := newTestModel(t)
	seedOrders(st)

	m = press(m, "c")
	require.Empty(t, sender.sent)
	require.Contains(t, m.View(), i18n.T("alert.nothing_selected"))
}

func TestCancelSelectedSendsTargets(t *testing.T) {
	m, st, sender := newTestModel(t)
	seedOrders(st)

	m = press(m, "j", " ", "c")
	require.Len(t, sender.sent, 1)
	req, ok := sender.sent[0].(protocol.CancelOrders)
	require.True(t, ok)
	require.Equal(t, "binance", req.Exchange)
	require.Equal(t, []protocol.CancelTarget{{ID: "o1", Symbol: "BTC/USDT"}}, req.Orders)
}

func TestCancelAllSendsImmediately(t *testing.T) {
	m, _, sender := newTestModel(t)

	press(m, "C")
	require.Len(t, sender.sent, 1)
	req, ok := sender.sent[0].(protocol.CancelAllOrders)
	require.True(t, ok)
	require.Equal(t, "binance", req.Exchange)
}

func TestSendFailureShowsAlert(t *testing.T) {
	m, _, sender := newTestModel(t)
	sender.down = true

	m = press(m, "C")
	require.Contains(t, m.View(), i18n.T("alert.send_failed"))
}

func TestCommandBarSendsNlpCommand(t *testing.T) {
	m, _, sender := newTestModel(t)

	m = press(m, ":", "buy 1 btc", "enter")
	require.Len(t, sender.sent, 1)
	req, ok := sender.sent[0].(protocol.NlpCommand)
	require.True(t, ok)
	require.Equal(t, "buy 1 btc", req.Text)
	require.Equal(t, "binance", req.Exchange)
}

func TestCommandBarEscSendsNothing(t *testing.T) {
	m, _, sender := newTestModel(t)

	m = press(m, ":", "sell it all", "esc")
	require.Empty(t, sender.sent)

	// keys work again after leaving the command bar
	press(m, "C")
	require.Len(t, sender.sent, 1)
}

func TestTradeConfirmExecutesOnYes(t *testing.T) {
	m, st, sender := newTestModel(t)
	amount := "0.5"
	cmd := domain.TradeCommand{Intent: "buy", Symbol: "BTC/USDT", OrderType: "market", Amount: &amount}

	m = deliver(m, &protocol.NlpTradeConfirm{Command: cmd})
	require.Contains(t, m.View(), "BUY")

	m = press(m, "y")
	require.Len(t, sender.sent, 1)
	req, ok := sender.sent[0].(protocol.NlpExecute)
	require.True(t, ok)
	require.Equal(t, cmd, req.Command)
	require.Nil(t, st.PendingCommand())
}

func TestTradeConfirmDismissOnNo(t *testing.T) {
	m, st, sender := newTestModel(t)
	cmd := domain.TradeCommand{Intent: "sell", Symbol: "ETH/USDT", OrderType: "market"}

	m = deliver(m, &protocol.NlpTradeConfirm{Command: cmd})
	m = press(m, "n")
	require.Empty(t, sender.sent)
	require.Nil(t, st.PendingCommand())
	require.NotContains(t, m.View(), "SELL")
}

func TestNewConfirmReplacesPending(t *testing.T) {
	m, st, _ := newTestModel(t)

	first := domain.TradeCommand{Intent: "buy", Symbol: "BTC/USDT", OrderType: "market"}
	second := domain.TradeCommand{Intent: "sell", Symbol: "ETH/USDT", OrderType: "limit"}
	m = deliver(m, &protocol.NlpTradeConfirm{Command: first})
	m = deliver(m, &protocol.NlpTradeConfirm{Command: second})

	require.Equal(t, &second, st.PendingCommand())
}

func TestTabCyclesExchange(t *testing.T) {
	m, st, _ := newTestModel(t)

	m = press(m, "tab")
	require.Equal(t, "upbit", st.ActiveExchange())
	m = press(m, "tab")
	require.Equal(t, "binance", st.ActiveExchange())
	m = press(m, "shift+tab")
	require.Equal(t, "upbit", st.ActiveExchange())
}

func TestNlpErrorSurfacesNotice(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = deliver(m, &protocol.NlpError{Message: "could not parse amount"})
	require.Contains(t, m.View(), "could not parse amount")
}

func TestAuthRejectionQuits(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, cmd := m.Update(serverEventMsg{event: transport.StatusAuthRejected})
	m = next.(Model)
	require.NotNil(t, cmd)
	require.Contains(t, m.View(), i18n.T("alert.auth_failed"))
}

func TestCursorClampsToOrderCount(t *testing.T) {
	m, st, _ := newTestModel(t)
	seedOrders(st)

	m = press(m, "j", "j", "j", "j")
	require.Equal(t, 1, m.cursor)
	m = press(m, "k", "k", "k")
	require.Equal(t, 0, m.cursor)

	st.ReplaceOrders("binance", nil)
	m = deliver(m, &protocol.OrdersUpdate{})
	require.Equal(t, -1, m.cursor)
}
