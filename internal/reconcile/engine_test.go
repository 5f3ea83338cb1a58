package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"coindeck/internal/domain"
	"coindeck/internal/protocol"
	"coindeck/internal/store"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func num(s string) protocol.Number {
	return protocol.Number{Decimal: dec(s)}
}

func numPtr(s string) *protocol.Number {
	n := num(s)
	return &n
}

func newTestEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()
	st := store.New()
	e := New(st, nil)
	e.ApplyExchangesList([]string{"binance", "upbit"})
	e.ApplyValueFormat(&protocol.ValueFormat{
		Exchange: "binance", ValueDecimalPlaces: 3, QuoteCurrency: "USDT",
	})
	e.ApplyValueFormat(&protocol.ValueFormat{
		Exchange: "upbit", ValueDecimalPlaces: 0, QuoteCurrency: "KRW",
	})
	return e, st
}

func portfolioBtc(free, avg string) *protocol.PortfolioUpdate {
	return &protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "binance",
		Free: num(free), Locked: num("0"),
		AvgBuyPrice: numPtr(avg),
	}
}

func priceBtc(p string) *protocol.PriceUpdate {
	return &protocol.PriceUpdate{Symbol: "BTC/USDT", Exchange: "binance", Price: num(p)}
}

func containsPatch(patches []Patch, kind Kind, op Op, key string) bool {
	for _, p := range patches {
		if p.Kind == kind && p.Op == op && p.Key == key {
			return true
		}
	}
	return false
}

func TestScenarioPortfolioThenPrice(t *testing.T) {
	e, st := newTestEngine(t)

	patches := e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))
	require.True(t, containsPatch(patches, KindHolding, OpPut, "BTC/USDT"))

	patches = e.ApplyPriceUpdate(priceBtc("25000"))
	require.True(t, containsPatch(patches, KindHolding, OpPut, "BTC/USDT"))

	h := st.Holding("binance", "BTC/USDT")
	require.NotNil(t, h)
	require.True(t, h.Value().Equal(dec("25000")))

	pnl := h.UnrealizedPnl()
	require.NotNil(t, pnl)
	require.True(t, pnl.Equal(dec("5000")), "expected unrealized PnL 5000, got %s", pnl)

	roi := h.Roi()
	require.NotNil(t, roi)
	require.True(t, roi.Equal(dec("25")), "expected ROI 25%%, got %s", roi)
}

func TestPriceLastWriteWins(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))

	for _, p := range []string{"24000", "26000", "25000"} {
		e.ApplyPriceUpdate(priceBtc(p))
		// interleave another symbol
		e.ApplyPriceUpdate(&protocol.PriceUpdate{Symbol: "ETH/USDT", Exchange: "binance", Price: num("1600")})
	}

	require.True(t, st.Holding("binance", "BTC/USDT").Price.Equal(dec("25000")))
	require.True(t, st.Price("binance", "BTC/USDT").Equal(dec("25000")))
}

func TestPortfolioBeforeConfigDropped(t *testing.T) {
	st := store.New()
	e := New(st, nil)

	patches := e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "kraken", Free: num("1"),
	})
	require.Nil(t, patches)
	require.Nil(t, st.Holding("kraken", "BTC/USD"))
}

func TestAggregateInvariant(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))
	e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "ETH", Exchange: "binance", Free: num("10"), Locked: num("0"),
	})
	e.ApplyPriceUpdate(priceBtc("25000"))
	e.ApplyPriceUpdate(&protocol.PriceUpdate{Symbol: "ETH/USDT", Exchange: "binance", Price: num("1500")})

	var sum decimal.Decimal
	var shareSum decimal.Decimal
	for _, h := range st.HoldingsFor("binance") {
		sum = sum.Add(h.Value())
		require.NotNil(t, h.Share)
		shareSum = shareSum.Add(*h.Share)
	}
	require.True(t, st.Total("binance").Equal(sum), "displayed total must equal the sum of holding values")
	require.True(t, shareSum.Sub(dec("100")).Abs().LessThan(dec("0.0001")), "shares must sum to 100, got %s", shareSum)
}

func TestZeroTotalLeavesShareUnset(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyFollows("binance", []string{"BTC"})
	e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "binance", Free: num("0"), Locked: num("0"),
	})

	h := st.Holding("binance", "BTC/USDT")
	require.NotNil(t, h)
	require.True(t, h.Empty)
	require.Nil(t, h.Share, "zero total must not produce a share")
	require.True(t, st.Total("binance").IsZero())
}

func TestRemoveHoldingLowersTotal(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))
	e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "ETH", Exchange: "binance", Free: num("10"),
	})
	e.ApplyPriceUpdate(priceBtc("25000"))
	e.ApplyPriceUpdate(&protocol.PriceUpdate{Symbol: "ETH/USDT", Exchange: "binance", Price: num("1500")})
	require.True(t, st.Total("binance").Equal(dec("40000")))

	patches := e.ApplyRemoveHolding("BTC", "binance")
	require.True(t, containsPatch(patches, KindHolding, OpRemove, "BTC/USDT"))
	require.Nil(t, st.Holding("binance", "BTC/USDT"))
	require.True(t, st.Total("binance").Equal(dec("15000")))
}

func TestZeroBalanceUnfollowedRemoved(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))

	patches := e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "binance", Free: num("0"), Locked: num("0"),
	})
	require.True(t, containsPatch(patches, KindHolding, OpRemove, "BTC/USDT"))
	require.Nil(t, st.Holding("binance", "BTC/USDT"))
}

func TestZeroBalanceFollowedKeptEmpty(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyFollows("binance", []string{"BTC"})
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))

	patches := e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "binance", Free: num("0"), Locked: num("0"),
	})
	require.True(t, containsPatch(patches, KindHolding, OpPut, "BTC/USDT"))

	h := st.Holding("binance", "BTC/USDT")
	require.NotNil(t, h)
	require.True(t, h.Empty)
	require.True(t, h.Total().IsZero())
}

func TestUnfollowDropsEmptyHolding(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyFollows("binance", []string{"BTC"})
	e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "BTC", Exchange: "binance", Free: num("0"),
	})
	require.NotNil(t, st.Holding("binance", "BTC/USDT"))

	patches := e.ApplyFollows("binance", nil)
	require.True(t, containsPatch(patches, KindHolding, OpRemove, "BTC/USDT"))
	require.Nil(t, st.Holding("binance", "BTC/USDT"))
}

func ordersSnapshot(infos ...protocol.OrderInfo) *protocol.OrdersUpdate {
	return &protocol.OrdersUpdate{Data: infos}
}

func orderInfo(id, symbol, side string, ts int64) protocol.OrderInfo {
	return protocol.OrderInfo{
		ID: id, Exchange: "binance", Symbol: symbol, Side: side,
		Price: protocol.Number{Decimal: dec("100")}, Amount: protocol.Number{Decimal: dec("1")},
		Timestamp: ts,
	}
}

func TestOrdersSnapshotDiffAndIdempotence(t *testing.T) {
	e, st := newTestEngine(t)

	patches := e.ApplyOrdersSnapshot(ordersSnapshot(
		orderInfo("a", "BTC/USDT", "buy", 100),
		orderInfo("b", "ETH/USDT", "sell", 200),
	))
	require.True(t, containsPatch(patches, KindOrder, OpPut, "a"))
	require.True(t, containsPatch(patches, KindOrder, OpPut, "b"))
	require.Equal(t, []string{"b", "a"}, st.OrderIDsFor("binance"))

	st.ToggleSelected("binance", "a")

	// applying the identical snapshot again changes nothing and patches
	// nothing
	patches = e.ApplyOrdersSnapshot(ordersSnapshot(
		orderInfo("a", "BTC/USDT", "buy", 100),
		orderInfo("b", "ETH/USDT", "sell", 200),
	))
	require.Empty(t, patches)
	require.Equal(t, []string{"b", "a"}, st.OrderIDsFor("binance"))
	require.True(t, st.Selected("binance", "a"))

	// a filled amount change patches exactly the changed order
	changed := orderInfo("a", "BTC/USDT", "buy", 100)
	changed.Filled = num("0.5")
	patches = e.ApplyOrdersSnapshot(ordersSnapshot(
		changed,
		orderInfo("b", "ETH/USDT", "sell", 200),
	))
	require.True(t, containsPatch(patches, KindOrder, OpPut, "a"))
	require.False(t, containsPatch(patches, KindOrder, OpPut, "b"))

	// a shrunk snapshot removes the missing id
	patches = e.ApplyOrdersSnapshot(ordersSnapshot(orderInfo("b", "ETH/USDT", "sell", 200)))
	require.True(t, containsPatch(patches, KindOrder, OpRemove, "a"))
	require.Equal(t, []string{"b"}, st.OrderIDsFor("binance"))
}

func TestEmptyOrdersSnapshotClearsEveryExchange(t *testing.T) {
	e, st := newTestEngine(t)
	upbitOrder := orderInfo("u1", "BTC/KRW", "buy", 150)
	upbitOrder.Exchange = "upbit"
	e.ApplyOrdersSnapshot(ordersSnapshot(orderInfo("a", "BTC/USDT", "buy", 100), upbitOrder))
	require.Len(t, st.OrderIDsFor("binance"), 1)
	require.Len(t, st.OrderIDsFor("upbit"), 1)

	// an empty snapshot names no exchange; no book may keep stale orders
	patches := e.ApplyOrdersSnapshot(ordersSnapshot())
	require.True(t, containsPatch(patches, KindOrder, OpRemove, "a"))
	require.True(t, containsPatch(patches, KindOrder, OpRemove, "u1"))
	require.Empty(t, st.OrderIDsFor("binance"))
	require.Empty(t, st.OrderIDsFor("upbit"))
}

func TestPriceUpdateTouchesOnlyReferencingOrders(t *testing.T) {
	e, _ := newTestEngine(t)
	e.ApplyOrdersSnapshot(ordersSnapshot(
		orderInfo("a", "BTC/USDT", "buy", 100),
		orderInfo("b", "ETH/USDT", "sell", 200),
	))

	patches := e.ApplyPriceUpdate(priceBtc("25000"))
	require.True(t, containsPatch(patches, KindOrder, OpPut, "a"))
	require.False(t, containsPatch(patches, KindOrder, OpPut, "b"),
		"orders on other symbols must not be patched")
}

func TestReferenceSnapshotRecomputesChange(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))
	e.ApplyPriceUpdate(priceBtc("25000"))

	h := st.Holding("binance", "BTC/USDT")
	require.Nil(t, h.ChangePercent, "no baseline yet")

	patches := e.ApplyReferenceSnapshot(&protocol.ReferencePriceInfo{
		Time:   "2026-08-27T00:00:00+00:00",
		Prices: map[string]map[string]protocol.Number{"binance": {"BTC": num("20000")}},
	})
	require.True(t, containsPatch(patches, KindHolding, OpPut, "BTC/USDT"))
	require.NotNil(t, h.ChangePercent)
	require.True(t, h.ChangePercent.Equal(dec("25")))
}

func TestServerPercentagePreferred(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))

	e.ApplyPriceUpdate(&protocol.PriceUpdate{
		Symbol: "BTC/USDT", Exchange: "binance", Price: num("25000"), Percentage: numPtr("3.5"),
	})
	h := st.Holding("binance", "BTC/USDT")
	require.NotNil(t, h.ChangePercent)
	require.True(t, h.ChangePercent.Equal(dec("3.5")))
}

func TestLogSuccessStoredButNotDisplayed(t *testing.T) {
	e, st := newTestEngine(t)

	patches := e.ApplyLog(&protocol.Log{
		Exchange: "binance", Timestamp: "2026-08-27T10:00:00+00:00",
		Message: protocol.LogPayload{Status: "success", Message: "order filled"},
	})
	require.Nil(t, patches, "success entries are never displayed")
	require.Len(t, st.LogsFor("binance"), 1)

	patches = e.ApplyLog(&protocol.Log{
		Exchange: "binance", Timestamp: "2026-08-27T10:00:01+00:00",
		Message: protocol.LogPayload{Status: "open", Symbol: "BTC/USDT", Side: "buy"},
	})
	require.True(t, containsPatch(patches, KindLog, OpPut, ""))
}

func TestLogReplayIsIdempotent(t *testing.T) {
	e, st := newTestEngine(t)
	frame := &protocol.Log{
		Exchange: "binance", Timestamp: "2026-08-27T10:00:00+00:00",
		Message: protocol.LogPayload{
			Status: "open", Symbol: "BTC/USDT", Side: "buy",
			Price: numPtr("25000"), Amount: numPtr("0.5"),
		},
	}

	patches := e.ApplyLog(frame)
	require.True(t, containsPatch(patches, KindLog, OpPut, ""))

	// the server replays its full log cache on every connect; the replayed
	// frame must not duplicate the entry or redraw the pane
	require.Nil(t, e.ApplyLog(frame))
	require.Len(t, st.LogsFor("binance"), 1)

	later := &protocol.Log{
		Exchange: "binance", Timestamp: "2026-08-27T10:00:05+00:00",
		Message: protocol.LogPayload{
			Status: "open", Symbol: "BTC/USDT", Side: "buy",
			Price: numPtr("25000"), Amount: numPtr("0.5"),
		},
	}
	require.NotNil(t, e.ApplyLog(later))
	require.Len(t, st.LogsFor("binance"), 2)
}

func TestTradeConfirmReplacesPending(t *testing.T) {
	e, st := newTestEngine(t)

	e.ApplyTradeConfirm(domain.TradeCommand{Intent: "buy", Symbol: "BTC/USDT"})
	e.ApplyTradeConfirm(domain.TradeCommand{Intent: "sell", Symbol: "ETH/USDT"})

	cmd := st.PendingCommand()
	require.NotNil(t, cmd)
	require.Equal(t, "sell", cmd.Intent)
}

func TestSetActiveExchangeResetsSections(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(portfolioBtc("1.0", "20000"))

	patches := e.SetActiveExchange("upbit")
	require.Equal(t, "upbit", st.ActiveExchange())
	require.True(t, containsPatch(patches, KindTabs, OpReset, ""))
	require.True(t, containsPatch(patches, KindHolding, OpReset, ""))
	require.True(t, containsPatch(patches, KindOrder, OpReset, ""))
	require.True(t, containsPatch(patches, KindLog, OpReset, ""))
	// switching back: binance state is still cached
	e.SetActiveExchange("binance")
	require.NotNil(t, st.Holding("binance", "BTC/USDT"))
}

func TestQuoteCurrencyHoldingPinnedToOne(t *testing.T) {
	e, st := newTestEngine(t)
	e.ApplyPortfolioUpdate(&protocol.PortfolioUpdate{
		Symbol: "USDT", Exchange: "binance", Free: num("500"),
	})

	h := st.Holding("binance", "USDT/USDT")
	require.NotNil(t, h)
	require.True(t, h.Price.Equal(dec("1")))
	require.True(t, h.Value().Equal(dec("500")))
}
