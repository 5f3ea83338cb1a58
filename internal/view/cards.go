package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"coindeck/internal/domain"
)

func signed(d *decimal.Decimal, text string) string {
	if d == nil {
		return dimStyle.Render(Placeholder)
	}
	if d.IsNegative() {
		return lossStyle.Render(text)
	}
	return gainStyle.Render(text)
}

// RenderHoldingCard draws one holding as a bordered card. Empty holdings
// (zero balance kept for tracking) render faint and borderless.
func RenderHoldingCard(h *domain.Holding, cfg domain.ExchangeConfig) string {
	header := symbolStyle.Render(h.Market)
	header += "  " + signed(h.ChangePercent, FormatOptPercent(h.ChangePercent))

	amount := fmt.Sprintf("amount %s", FormatAmount(h.Total()))
	if h.Locked.IsPositive() {
		amount += dimStyle.Render(fmt.Sprintf(" (free %s / locked %s)",
			FormatAmount(h.Free), FormatAmount(h.Locked)))
	}

	value := fmt.Sprintf("price %s · value %s · %s",
		FormatAmount(h.Price),
		FormatQuote(h.Value(), cfg),
		FormatOptPercent(h.Share))

	pnl := h.UnrealizedPnl()
	profit := fmt.Sprintf("avg %s · pnl %s · roi %s",
		FormatOptAmount(h.AvgBuyPrice),
		signed(pnl, FormatOptAmount(pnl)),
		signed(h.Roi(), FormatOptPercent(h.Roi())))

	body := strings.Join([]string{header, amount, value, profit}, "\n")
	if h.Empty {
		return emptyCardStyle.Render(body)
	}
	return cardStyle.Render(body)
}

// RenderOrderCard draws one open order. The checkbox reflects the user's
// selection, the diff column how far the order sits from the market.
func RenderOrderCard(o *domain.Order, currentPrice decimal.Decimal, selected bool, cfg domain.ExchangeConfig) string {
	mark := unselectedMark
	if selected {
		mark = selectedMark
	}

	side := gainStyle.Render("BUY ")
	if o.Side == domain.SideSell {
		side = lossStyle.Render("SELL")
	}

	header := fmt.Sprintf("%s %s %s  %s", mark, side, symbolStyle.Render(o.Symbol),
		dimStyle.Render(FormatClock(time.UnixMilli(o.Timestamp))))

	diff := o.PriceDiff(currentPrice)
	detail := fmt.Sprintf("price %s · amount %s/%s · diff %s",
		FormatAmount(o.Price),
		FormatAmount(o.Filled),
		FormatAmount(o.Amount),
		signed(diff, FormatOptPercent(diff)))

	lines := []string{header, detail}
	if o.StopPrice != nil {
		stop := fmt.Sprintf("stop %s", FormatAmount(*o.StopPrice))
		if o.Triggered {
			stop += " " + lossStyle.Render("(triggered)")
		}
		lines = append(lines, stop)
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// RenderLogLine draws one activity record as a single line.
func RenderLogLine(e domain.LogEntry) string {
	parts := []string{
		dimStyle.Render(FormatClock(e.Timestamp)),
		symbolStyle.Render(e.Status),
	}
	if e.Symbol != "" {
		parts = append(parts, e.Symbol)
	}
	if e.Price != nil || e.Amount != nil {
		parts = append(parts, fmt.Sprintf("%s × %s", FormatOptAmount(e.Price), FormatOptAmount(e.Amount)))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Reason != "" {
		parts = append(parts, dimStyle.Render(e.Reason))
	}
	return strings.Join(parts, " ")
}

// RenderTabs draws the exchange tab bar.
func RenderTabs(exchanges []string, active string) string {
	tabs := make([]string, 0, len(exchanges))
	for _, name := range exchanges {
		if name == active {
			tabs = append(tabs, tabActiveStyle.Render(name))
			continue
		}
		tabs = append(tabs, tabInactiveStyle.Render(name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// RenderAggregate draws the total-value line for an exchange.
func RenderAggregate(label string, total decimal.Decimal, cfg domain.ExchangeConfig) string {
	return titleStyle.Render(label) + " " + symbolStyle.Render(FormatQuote(total, cfg))
}
