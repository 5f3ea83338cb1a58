// Package ui drives the terminal dashboard: one bubbletea model that owns
// the event loop. Every inbound server event is reconciled synchronously
// inside Update, so the store, engine and render caches are never touched
// from more than one goroutine.
package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"coindeck/internal/domain"
	"coindeck/internal/i18n"
	"coindeck/internal/protocol"
	"coindeck/internal/reconcile"
	"coindeck/internal/store"
	"coindeck/internal/transport"
	"coindeck/internal/view"
)

// Sender pushes outbound messages to the server. Send reports false when
// the session is down.
type Sender interface {
	Send(v any) bool
}

type mode int

const (
	modeBrowse mode = iota
	modeCommand
	modeConfirm
)

// serverEventMsg wraps one decoded frame or transport status change.
type serverEventMsg struct {
	event any
}

// eventsClosedMsg means the transport shut down for good.
type eventsClosedMsg struct{}

const logPaneLines = 8

// Model is the dashboard's single bubbletea model.
type Model struct {
	store    *store.Store
	engine   *reconcile.Engine
	registry *view.Registry
	sender   Sender
	events   <-chan any

	mode   mode
	cursor int
	input  textinput.Model

	status string
	notice string
	width  int
	done   bool
}

// New wires the model over an already constructed store, engine and
// registry. The events channel carries decoded frames from the transport.
func New(st *store.Store, eng *reconcile.Engine, reg *view.Registry, sender Sender, events <-chan any) Model {
	input := textinput.New()
	input.Prompt = ": "
	input.Placeholder = i18n.T("command.prompt")
	input.CharLimit = 200

	return Model{
		store:    st,
		engine:   eng,
		registry: reg,
		sender:   sender,
		events:   events,
		cursor:   -1,
		input:    input,
		status:   i18n.T("status.connecting"),
	}
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return eventsClosedMsg{}
		}
		return serverEventMsg{event: event}
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case serverEventMsg:
		return m.handleServerEvent(msg.event)

	case eventsClosedMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch m.mode {
		case modeCommand:
			return m.updateCommand(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m Model) handleServerEvent(event any) (tea.Model, tea.Cmd) {
	if status, ok := event.(transport.Status); ok {
		switch status {
		case transport.StatusConnected:
			m.status = i18n.T("status.connected")
		case transport.StatusDisconnected:
			m.status = i18n.T("status.reconnecting")
		case transport.StatusAuthRejected:
			m.notice = i18n.T("alert.auth_failed")
			m.done = true
			return m, tea.Quit
		}
		return m, m.waitForEvent()
	}

	patches := m.engine.Apply(event)
	m.registry.Apply(patches)
	for _, p := range patches {
		switch p.Kind {
		case reconcile.KindCommand:
			m.mode = modeConfirm
		case reconcile.KindNotice:
			m.notice = p.Key
		}
	}
	m.clampCursor()
	return m, m.waitForEvent()
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	active := m.store.ActiveExchange()

	switch msg.String() {
	case "q", "ctrl+c":
		m.done = true
		return m, tea.Quit

	case "tab":
		m.switchExchange(1)
	case "shift+tab":
		m.switchExchange(-1)

	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)

	case " ":
		ids := m.store.OrderIDsFor(active)
		if m.cursor >= 0 && m.cursor < len(ids) {
			m.store.ToggleSelected(active, ids[m.cursor])
			m.registry.InvalidateOrder(active, ids[m.cursor])
		}

	case "c":
		m.cancelSelected(active)
	case "C":
		m.send(protocol.NewCancelAllOrders(active))

	case ":":
		m.mode = modeCommand
		m.input.SetValue("")
		m.input.Focus()
	}
	return m, nil
}

func (m *Model) cancelSelected(exchange string) {
	selected := m.store.SelectedOrders(exchange)
	if len(selected) == 0 {
		m.notice = i18n.T("alert.nothing_selected")
		return
	}
	targets := make([]protocol.CancelTarget, 0, len(selected))
	for _, o := range selected {
		targets = append(targets, protocol.CancelTarget{ID: o.ID, Symbol: o.Symbol})
	}
	m.send(protocol.NewCancelOrders(exchange, targets))
}

func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text != "" {
			m.send(protocol.NewNlpCommand(m.store.ActiveExchange(), text))
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if cmd := m.store.TakePendingCommand(); cmd != nil {
			m.send(protocol.NewNlpExecute(m.store.ActiveExchange(), *cmd))
		}
		m.mode = modeBrowse
	case "n", "N", "esc":
		m.store.TakePendingCommand()
		m.mode = modeBrowse
	}
	return m, nil
}

// send pushes one outbound message, surfacing a localized alert when the
// session is down.
func (m *Model) send(v any) {
	if !m.sender.Send(v) {
		m.notice = i18n.T("alert.send_failed")
	}
}

func (m *Model) switchExchange(step int) {
	exchanges := m.store.Exchanges()
	if len(exchanges) < 2 {
		return
	}
	active := m.store.ActiveExchange()
	idx := 0
	for i, name := range exchanges {
		if name == active {
			idx = i
			break
		}
	}
	next := exchanges[(idx+step+len(exchanges))%len(exchanges)]
	m.registry.Apply(m.engine.SetActiveExchange(next))
	m.cursor = -1
	m.clampCursor()
}

func (m *Model) moveCursor(step int) {
	count := len(m.store.OrderIDsFor(m.store.ActiveExchange()))
	if count == 0 {
		m.cursor = -1
		return
	}
	if m.cursor < 0 {
		m.cursor = 0
		return
	}
	m.cursor += step
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= count {
		m.cursor = count - 1
	}
}

func (m *Model) clampCursor() {
	count := len(m.store.OrderIDsFor(m.store.ActiveExchange()))
	if count == 0 {
		m.cursor = -1
	} else if m.cursor >= count {
		m.cursor = count - 1
	}
}

func (m Model) View() string {
	if m.done {
		if m.notice != "" {
			return m.notice + "\n"
		}
		return ""
	}

	active := m.store.ActiveExchange()

	sections := []string{
		m.registry.Tabs(),
		m.registry.Aggregate(active),
		sectionTitle(i18n.T("holdings.title")),
		m.registry.HoldingsSection(active),
		sectionTitle(i18n.T("orders.title")),
		m.registry.OrdersSection(active, m.orderCursor()),
		sectionTitle(i18n.T("logs.title")),
		m.registry.LogsSection(active, logPaneLines),
	}

	switch m.mode {
	case modeCommand:
		sections = append(sections, m.input.View(), hintLine(i18n.T("command.hint")))
	case modeConfirm:
		sections = append(sections, m.confirmView())
	default:
		sections = append(sections, statusLine(m.status, m.notice), hintLine(i18n.T("keys.help")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// orderCursor hides the cursor while a modal owns the keyboard.
func (m Model) orderCursor() int {
	if m.mode != modeBrowse {
		return -1
	}
	return m.cursor
}

func (m Model) confirmView() string {
	cmd := m.store.PendingCommand()
	if cmd == nil {
		return ""
	}
	return renderConfirm(i18n.T("confirm.title"), cmd, i18n.T("confirm.hint"))
}

func renderConfirm(title string, cmd *domain.TradeCommand, hint string) string {
	parts := []string{strings.ToUpper(cmd.Intent), cmd.Symbol, cmd.OrderType}
	if cmd.Amount != nil {
		parts = append(parts, "x "+*cmd.Amount)
	}
	if cmd.Price != nil {
		parts = append(parts, "@ "+*cmd.Price)
	}
	if cmd.StopPrice != nil {
		parts = append(parts, "stop "+*cmd.StopPrice)
	}
	body := sectionTitle(title) + "\n" + strings.Join(parts, " ") + "\n" + hintLine(hint)
	return modalStyle.Render(body)
}
