package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/w3dash/internal/ingest"
	"github.com/Mohsinsiddi/w3dash/internal/session"
	"github.com/Mohsinsiddi/w3dash/internal/store"
	"github.com/Mohsinsiddi/w3dash/internal/token"
)

// DashboardDeps wires the stores and services the dashboard renders.
type DashboardDeps struct {
	Session     *session.Session
	Balances    *store.BalanceStore
	History     *store.HistoryStore
	Tokens      *token.Registry
	Ingester    *ingest.Ingester
	ExplorerURL string
}

type dashboardModel struct {
	deps     DashboardDeps
	filter   int // 0 = all tokens, 1..n = single token
	spinStep int
	quitting bool
	errMsg   string
}

type storeChangedMsg struct{}
type refreshDoneMsg struct{ err error }
type spinTickMsg time.Time

// NewDashboard creates the Bubble Tea program for the live dashboard and
// subscribes it to store changes.
func NewDashboard(deps DashboardDeps) *tea.Program {
	p := tea.NewProgram(dashboardModel{deps: deps})
	notify := func() { go p.Send(storeChangedMsg{}) }
	deps.Balances.OnChange(notify)
	deps.History.OnChange(notify)
	return p
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), spinTick())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "t":
			m.filter = (m.filter + 1) % (len(m.deps.Tokens.All()) + 1)
		case "x", "esc":
			m.errMsg = ""
		}

	case storeChangedMsg:
		// Stores are read directly in View; the message only triggers a repaint.

	case refreshDoneMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}

	case spinTickMsg:
		m.spinStep++
		return m, spinTick()
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(m.viewHeader())

	if m.deps.Session.WrongNetwork() {
		sb.WriteString(StyleBanner.Render(fmt.Sprintf(
			"⚠ Wrong network: on chain %d, this dashboard requires chain %d",
			m.deps.Session.ChainID(), m.deps.Session.RequiredChainID())) + "\n\n")
	}

	if m.errMsg != "" {
		sb.WriteString(Err(m.errMsg) + Meta("  (x to dismiss)") + "\n\n")
	}

	sb.WriteString(m.viewBalances())
	sb.WriteString("\n")
	sb.WriteString(m.viewHistory())
	sb.WriteString("\n")
	sb.WriteString(Meta("r refresh · t token filter · q quit") + "\n")
	return sb.String()
}

func (m dashboardModel) viewHeader() string {
	account := m.deps.Session.Account()
	who := Meta("disconnected")
	if account != "" {
		who = Addr(TruncateAddr(account))
	}
	return StyleTitle.Render("⚡ Token Dashboard") + "  " + who + "\n\n"
}

func (m dashboardModel) viewBalances() string {
	t := NewTable([]Column{
		{Title: "Token", Width: 8},
		{Title: "Balance", Width: 24},
		{Title: "", Width: 22},
	})
	for _, tok := range m.visibleTokens() {
		b := m.deps.Balances.Balance(tok.Symbol)
		note := ""
		switch {
		case b.Err != "":
			note = StyleError.Render("stale")
		case b.Loading:
			note = SpinnerFrame(m.spinStep) + " loading"
		case b.Optimistic != b.Confirmed:
			note = StyleWarning.Render("~ pending")
		}
		t.AddRow(string(tok.Symbol), b.Optimistic, note)
	}
	return t.Render()
}

func (m dashboardModel) viewHistory() string {
	events := m.filteredEvents()

	var sb strings.Builder
	if m.deps.History.Loading() {
		sb.WriteString(Meta(SpinnerFrame(m.spinStep)+" refreshing history") + "\n")
	}
	if errMsg := m.deps.History.Err(); errMsg != "" {
		sb.WriteString(Err(errMsg) + "\n")
	}

	if len(events) == 0 {
		sb.WriteString(Meta("No events in the recent window.") + "\n")
		return sb.String()
	}

	t := NewTable([]Column{
		{Title: "Type", Width: 10},
		{Title: "Token", Width: 6},
		{Title: "Amount", Width: 16},
		{Title: "From", Width: 13},
		{Title: "To", Width: 13},
		{Title: "Status", Width: 12},
	})
	for _, ev := range events {
		cells := []string{
			string(ev.Type),
			string(ev.Token),
			ev.Amount,
			TruncateAddr(ev.From),
			TruncateAddr(ev.To),
			m.statusCell(ev.Status),
		}
		if ev.Status == store.StatusFailed {
			t.AddStyledRow(StyleFailed, cells...)
		} else {
			t.AddRow(cells...)
		}
	}
	sb.WriteString(t.Render())

	sum := m.deps.History.Summary()
	sb.WriteString(Meta(fmt.Sprintf("mints %d · transfers %d · approvals %d",
		sum[store.EventMint], sum[store.EventTransfer], sum[store.EventApprove])) + "\n")
	return sb.String()
}

func (m dashboardModel) statusCell(s store.Status) string {
	switch s {
	case store.StatusPending:
		return SpinnerFrame(m.spinStep) + " pending"
	case store.StatusFailed:
		return "failed"
	default:
		return StyleSuccess.Render("success")
	}
}

// visibleTokens applies the token filter to the registry.
func (m dashboardModel) visibleTokens() []token.Token {
	all := m.deps.Tokens.All()
	if m.filter == 0 || m.filter > len(all) {
		return all
	}
	return all[m.filter-1 : m.filter]
}

func (m dashboardModel) filteredEvents() []store.Event {
	events := m.deps.History.Events()
	visible := m.visibleTokens()
	if len(visible) == len(m.deps.Tokens.All()) {
		return events
	}
	sym := visible[0].Symbol
	var out []store.Event
	for _, ev := range events {
		if ev.Token == sym {
			out = append(out, ev)
		}
	}
	return out
}

func (m dashboardModel) refreshCmd() tea.Cmd {
	deps := m.deps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		account := deps.Session.Account()
		if err := deps.Balances.Fetch(ctx, account); err != nil {
			return refreshDoneMsg{err: err}
		}
		if err := deps.Ingester.Refresh(ctx, account); err != nil {
			return refreshDoneMsg{err: err}
		}
		return refreshDoneMsg{}
	}
}

func spinTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return spinTickMsg(t)
	})
}
