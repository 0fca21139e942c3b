package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/w3stark/internal/dapp"
)

// ConnectionPanel is the connection component as seen by the app.
type ConnectionPanel interface {
	View() dapp.ConnectionView
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// TransferPanel is the transfer component as seen by the app.
type TransferPanel interface {
	View() dapp.TransferView
	Submit(ctx context.Context, amount string) error
}

// ChangedMsg tells the app a component changed and the screen must be redrawn.
type ChangedMsg struct{}

type actionDoneMsg struct {
	action string
	err    error
}

type spinMsg struct{}

// AppModel is the interactive demo: connection panel on top, transfer panel
// below, a key bar and a one-line status.
type AppModel struct {
	ctx     context.Context
	conn    ConnectionPanel
	tr      TransferPanel
	network string

	connecting bool
	frame      int
	flash      string
	quitting   bool
}

// NewAppModel wires the two panels into a Bubble Tea model.
func NewAppModel(ctx context.Context, network string, conn ConnectionPanel, tr TransferPanel) AppModel {
	return AppModel{ctx: ctx, conn: conn, tr: tr, network: network}
}

func (m AppModel) Init() tea.Cmd { return nil }

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case ChangedMsg:
		// Redraw only.

	case spinMsg:
		if m.connecting || m.tr.View().InFlight {
			m.frame++
			return m, spin()
		}

	case actionDoneMsg:
		if msg.action == "connect" {
			m.connecting = false
		}
		switch {
		case msg.err == nil && msg.action == "transfer":
			m.flash = Success("Transaction submitted")
		case msg.err == nil:
		case errors.Is(msg.err, dapp.ErrInFlight):
		default:
			m.flash = Err(msg.action + " failed: " + shortErr(msg.err.Error()))
		}
	}
	return m, nil
}

func (m AppModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	cv := m.conn.View()
	tv := m.tr.View()

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "c":
		if cv.Address != "" || m.connecting {
			return m, nil
		}
		m.connecting = true
		return m, tea.Batch(m.run("connect", m.conn.Connect), spin())

	case "d":
		if cv.Address == "" {
			return m, nil
		}
		return m, m.run("disconnect", m.conn.Disconnect)

	case "t":
		if !tv.Visible || tv.InFlight {
			return m, nil
		}
		return m, tea.Batch(m.run("transfer", func(ctx context.Context) error {
			return m.tr.Submit(ctx, "")
		}), spin())

	case "o":
		if tv.ExplorerURL == "" {
			m.flash = Meta("No transaction yet")
			return m, nil
		}
		if err := OpenBrowser(tv.ExplorerURL); err != nil {
			m.flash = Err("open failed: " + shortErr(err.Error()))
		} else {
			m.flash = Info("Opening in browser…")
		}

	case "y":
		if tv.TxHash == "" {
			m.flash = Meta("No transaction yet")
			return m, nil
		}
		if err := CopyToClipboard(tv.TxHash); err != nil {
			m.flash = Err("copy failed: " + shortErr(err.Error()))
		} else {
			m.flash = Success("Copied " + TruncateAddr(tv.TxHash))
		}
	}
	return m, nil
}

func (m AppModel) run(action string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionDoneMsg{action: action, err: fn(ctx)}
	}
}

func spin() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return spinMsg{} })
}

func (m AppModel) View() string {
	if m.quitting {
		return ""
	}
	cv := m.conn.View()
	tv := m.tr.View()

	var sb strings.Builder
	sb.WriteString(Banner() + "  " + NetworkName(m.network) + "\n\n")
	sb.WriteString(RenderConnection(cv, m.connecting) + "\n")
	if t := RenderTransfer(tv); t != "" {
		sb.WriteString("\n" + t + "\n")
	}

	sb.WriteString("\n")
	if m.connecting || tv.InFlight {
		sb.WriteString(StyleNetwork.Render(SpinnerFrame(m.frame)) + " " + Meta("waiting for wallet…") + "\n")
	}
	if m.flash != "" {
		sb.WriteString(m.flash + "\n")
	}
	sb.WriteString(m.controls(cv, tv) + "\n")
	return sb.String()
}

func (m AppModel) controls(cv dapp.ConnectionView, tv dapp.TransferView) string {
	var keys []string
	if cv.Address == "" {
		keys = append(keys, StyleInfo.Render("[ c ]")+Meta(" connect"))
	} else {
		keys = append(keys, StyleWarning.Render("[ d ]")+Meta(" disconnect"))
	}
	if tv.Visible && !tv.InFlight {
		keys = append(keys, StyleSuccess.Render("[ t ]")+Meta(" transfer"))
	}
	if tv.TxHash != "" {
		keys = append(keys, StyleInfo.Render("[ o ]")+Meta(" open in explorer"))
		keys = append(keys, StyleInfo.Render("[ y ]")+Meta(" copy hash"))
	}
	keys = append(keys, Meta("[ q ] quit"))
	return strings.Join(keys, Meta("   "))
}

// shortErr keeps the informative tail of noisy transport errors.
func shortErr(s string) string {
	for _, marker := range []string{"dial tcp", "connection refused", "context deadline", "User refused"} {
		if idx := strings.Index(s, marker); idx >= 0 {
			s = s[idx:]
			break
		}
	}
	if len(s) > 60 {
		return s[:60] + "…"
	}
	return s
}

// RunApp starts the interactive demo and blocks until the user quits.
// onChange is handed a function that wakes the UI; wire it to the
// components' OnChange.
func RunApp(m AppModel, onChange func(wake func())) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	onChange(func() { p.Send(ChangedMsg{}) })
	_, err := p.Run()
	return err
}
