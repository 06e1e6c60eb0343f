// Package tui provides the terminal dashboard for Warden.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/soulified/warden/internal/core"
)

const maxLogLines = 500

// Model is the dashboard model: a status bar over a scrolling event log.
type Model struct {
	snapshot func() core.Snapshot
	eventCh  <-chan core.Event

	width  int
	height int
	ready  bool

	log  viewport.Model
	logs []string

	snap core.Snapshot
}

// EventMsg wraps a bus event for the dashboard.
type EventMsg struct {
	Event core.Event
}

type tickMsg time.Time

// New creates the dashboard model.
func New(snapshot func() core.Snapshot, eventCh <-chan core.Event) Model {
	return Model{
		snapshot: snapshot,
		eventCh:  eventCh,
		snap:     snapshot(),
	}
}

// Init starts the event listener and the refresh tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEvents(), refreshTick())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 4
		if logHeight < 1 {
			logHeight = 1
		}
		if !m.ready {
			m.log = viewport.New(m.width-2, logHeight)
			m.ready = true
		} else {
			m.log.Width = m.width - 2
			m.log.Height = logHeight
		}
		m.log.SetContent(strings.Join(m.logs, "\n"))
		m.log.GotoBottom()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.log, cmd = m.log.Update(msg)
		return m, cmd

	case EventMsg:
		m.appendEvent(msg.Event)
		return m, m.listenForEvents()

	case tickMsg:
		m.snap = m.snapshot()
		return m, refreshTick()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.statusBar(),
		logStyle.Width(m.width-2).Render(m.log.View()),
		helpStyle.Render("q quit · arrows scroll"),
	)
}

func (m Model) statusBar() string {
	var state string
	switch m.snap.State {
	case core.StateConnected:
		state = stateConnectedStyle.Render(string(m.snap.State))
	case core.StateWaiting, core.StateConnecting:
		state = stateWaitingStyle.Render(string(m.snap.State))
	default:
		state = stateStoppedStyle.Render(string(m.snap.State))
	}

	intent := string(m.snap.Intent.Mode)
	if intent == "" {
		intent = string(core.IntentIdle)
	}
	auth := string(m.snap.Auth)
	if auth == "" {
		auth = string(core.AuthNotStarted)
	}

	uptime := "-"
	if !m.snap.StartedAt.IsZero() {
		uptime = time.Since(m.snap.StartedAt).Truncate(time.Second).String()
	}

	bar := fmt.Sprintf("%s  %s  intent:%s  auth:%s  reconnects:%d  up:%s",
		titleStyle.Render("WARDEN"), state, intent, auth, m.snap.Reconnects, uptime)
	return statusBarStyle.Width(m.width).Render(bar)
}

func (m *Model) appendEvent(ev core.Event) {
	line := formatEvent(ev)
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	if m.ready {
		atBottom := m.log.AtBottom()
		m.log.SetContent(strings.Join(m.logs, "\n"))
		if atBottom {
			m.log.GotoBottom()
		}
	}
}

func formatEvent(ev core.Event) string {
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case core.EventChatSeen:
		return fmt.Sprintf("%s %s", ts, logChatStyle.Render(fmt.Sprintf("<%s> %s", ev.Sender, ev.Message)))
	case core.EventChatSent:
		return fmt.Sprintf("%s %s", ts, logChatStyle.Render(fmt.Sprintf(">%s< %s", ev.Sender, ev.Message)))
	case core.EventAIReply:
		return fmt.Sprintf("%s %s", ts, logAIStyle.Render("ai: "+ev.Message))
	case core.EventTransportError, core.EventActionRejected:
		return fmt.Sprintf("%s %s", ts, logErrorStyle.Render(string(ev.Type)+": "+ev.Message))
	default:
		return fmt.Sprintf("%s %s", ts, logMutedStyle.Render(string(ev.Type)+" "+ev.Message))
	}
}

func (m Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.eventCh
		if !ok {
			return nil
		}
		return EventMsg{Event: event}
	}
}

func refreshTick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var keys = struct {
	Quit key.Binding
}{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c")),
}
