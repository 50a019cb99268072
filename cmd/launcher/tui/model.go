// Package tui is an optional live view over the launcher's
// notification stream, modeled on cmd/gearbox/tui/tasks/manager.go's
// updateChan/WatchUpdates() tea.Cmd pattern: a single background
// channel drained by a tea.Cmd that re-arms itself after every
// message.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"launcher/internal/notify"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	titleStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// eventMsg wraps a notify.Event as a tea.Msg.
type eventMsg notify.Event

// Model is the bubbletea model backing "launcher watch".
type Model struct {
	events  <-chan notify.Event
	lines   []string
	width   int
	height  int
	byID    map[string]int // notification id -> index in lines, for Change/Closed
}

// New builds a Model that watches center's event stream.
func New(center *notify.Center) Model {
	return Model{
		events: center.Events(),
		byID:   make(map[string]int),
	}
}

func (m Model) Init() tea.Cmd {
	return watchEvents(m.events)
}

// watchEvents returns a tea.Cmd that blocks for the next notify.Event,
// re-armed by Update after every delivery so the channel is drained
// continuously rather than once.
func watchEvents(events <-chan notify.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case eventMsg:
		m.applyEvent(notify.Event(msg))
		return m, watchEvents(m.events)
	}
	return m, nil
}

func (m *Model) applyEvent(e notify.Event) {
	line := formatLine(e.Notification)
	switch e.Kind {
	case notify.Sent:
		m.byID[e.Notification.ID] = len(m.lines)
		m.lines = append(m.lines, line)
	case notify.Changed:
		if idx, ok := m.byID[e.Notification.ID]; ok {
			m.lines[idx] = line
		} else {
			m.byID[e.Notification.ID] = len(m.lines)
			m.lines = append(m.lines, line)
		}
	case notify.Closed:
		if idx, ok := m.byID[e.Notification.ID]; ok {
			m.lines[idx] = helpStyle.Render("(closed) " + line)
		}
	}
}

func formatLine(n notify.Notification) string {
	text := fmt.Sprintf("%s: %s", n.Title, n.Content)
	switch n.Kind {
	case notify.Warning:
		return warningStyle.Render(text)
	case notify.Error:
		return errorStyle.Render(text)
	default:
		return infoStyle.Render(text)
	}
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("launcher — live notifications"))
	b.WriteString("\n\n")
	if len(m.lines) == 0 {
		b.WriteString(helpStyle.Render("(waiting for activity...)"))
	} else {
		b.WriteString(strings.Join(m.lines, "\n"))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("press q to quit"))
	return b.String()
}
