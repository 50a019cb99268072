package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"launcher/internal/notify"
)

func TestModel_SentThenChangedUpdatesSameLine(t *testing.T) {
	m := Model{byID: make(map[string]int)}

	m.applyEvent(notify.Event{Kind: notify.Sent, Notification: notify.Notification{
		ID: "n1", Title: "Installing", Content: "starting",
	}})
	if len(m.lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(m.lines))
	}

	m.applyEvent(notify.Event{Kind: notify.Changed, Notification: notify.Notification{
		ID: "n1", Title: "Installing", Content: "halfway there",
	}})
	if len(m.lines) != 1 {
		t.Fatalf("expected change to update in place, got %d lines", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "halfway there") {
		t.Fatalf("expected updated content, got %q", m.lines[0])
	}
}

func TestModel_ClosedMarksLineRatherThanRemovingIt(t *testing.T) {
	m := Model{byID: make(map[string]int)}
	m.applyEvent(notify.Event{Kind: notify.Sent, Notification: notify.Notification{ID: "n1", Title: "x", Content: "y"}})
	m.applyEvent(notify.Event{Kind: notify.Closed, Notification: notify.Notification{ID: "n1"}})

	if len(m.lines) != 1 {
		t.Fatalf("expected the line to remain (marked closed), got %d lines", len(m.lines))
	}
	if !strings.Contains(m.lines[0], "closed") {
		t.Fatalf("expected closed marker, got %q", m.lines[0])
	}
}

func TestModel_KeyQQuits(t *testing.T) {
	m := Model{byID: make(map[string]int)}
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
}
