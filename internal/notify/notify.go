// Package notify is the named interface the launcher's background
// tasks use to talk to the (out-of-scope) notification widget. It
// mirrors the teacher's TaskUpdateMsg channel in
// cmd/gearbox/tui/tasks/manager.go: tasks publish events to a buffered
// channel, and whatever UI is attached (TUI, CLI, or none) drains it.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

// Kind is the severity of a Notification, matching the original
// ImGuiNotify::Type enum (Info/Warning/Error).
type Kind int

const (
	Info Kind = iota
	Warning
	Error
)

// String renders a Kind for logs.
func (k Kind) String() string {
	switch k {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Notification is a single banner a background task wants shown.
// A notification stays until it is explicitly closed or changed
// through the Center, the way the fetch task's rate-limit warning does.
type Notification struct {
	ID       string
	Kind     Kind
	Title    string
	Content  string
	Closable bool
}

// EventKind discriminates the three things that can happen to a
// Notification.
type EventKind int

const (
	Sent EventKind = iota
	Changed
	Closed
)

// Event is published to a Center's channel for every Send/Change/Close.
type Event struct {
	Kind         EventKind
	Notification Notification
}

// Center is the pub-sub hub tasks send notifications through. The zero
// value is not usable; construct with NewCenter.
type Center struct {
	mu     sync.Mutex
	events chan Event
}

// NewCenter creates a Center with a reasonably-buffered event channel,
// sized the way the teacher buffers its own updateChan (100 entries) so
// a burst of task activity never blocks a worker goroutine.
func NewCenter() *Center {
	return &Center{events: make(chan Event, 100)}
}

// Events returns the channel a UI (or the CLI's logger) should drain.
func (c *Center) Events() <-chan Event { return c.events }

// Send publishes a new notification, assigning it a fresh id if the
// caller didn't supply one, and returns the id so the caller can later
// Change or CloseImmediately it.
func (c *Center) Send(n Notification) string {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	c.publish(Event{Kind: Sent, Notification: n})
	return n.ID
}

// Change replaces the notification at id with n (keeping id), the way
// the fetch task reuses its warning notification's id across retries
// instead of opening a new banner each time.
func (c *Center) Change(id string, n Notification) {
	n.ID = id
	c.publish(Event{Kind: Changed, Notification: n})
}

// CloseImmediately dismisses the notification at id.
func (c *Center) CloseImmediately(id string) {
	c.publish(Event{Kind: Closed, Notification: Notification{ID: id}})
}

func (c *Center) publish(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case c.events <- e:
	default:
		// Drop rather than block a worker goroutine on a slow/absent
		// subscriber; the CLI path may never drain this channel at all.
	}
}
