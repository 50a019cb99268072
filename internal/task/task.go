// Package task implements the launcher's cooperative task scheduler:
// a dependency-gated queue over a fixed worker pool, with cancellation,
// retry (via resubmission), and user-visible progress — grounded on
// the teacher's cmd/gearbox/tui/tasks.TaskManager and generalized to
// the original launcher's Cool::Task / Cool::TaskManager semantics.
package task

import (
	"errors"

	"github.com/google/uuid"
)

// ErrCancelled is returned by Execute when a task aborts because its
// cancel flag was observed mid-run. The engine interprets this as the
// task having been Cancelled rather than Failed.
var ErrCancelled = errors.New("task: cancelled")

// Status is a task's position in its lifecycle:
// Pending -> Waiting -> Ready -> Running -> {Done, Cancelled, Failed}.
type Status int32

const (
	StatusPending Status = iota
	StatusWaiting
	StatusReady
	StatusRunning
	StatusDone
	StatusCancelled
	StatusFailed
)

// String renders a Status for logs.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusWaiting:
		return "Waiting"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusDone:
		return "Done"
	case StatusCancelled:
		return "Cancelled"
	case StatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is one of Done/Cancelled/Failed.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusFailed
}

// Task is a background job with lifecycle hooks. Implementations should
// embed Base for the owner id and cooperative cancel flag.
type Task interface {
	// OwnerID groups tasks that should be cancellable together.
	OwnerID() uuid.UUID
	// Name is a short, human-readable description shown in notifications.
	Name() string
	// IsQuick reports whether this task skips the "please wait"
	// progress affordance and is allowed to finish during shutdown
	// without prompting.
	IsQuick() bool
	// NeedsConfirmationToCancelOnShutdown reports whether the user
	// should be asked before this task is cancelled at shutdown.
	NeedsConfirmationToCancelOnShutdown() bool
	// OnSubmit runs synchronously on the submitting goroutine, so any
	// notification it raises appears immediately.
	OnSubmit()
	// Execute runs the task's work on a worker goroutine. Returning
	// ErrCancelled marks the task Cancelled instead of Failed.
	Execute() error
	// Cleanup runs on a worker goroutine after Execute (or instead of
	// it, if the task was cancelled before ever running).
	Cleanup(wasCancelled bool)
	// Cancel requests cooperative cancellation; it must not block and
	// must be safe to call more than once.
	Cancel()
}

// Base provides the owner id and cancel flag every Task needs, plus
// no-op defaults for the less commonly overridden hooks. Embed it and
// override what differs.
type Base struct {
	owner       uuid.UUID
	cancelFlag  CancelFlag
	quick       bool
	needConfirm bool
}

// NewBase creates a Base with a fresh owner id.
func NewBase(quick, needsConfirmation bool) Base {
	return Base{owner: uuid.New(), quick: quick, needConfirm: needsConfirmation}
}

// NewBaseWithOwner creates a Base sharing an existing owner id, so it
// can be cancelled together with other tasks under that id.
func NewBaseWithOwner(owner uuid.UUID, quick, needsConfirmation bool) Base {
	return Base{owner: owner, quick: quick, needConfirm: needsConfirmation}
}

// OwnerID implements Task.
func (b *Base) OwnerID() uuid.UUID { return b.owner }

// IsQuick implements Task.
func (b *Base) IsQuick() bool { return b.quick }

// NeedsConfirmationToCancelOnShutdown implements Task.
func (b *Base) NeedsConfirmationToCancelOnShutdown() bool { return b.needConfirm }

// OnSubmit implements Task with a no-op default.
func (b *Base) OnSubmit() {}

// Cancel implements Task by setting the cooperative cancel flag.
func (b *Base) Cancel() { b.cancelFlag.Set() }

// Cancelled reports whether Cancel has been called.
func (b *Base) Cancelled() bool { return b.cancelFlag.IsSet() }
