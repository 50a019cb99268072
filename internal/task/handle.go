package task

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is the engine's view of a submitted task: something gates can
// reference without holding the whole Task (spec.md §9: "a gate holds
// only what it needs: a status probe, not the whole task").
type Handle struct {
	task Task
	gate Gate

	status      atomic.Int32
	cleanupDone CancelFlag
	preCancel   CancelFlag
	err         atomic.Value // error
}

func newHandle(t Task, gate Gate) *Handle {
	h := &Handle{task: t, gate: gate}
	h.status.Store(int32(StatusPending))
	return h
}

// Status returns the task's current lifecycle state.
func (h *Handle) Status() Status { return Status(h.status.Load()) }

// OwnerID returns the owning task's owner id, for cancel_all grouping.
func (h *Handle) OwnerID() uuid.UUID { return h.task.OwnerID() }

// IsTerminal reports whether the task has reached Done/Cancelled/Failed.
func (h *Handle) IsTerminal() bool { return h.Status().IsTerminal() }

// Err returns the error Execute returned, if the task ended Failed.
func (h *Handle) Err() error {
	if v := h.err.Load(); v != nil {
		return v.(error)
	}
	return nil
}

// Name returns the underlying task's name, for diagnostics.
func (h *Handle) Name() string { return h.task.Name() }
