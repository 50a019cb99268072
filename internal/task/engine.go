package task

import (
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"launcher/internal/logging"
)

// DefaultAdmissionInterval is how often the admission loop re-polls
// pending gates. Spec.md §9 notes polling all gates periodically is
// simpler than wiring a signal per cross-task dependency.
const DefaultAdmissionInterval = 15 * time.Millisecond

// Engine is the fixed-size worker pool plus admission loop described in
// spec.md §4.2: a separate goroutine repeatedly sweeps the pending list
// moving gated tasks to the ready queue (or cancelling them), while a
// pool of worker goroutines drains the ready queue.
type Engine struct {
	log *logging.Logger

	readyCh chan *Handle

	mu      sync.Mutex
	pending []*Handle // waiting on a gate, not yet dispatched
	live    []*Handle // every non-terminal handle (pending, ready, or running)

	activeCount int64
	idleMu      sync.Mutex
	idleCh      chan struct{}

	shuttingDown CancelFlag
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup

	admissionInterval time.Duration
}

// NewEngine starts an Engine with the given number of worker goroutines.
// A workers value <= 0 defaults to runtime.NumCPU(), mirroring the
// teacher's auto-detected parallelism in pkg/orchestrator.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	e := &Engine{
		log:               logging.Global().Operation("task_engine"),
		readyCh:           make(chan *Handle, 64),
		stopCh:            make(chan struct{}),
		admissionInterval: DefaultAdmissionInterval,
	}
	e.idleCh = make(chan struct{})
	close(e.idleCh) // zero tasks in flight at startup

	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.workerLoop()
	}

	go e.admissionLoop()

	return e
}

// Submit runs task once the engine gets to it, with no precondition.
func (e *Engine) Submit(t Task) *Handle {
	return e.SubmitGated(AfterNothing(), t)
}

// SubmitGated runs task once gate.WantsToExecute() reports true (or
// cancels it if gate.WantsToCancel() reports true first).
func (e *Engine) SubmitGated(gate Gate, t Task) *Handle {
	h := newHandle(t, gate)
	t.OnSubmit()

	if e.shuttingDown.IsSet() {
		// Refuse new submissions once shutdown has begun (spec.md §4.2).
		h.status.Store(int32(StatusCancelled))
		h.cleanupDone.Set()
		return h
	}

	e.incrActive()
	h.status.Store(int32(StatusWaiting))
	e.mu.Lock()
	e.pending = append(e.pending, h)
	e.live = append(e.live, h)
	e.mu.Unlock()
	return h
}

// SubmitIn re-enqueues task after delay elapses, via a dedicated timer
// rather than the admission loop's busy poll (spec.md §5 suspension
// points: "submit_in uses a dedicated timer that does not consume a
// worker slot").
func (e *Engine) SubmitIn(delay time.Duration, t Task) *Handle {
	h := newHandle(t, AfterNothing())
	t.OnSubmit()

	if e.shuttingDown.IsSet() {
		h.status.Store(int32(StatusCancelled))
		h.cleanupDone.Set()
		return h
	}

	e.incrActive()
	h.status.Store(int32(StatusWaiting))
	e.mu.Lock()
	e.live = append(e.live, h)
	e.mu.Unlock()

	time.AfterFunc(delay, func() {
		e.mu.Lock()
		e.pending = append(e.pending, h)
		e.mu.Unlock()
	})
	return h
}

// CancelAll sets the cancel flag on every non-terminal task sharing
// ownerID (spec.md §4.2). Tasks still pending (not yet dispatched to a
// worker) are cancelled outright, skipping Execute and still running
// Cleanup(true); already-running tasks only receive the cooperative
// signal — Execute is expected to poll Cancelled() and return
// ErrCancelled on its own schedule (spec.md §5: advisory, not forced).
// Idempotent.
func (e *Engine) CancelAll(ownerID uuid.UUID) {
	e.mu.Lock()
	var stillPending []*Handle
	var toDispatch []*Handle
	for _, h := range e.pending {
		if h.OwnerID() == ownerID {
			toDispatch = append(toDispatch, h)
			continue
		}
		stillPending = append(stillPending, h)
	}
	e.pending = stillPending

	for _, h := range e.live {
		if h.OwnerID() == ownerID {
			h.task.Cancel()
		}
	}
	e.mu.Unlock()

	for _, h := range toDispatch {
		h.preCancel.Set()
		e.readyCh <- h
	}
}

// admissionLoop sweeps the pending list, moving gated tasks to ready or
// cancelling them, until the engine is stopped.
func (e *Engine) admissionLoop() {
	ticker := time.NewTicker(e.admissionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.sweepPending()
		}
	}
}

func (e *Engine) sweepPending() {
	e.mu.Lock()
	if len(e.pending) == 0 {
		e.mu.Unlock()
		return
	}
	var stillPending []*Handle
	var toRun []*Handle
	for _, h := range e.pending {
		switch {
		case h.gate.WantsToCancel():
			h.preCancel.Set()
			toRun = append(toRun, h)
		case h.gate.WantsToExecute():
			h.status.Store(int32(StatusReady))
			toRun = append(toRun, h)
		default:
			stillPending = append(stillPending, h)
		}
	}
	e.pending = stillPending
	e.mu.Unlock()

	for _, h := range toRun {
		e.readyCh <- h
	}
}

func (e *Engine) workerLoop() {
	defer e.wg.Done()
	for h := range e.readyCh {
		e.run(h)
	}
}

func (e *Engine) run(h *Handle) {
	if h.preCancel.IsSet() {
		h.status.Store(int32(StatusCancelled))
		h.task.Cleanup(true)
		h.cleanupDone.Set()
		e.retire(h)
		return
	}

	h.status.Store(int32(StatusRunning))
	err := h.task.Execute()

	wasCancelled := err == ErrCancelled
	switch {
	case wasCancelled:
		h.status.Store(int32(StatusCancelled))
	case err != nil:
		h.err.Store(err)
		h.status.Store(int32(StatusFailed))
	default:
		h.status.Store(int32(StatusDone))
	}

	h.task.Cleanup(wasCancelled)
	h.cleanupDone.Set()
	e.retire(h)
}

// retire removes h from the live registry and notifies idle watchers if
// it was the last task in flight.
func (e *Engine) retire(h *Handle) {
	e.mu.Lock()
	for i, live := range e.live {
		if live == h {
			e.live = append(e.live[:i], e.live[i+1:]...)
			break
		}
	}
	e.mu.Unlock()
	e.decrActive()
}

func (e *Engine) incrActive() {
	e.idleMu.Lock()
	e.activeCount++
	if e.activeCount == 1 {
		e.idleCh = make(chan struct{})
	}
	e.idleMu.Unlock()
}

func (e *Engine) decrActive() {
	e.idleMu.Lock()
	e.activeCount--
	if e.activeCount == 0 {
		close(e.idleCh)
	}
	e.idleMu.Unlock()
}

// IdleNotify returns a channel that's closed once no tasks are in
// flight. Shutdown waits on it, and launchtask.Task.IdleNotify exposes
// it to callers of a launch.
func (e *Engine) IdleNotify() <-chan struct{} {
	e.idleMu.Lock()
	defer e.idleMu.Unlock()
	return e.idleCh
}

// Shutdown refuses new submissions and waits for every outstanding task
// to end. Tasks needing confirmation are offered to confirm (which
// should block until the user answers); declining lets that task run to
// completion instead of being cancelled. Quick tasks are never
// interrupted, per spec.md §5.
func (e *Engine) Shutdown(confirm func(Task) bool) {
	e.shuttingDown.Set()

	e.mu.Lock()
	outstanding := append([]*Handle(nil), e.live...)
	e.mu.Unlock()

	for _, h := range outstanding {
		if h.task.IsQuick() {
			continue
		}
		if h.task.NeedsConfirmationToCancelOnShutdown() {
			if confirm == nil || !confirm(h.task) {
				continue
			}
		}
		h.task.Cancel()
	}

	<-e.IdleNotify()

	e.stopOnce.Do(func() { close(e.stopCh) })
	close(e.readyCh)
	e.wg.Wait()
}
