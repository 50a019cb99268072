package task

import "sync/atomic"

// CancelFlag is an atomic cooperative-cancellation flag. Each Task owns
// one; worker goroutines poll it between units of work rather than
// being forcibly interrupted (spec.md §5: cancellation after execute
// has started is advisory).
type CancelFlag struct {
	v atomic.Bool
}

// Set marks the flag as cancelled. Safe to call more than once.
func (f *CancelFlag) Set() { f.v.Store(true) }

// IsSet reports whether Set has been called.
func (f *CancelFlag) IsSet() bool { return f.v.Load() }
