package task

// Gate is a predicate pair attached to a pending task. It subsumes both
// "run after task T completes" and "run when condition C holds"
// (spec.md §3 Gate, §4.2 Gate constructors).
type Gate struct {
	wantsToExecute func() bool
	wantsToCancel  func() bool
}

// WantsToExecute reports whether the gated task should be admitted now.
func (g Gate) WantsToExecute() bool {
	if g.wantsToExecute == nil {
		return true
	}
	return g.wantsToExecute()
}

// WantsToCancel reports whether the gated task should be cancelled
// before ever running.
func (g Gate) WantsToCancel() bool {
	if g.wantsToCancel == nil {
		return false
	}
	return g.wantsToCancel()
}

// AfterNothing is the identity gate: ready immediately.
func AfterNothing() Gate {
	return Gate{wantsToExecute: func() bool { return true }}
}

// After completes when h has reached a terminal state and its cleanup
// has run — i.e. strictly happens-after h's cleanup, regardless of
// whether h ended up Done, Cancelled, or Failed (spec.md §5 ordering
// guarantees; a dependent task is expected to check the outcome itself,
// the way Launch Task re-checks installation status at execute time).
func After(h *Handle) Gate {
	return Gate{wantsToExecute: h.cleanupDone.IsSet}
}

// AfterAny completes as soon as any one of hs has finished.
func AfterAny(hs ...*Handle) Gate {
	return Gate{wantsToExecute: func() bool {
		for _, h := range hs {
			if h.cleanupDone.IsSet() {
				return true
			}
		}
		return false
	}}
}

// AfterAll completes once every one of hs has finished.
func AfterAll(hs ...*Handle) Gate {
	return Gate{wantsToExecute: func() bool {
		for _, h := range hs {
			if !h.cleanupDone.IsSet() {
				return false
			}
		}
		return true
	}}
}

// AfterPredicate builds a gate from a caller-supplied poll function.
func AfterPredicate(wantsToExecute func() bool) Gate {
	return Gate{wantsToExecute: wantsToExecute}
}

// AfterPredicateWithCancel builds a gate from a pair of caller-supplied
// poll functions, for cases like the fetch task's own status signal
// where "not ready yet" and "never going to be ready" are distinct
// (spec.md §4.3 status_of_fetch_list_of_versions).
func AfterPredicateWithCancel(wantsToExecute, wantsToCancel func() bool) Gate {
	return Gate{wantsToExecute: wantsToExecute, wantsToCancel: wantsToCancel}
}
