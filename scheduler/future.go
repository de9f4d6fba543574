package scheduler

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

// Future represents the eventual result of an [Scheduler.Async] call: a
// value on success, or a rejecting error (ordinarily a *diagnostic.Diagnostic)
// on failure. Futures are created already scheduled and settle exactly
// once; subsequent settle attempts are no-ops, matching the reference
// implementation's promise semantics.
type Future struct {
	id ulid.ULID

	mu          sync.Mutex
	state       FutureState
	value       any
	err         error
	label       string
	subscribers []chan struct{}

	// children records futures awaited (via Scheduler.Wait/WaitAll) from
	// within this future's fiber body, for cycle detection by the task engine (§4.2): a task
	// invocation that waits on one of its own transitive children is a
	// cycle.
	children []*Future
}

func newFuture() *Future {
	return &Future{id: ulid.Make(), state: FuturePending}
}

// ID returns the future's creation-ordered identifier.
func (f *Future) ID() ulid.ULID { return f.id }

// SetLabel attaches a caller-chosen name to f, e.g. a task's dotted path,
// for diagnostics that need to name the future rather than print its
// opaque ID. Labels are optional; an unlabeled future's Label is "".
func (f *Future) SetLabel(label string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.label = label
}

// Label returns the name attached via SetLabel, or "" if none was set.
func (f *Future) Label() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.label
}

// State returns the future's current lifecycle state.
func (f *Future) State() FutureState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Value returns the fulfillment value. Meaningless while pending/running.
func (f *Future) Value() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Err returns the rejection error, or nil if fulfilled or unsettled.
func (f *Future) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Settled reports whether the future has fulfilled or rejected.
func (f *Future) Settled() bool { return f.State().Settled() }

// markScheduled transitions a pending future to scheduled, once the
// scheduler has accepted it into the ready set.
func (f *Future) markScheduled() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FuturePending {
		f.state = FutureScheduled
	}
}

// markRunning transitions a scheduled future to running, once its fiber
// body starts executing.
func (f *Future) markRunning() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FutureScheduled {
		f.state = FutureRunning
	}
}

// fulfill settles f with val. A no-op if f is already settled.
func (f *Future) fulfill(val any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Settled() {
		return
	}
	f.state = FutureFulfilled
	f.value = val
	f.notifyLocked()
}

// reject settles f with err. A no-op if f is already settled.
func (f *Future) reject(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state.Settled() {
		return
	}
	f.state = FutureRejected
	f.err = err
	f.notifyLocked()
}

func (f *Future) notifyLocked() {
	for _, ch := range f.subscribers {
		close(ch)
	}
	f.subscribers = nil
}

// done returns a channel that is closed once f settles. If f is already
// settled, the returned channel is already closed.
func (f *Future) done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	if f.state.Settled() {
		close(ch)
		return ch
	}
	f.subscribers = append(f.subscribers, ch)
	return ch
}

// addChild records a child future awaited from f's fiber body, for the
// task engine's cycle-detection walk.
func (f *Future) addChild(child *Future) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children = append(f.children, child)
}

// Children returns a snapshot of futures awaited from within f's body.
func (f *Future) Children() []*Future {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*Future(nil), f.children...)
}
