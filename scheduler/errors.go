package scheduler

import "errors"

// Sentinel errors returned by Scheduler methods for conditions that are
// Go-level misuse rather than diagnostics a consumer should see (compare
// the diagnostic package's Diagnostic, used for everything a fiber body
// raises).
var (
	// ErrSchedulerAlreadyRunning is returned by Run if the scheduler is
	// already running on another goroutine, or if a previous Run has
	// returned or Abort has been called.
	ErrSchedulerAlreadyRunning = errors.New("scheduler: already running")

	// ErrSchedulerStopped is the rejection error Abort settles every
	// unsettled tracked future with.
	ErrSchedulerStopped = errors.New("scheduler: stopped")

	// ErrNotRunning is not returned by any Scheduler method: Wait, WaitAll
	// and Sleep accept a nil fiber and then block the calling goroutine.
	ErrNotRunning = errors.New("scheduler: not running")
)

// TimeoutError describes a wait whose timeout elapsed before the awaited
// future settled. No Scheduler method returns it: Wait reports a timeout
// through its timedOut result, and WaitAll takes no timeout.
type TimeoutError struct {
	WaitedMS int64
}

func (e *TimeoutError) Error() string { return "scheduler: wait timed out" }
