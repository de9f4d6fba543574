package scheduler

import "errors"

// ErrPollerUnsupported is returned by NewPoller on platforms without an
// epoll-backed implementation. The specification's stream OS bridge (§6)
// falls back to dedicated blocking-read goroutines in that case; see
// DESIGN.md for the scope reduction.
var ErrPollerUnsupported = errors.New("scheduler: poller only implemented for linux")
