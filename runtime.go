package lift

import (
	"github.com/joeycumines/lift/config"
	"github.com/joeycumines/lift/scheduler"
	"github.com/joeycumines/lift/task"
)

// Runtime bundles the process-wide collaborators a driver program needs:
// the fiber scheduler, the root configuration scope, and the root task
// namespace bound to that scheduler. These three live on this one value
// instead of as package-level globals, so multiple runtimes can coexist
// (e.g. in tests); the diagnostics consumer and the tracing switch remain
// package-level state in the diagnostic package, shared by all runtimes.
type Runtime struct {
	Scheduler *scheduler.Scheduler
	Config    *config.Scope
	Tasks     *task.Namespace
}

// NewRuntime constructs a Runtime: a fresh Scheduler (configured via opts),
// a root config.Scope bootstrapped with appID as its environment-variable
// prefix, and a root task.Namespace bound to that scheduler.
func NewRuntime(appID string, opts ...scheduler.Option) *Runtime {
	sched := scheduler.New(opts...)
	return &Runtime{
		Scheduler: sched,
		Config:    config.NewRoot(appID),
		Tasks:     task.NewNamespace(sched),
	}
}

// Close releases the Runtime's scheduler resources (its timer-driving
// goroutine). Safe to call more than once.
func (rt *Runtime) Close() {
	rt.Scheduler.Close()
}
