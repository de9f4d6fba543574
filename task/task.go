package task

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/joeycumines/lift/scheduler"
)

// Func is a task body: given the fiber it's running on and the argument it
// was invoked with, it returns a result or an error.
type Func func(fiber *scheduler.Fiber, arg any) (any, error)

// Task is a named, memoized unit of work bound to a Namespace. Invoking the
// same Task with the same argument joins the already-running (or already
// finished) invocation instead of starting a second one.
type Task struct {
	ns   *Namespace
	name string
	body Func

	mu   sync.Mutex
	memo map[any]*scheduler.Future
}

func newTask(ns *Namespace, name string, body Func) *Task {
	return &Task{ns: ns, name: name, body: body, memo: make(map[any]*scheduler.Future)}
}

// Name returns the task's own name (not its full dotted path).
func (t *Task) Name() string { return t.name }

// Path returns the task's full dotted path, e.g. "build.assets.minify".
func (t *Task) Path() string {
	nsPath := t.ns.Path()
	if nsPath == "" {
		return t.name
	}
	return nsPath + "." + t.name
}

// Invoke looks up or creates the memoized future for arg, joining it via
// the scheduler's Wait (one of the specification's enumerated suspension
// points) and returning its settled value or error. fiber may be nil when
// called from outside any running fiber (e.g. a driver's top-level call),
// in which case cycle detection is skipped.
func (t *Task) Invoke(fiber *scheduler.Fiber, arg any) (any, error) {
	if _, ok := arg.(*Namespace); ok {
		return nil, fmt.Errorf("task: %s: argument must not be a Namespace", t.Path())
	}

	key, err := memoKey(arg)
	if err != nil {
		return nil, fmt.Errorf("task: %s: computing memoization key: %w", t.Path(), err)
	}

	t.mu.Lock()
	f, existed := t.memo[key]
	if !existed {
		f = t.ns.sched.Async(func(inner *scheduler.Fiber, a any) (any, error) {
			return t.body(inner, a)
		}, arg)
		f.SetLabel(t.Path())
		t.memo[key] = f
	}
	t.mu.Unlock()

	if fiber != nil && fiber.Future() != nil {
		if path, cyclic := detectCycle(f, fiber.Future()); cyclic {
			d := diagnostic.New("cycle_error: cycle detected in tasks: ${1}", strings.Join(path, " -> "))
			diagnostic.Report(d)
		}
	}

	val, rerr, _ := t.ns.sched.Wait(fiber, f, 0)
	return val, rerr
}

// futureLabel returns fu's attached task path, falling back to its opaque
// ID for futures detectCycle encounters that were never labeled (e.g. a
// driver's own top-level fiber).
func futureLabel(fu *scheduler.Future) string {
	if l := fu.Label(); l != "" {
		return l
	}
	return fu.ID().String()
}

// detectCycle reports whether target is reachable from f by following
// recorded parent->child future edges (§4.2: "the scheduler records
// parent->child future edges on every task call; a DFS over this edge set
// from in-flight futures detects the first cycle"). When reachable, it also
// returns the task-name path for the diagnostic, closed back to f's own
// name: A -> B -> A, matching the reference cyclic-task scenario.
func detectCycle(f, target *scheduler.Future) ([]string, bool) {
	if f == target {
		return []string{futureLabel(f), futureLabel(f)}, true
	}
	visited := make(map[*scheduler.Future]bool)
	var walk func(cur *scheduler.Future) []string
	walk = func(cur *scheduler.Future) []string {
		if visited[cur] {
			return nil
		}
		visited[cur] = true
		for _, child := range cur.Children() {
			if child == target {
				return []string{futureLabel(cur), futureLabel(child)}
			}
			if path := walk(child); path != nil {
				return append([]string{futureLabel(cur)}, path...)
			}
		}
		return nil
	}
	path := walk(f)
	if path == nil {
		return nil, false
	}
	return append(path, futureLabel(f)), true
}
