package task

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/joeycumines/lift/scheduler"
)

// nameRe is the required shape for task and namespace names.
var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidName is returned by Namespace.Task/Namespace.Child when name
// doesn't match the required [A-Za-z_][A-Za-z0-9_]* shape.
type ErrInvalidName struct{ Name string }

func (e *ErrInvalidName) Error() string {
	return fmt.Sprintf("task: invalid name %q", e.Name)
}

// ErrAlreadyRegistered is returned by Namespace.Task when a task name is
// registered twice; the reference implementation forbids redefinition by
// construction rather than silently replacing it. Namespace.Child never
// returns it: asking for an existing child returns that child.
type ErrAlreadyRegistered struct{ Name string }

func (e *ErrAlreadyRegistered) Error() string {
	return fmt.Sprintf("task: %q already registered", e.Name)
}

// Namespace is a node in the task tree: a named bag of Tasks and child
// Namespaces. The root Namespace returned by NewNamespace is unnamed.
type Namespace struct {
	name   string
	parent *Namespace
	sched  *scheduler.Scheduler

	mu       sync.Mutex
	tasks    map[string]*Task
	children map[string]*Namespace
}

// NewNamespace constructs the root of a task tree, bound to sched for every
// task registered under it (directly or via a child namespace).
func NewNamespace(sched *scheduler.Scheduler) *Namespace {
	return &Namespace{
		sched:    sched,
		tasks:    make(map[string]*Task),
		children: make(map[string]*Namespace),
	}
}

// Path returns the dotted path from the tree's root to this namespace, e.g.
// "build.assets".
func (n *Namespace) Path() string {
	if n.parent == nil {
		return ""
	}
	parent := n.parent.Path()
	if parent == "" {
		return n.name
	}
	return parent + "." + n.name
}

// Child returns (creating if absent) the child namespace named name.
func (n *Namespace) Child(name string) (*Namespace, error) {
	if !nameRe.MatchString(name) {
		return nil, &ErrInvalidName{Name: name}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if child, ok := n.children[name]; ok {
		return child, nil
	}
	child := &Namespace{
		name:     name,
		parent:   n,
		sched:    n.sched,
		tasks:    make(map[string]*Task),
		children: make(map[string]*Namespace),
	}
	n.children[name] = child
	return child, nil
}

// Task registers and returns a new Task named name, running body on
// invocation. Registering the same name twice returns ErrAlreadyRegistered.
func (n *Namespace) Task(name string, body Func) (*Task, error) {
	if !nameRe.MatchString(name) {
		return nil, &ErrInvalidName{Name: name}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.tasks[name]; ok {
		return nil, &ErrAlreadyRegistered{Name: name}
	}
	t := newTask(n, name, body)
	n.tasks[name] = t
	return t, nil
}

// Lookup returns the task named name directly under n, if any.
func (n *Namespace) Lookup(name string) (*Task, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	t, ok := n.tasks[name]
	return t, ok
}
