package task

import (
	"sync"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/joeycumines/lift/scheduler"
	"golang.org/x/sync/errgroup"
)

// Set is an ordered list of Tasks invoked together against a single
// argument (§4.2 Task-sets): calling it starts every member concurrently
// and waits for all of them, aggregating rejections.
type Set struct {
	tasks []*Task
}

// NewSet builds a Set over tasks, in the order their results are returned.
func NewSet(tasks ...*Task) *Set {
	return &Set{tasks: append([]*Task(nil), tasks...)}
}

// Invoke calls every member task with arg concurrently (via errgroup,
// mirroring the reference implementation's wait_all-over-async_all
// pattern) and returns each task's result in Set member order. If any
// member rejects, the returned error aggregates every rejection (unwrapped
// to the single child when there was exactly one), matching
// scheduler.WaitAll's own aggregation rule.
func (s *Set) Invoke(fiber *scheduler.Fiber, arg any) ([]any, error) {
	results := make([]any, len(s.tasks))

	var mu sync.Mutex
	var rejections []*diagnostic.Diagnostic

	var g errgroup.Group
	for i, t := range s.tasks {
		i, t := i, t
		g.Go(func() error {
			v, err := t.Invoke(fiber, arg)
			if err != nil {
				mu.Lock()
				rejections = append(rejections, toDiagnostic(err))
				mu.Unlock()
				return nil
			}
			results[i] = v
			return nil
		})
	}
	_ = g.Wait()

	if len(rejections) == 0 {
		return results, nil
	}
	return results, diagnostic.Aggregate("error", "one or more tasks in the set rejected: ${nested}", rejections)
}

func toDiagnostic(err error) *diagnostic.Diagnostic {
	if d, ok := err.(*diagnostic.Diagnostic); ok {
		return d
	}
	return diagnostic.New("error: ${1}", err.Error())
}
