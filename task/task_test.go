package task_test

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/joeycumines/lift/scheduler"
	"github.com/joeycumines/lift/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskInvokeReturnsBodyResult(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	tsk, err := ns.Task("double", func(fiber *scheduler.Fiber, arg any) (any, error) {
		return arg.(int) * 2, nil
	})
	require.NoError(t, err)

	var got any
	var gotErr error
	done := make(chan struct{})
	f := sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		got, gotErr = tsk.Invoke(fiber, 21)
		close(done)
		return nil, nil
	}, nil)
	_ = f

	require.NoError(t, sched.Run())
	<-done
	require.NoError(t, gotErr)
	assert.Equal(t, 42, got)
}

func TestTaskInvokeMemoizesByArgument(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	var calls atomic.Int64
	tsk, err := ns.Task("compute", func(fiber *scheduler.Fiber, arg any) (any, error) {
		calls.Add(1)
		return arg, nil
	})
	require.NoError(t, err)

	done := make(chan struct{})
	sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		v1, err1 := tsk.Invoke(fiber, "x")
		v2, err2 := tsk.Invoke(fiber, "x")
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, v1, v2)
		close(done)
		return nil, nil
	}, nil)

	require.NoError(t, sched.Run())
	<-done
	assert.Equal(t, int64(1), calls.Load())
}

func TestTaskInvokeDistinguishesDifferentArguments(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	var calls atomic.Int64
	tsk, err := ns.Task("compute", func(fiber *scheduler.Fiber, arg any) (any, error) {
		calls.Add(1)
		return arg, nil
	})
	require.NoError(t, err)

	done := make(chan struct{})
	sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		_, _ = tsk.Invoke(fiber, "x")
		_, _ = tsk.Invoke(fiber, "y")
		close(done)
		return nil, nil
	}, nil)

	require.NoError(t, sched.Run())
	<-done
	assert.Equal(t, int64(2), calls.Load())
}

func TestTaskInvokePropagatesBodyError(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	boom := errors.New("boom")
	tsk, err := ns.Task("fails", func(fiber *scheduler.Fiber, arg any) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)

	var gotErr error
	done := make(chan struct{})
	sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		_, gotErr = tsk.Invoke(fiber, nil)
		close(done)
		return nil, nil
	}, nil)

	require.NoError(t, sched.Run())
	<-done
	assert.ErrorIs(t, gotErr, boom)
}

func TestTaskInvokeRejectsNamespaceArgument(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	tsk, err := ns.Task("misuse", func(fiber *scheduler.Fiber, arg any) (any, error) { return nil, nil })
	require.NoError(t, err)

	_, err = tsk.Invoke(nil, ns)
	assert.Error(t, err)
}

func TestTaskInvokeHandlesMapArgumentsViaHashedKey(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	var calls atomic.Int64
	tsk, err := ns.Task("fromMap", func(fiber *scheduler.Fiber, arg any) (any, error) {
		calls.Add(1)
		return arg, nil
	})
	require.NoError(t, err)

	done := make(chan struct{})
	sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		_, err1 := tsk.Invoke(fiber, map[string]any{"a": 1})
		_, err2 := tsk.Invoke(fiber, map[string]any{"a": 1})
		require.NoError(t, err1)
		require.NoError(t, err2)
		close(done)
		return nil, nil
	}, nil)

	require.NoError(t, sched.Run())
	<-done
	assert.Equal(t, int64(1), calls.Load())
}

func TestTaskInvokeDetectsCycle(t *testing.T) {
	sched := scheduler.New()
	defer sched.Close()
	ns := task.NewNamespace(sched)

	// a's body calls b with the same argument, and b's body calls a right
	// back: by the time b re-enters a, a's future already has b's future
	// recorded as a child, so the reverse edge closes a cycle. The fiber
	// scheduler contains the resulting cycle_error panic itself (its body
	// runner recovers via diagnostic.PcallValue), surfacing it as the
	// rejection of the outermost future rather than an unrecovered panic.
	var a, b *task.Task
	var err error
	a, err = ns.Task("a", func(fiber *scheduler.Fiber, arg any) (any, error) {
		return b.Invoke(fiber, arg)
	})
	require.NoError(t, err)
	b, err = ns.Task("b", func(fiber *scheduler.Fiber, arg any) (any, error) {
		return a.Invoke(fiber, arg)
	})
	require.NoError(t, err)

	var gotErr error
	done := make(chan struct{})
	sched.Async(func(fiber *scheduler.Fiber, arg any) (any, error) {
		defer close(done)
		_, gotErr = a.Invoke(fiber, 1)
		return nil, nil
	}, nil)

	require.NoError(t, sched.Run())
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cycle was never detected")
	}

	require.Error(t, gotErr)
	d, ok := gotErr.(*diagnostic.Diagnostic)
	require.True(t, ok)
	assert.Equal(t, "cycle_error", d.Kind())
	assert.Contains(t, d.Error(), "a -> b -> a")
}
