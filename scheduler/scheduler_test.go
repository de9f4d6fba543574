package scheduler_test

import (
	"testing"
	"time"

	"github.com/joeycumines/lift/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncProducesFulfilledFuture(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	f := s.Async(func(_ *scheduler.Fiber, arg any) (any, error) {
		return arg.(int) * 2, nil
	}, 21)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureFulfilled, f.State())
	assert.Equal(t, 42, f.Value())
}

func TestAsyncPropagatesRejection(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	boom := errTest("boom")
	f := s.Async(func(_ *scheduler.Fiber, _ any) (any, error) {
		return nil, boom
	}, nil)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureRejected, f.State())
	assert.ErrorIs(t, f.Err(), boom)
}

type errTest string

func (e errTest) Error() string { return string(e) }

func TestAsyncRecoversPanicAsRejection(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	f := s.Async(func(_ *scheduler.Fiber, _ any) (any, error) {
		panic("fiber exploded")
	}, nil)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureRejected, f.State())
	assert.Contains(t, f.Err().Error(), "fiber exploded")
}

func TestWaitJoinsChildFuture(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	var childVal any
	parent := s.Async(func(fib *scheduler.Fiber, _ any) (any, error) {
		child := s.Async(func(_ *scheduler.Fiber, _ any) (any, error) {
			return "child-result", nil
		}, nil)
		val, err, _ := s.Wait(fib, child, 0)
		childVal = val
		return val, err
	}, nil)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureFulfilled, parent.State())
	assert.Equal(t, "child-result", childVal)
}

func TestWaitOnOwnFutureRaisesInsteadOfDeadlocking(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	done := make(chan struct{})
	f := s.Async(func(fib *scheduler.Fiber, _ any) (any, error) {
		defer close(done)
		return s.Wait(fib, fib.Future(), 0)
	}, nil)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("waiting on the fiber's own future deadlocked instead of raising")
	}

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureRejected, f.State())
	assert.ErrorContains(t, f.Err(), "own future")
}

func TestWaitAllAggregatesRejections(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	var aggErr error
	outer := s.Async(func(fib *scheduler.Fiber, _ any) (any, error) {
		a := s.Async(func(*scheduler.Fiber, any) (any, error) { return nil, errTest("a failed") }, nil)
		b := s.Async(func(*scheduler.Fiber, any) (any, error) { return nil, errTest("b failed") }, nil)
		_, err := s.WaitAll(fib, []*scheduler.Future{a, b})
		aggErr = err
		return nil, err
	}, nil)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureRejected, outer.State())
	require.Error(t, aggErr)
}

func TestSleepBlocksAtLeastRequestedDuration(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	var elapsed time.Duration
	f := s.Async(func(fib *scheduler.Fiber, _ any) (any, error) {
		elapsed = s.Sleep(fib, 20*time.Millisecond)
		return nil, nil
	}, nil)

	require.NoError(t, s.Run())
	assert.Equal(t, scheduler.FutureFulfilled, f.State())
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
}

func TestWaitTimesOutWithoutCancellingFuture(t *testing.T) {
	s := scheduler.New()
	defer s.Close()

	release := make(chan struct{})
	slow := s.Async(func(*scheduler.Fiber, any) (any, error) {
		<-release
		return "eventually", nil
	}, nil)

	var timedOut bool
	outer := s.Async(func(fib *scheduler.Fiber, _ any) (any, error) {
		_, _, to := s.Wait(fib, slow, 10)
		timedOut = to
		close(release)
		return nil, nil
	}, nil)

	require.NoError(t, s.Run())
	assert.True(t, timedOut)
	assert.Equal(t, scheduler.FutureFulfilled, outer.State())
	assert.Equal(t, scheduler.FutureFulfilled, slow.State())
	assert.Equal(t, "eventually", slow.Value())
}

func TestAbortRejectsPendingFutures(t *testing.T) {
	s := scheduler.New()

	block := make(chan struct{})
	f := s.Async(func(*scheduler.Fiber, any) (any, error) {
		<-block
		return nil, nil
	}, nil)

	s.Abort()
	close(block)

	assert.Eventually(t, func() bool {
		return f.State() == scheduler.FutureRejected
	}, time.Second, time.Millisecond)
}
