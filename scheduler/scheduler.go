package scheduler

import (
	"container/heap"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/lift/diagnostic"
)

// Scheduler drives cooperative fiber execution (§4.1 of the specification):
// async bodies are dispatched onto pooled goroutines, one-shot timers fire
// on their own schedule, and Run blocks until every dispatched fiber has
// returned.
//
// The specification's reference model is a single-threaded reactor; this
// port follows the design notes' sanctioned green-thread strategy instead,
// giving each concurrently-running fiber its own goroutine (reused via a
// pool) so suspension points (Wait, WaitAll, Sleep) block the calling
// goroutine directly via channel receive rather than requiring an explicit
// continuation/yield mechanism.
type Scheduler struct {
	opts    *schedulerOptions
	state   *FastState
	pool    *fiberPool
	reg     *futureRegistry
	metrics *Metrics

	wg sync.WaitGroup

	timerMu   sync.Mutex
	timers    timerHeap
	timerWake chan struct{}
	stopCh    chan struct{}
	stopOnce  sync.Once

	pendingCount atomic.Int64
}

// New constructs a Scheduler and starts its timer-driving goroutine. Call
// Close (or let Run return and then Close) to release it.
func New(opts ...Option) *Scheduler {
	cfg := resolveOptions(opts)
	s := &Scheduler{
		opts:      cfg,
		state:     NewFastState(),
		reg:       newFutureRegistry(),
		metrics:   newMetrics(cfg.metricsEnabled),
		timerWake: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
	s.pool = newFiberPool(s, cfg.fiberPoolSize)
	go s.timerLoop()
	return s
}

// Async schedules fn to run on its own fiber with argument arg, returning
// immediately with a pending Future. fn may itself call back into s (Wait,
// WaitAll, Sleep, Async) to suspend the fiber at an enumerated suspension
// point.
func (s *Scheduler) Async(fn AsyncFunc, arg any) *Future {
	f := newFuture()
	s.reg.track(f)
	f.markScheduled()
	s.trackDispatch()
	s.pool.dispatch(fiberJob{fn: fn, arg: arg, future: f})
	return f
}

// trackDispatch records a unit of outstanding work (fiber about to run),
// called once per fiberPool.dispatch regardless of whether it originated
// from Async or a fired timer.
func (s *Scheduler) trackDispatch() {
	s.wg.Add(1)
	s.pendingCount.Add(1)
	s.metrics.ReadyQueueDepth.Set(float64(s.pendingCount.Load()))
}

// fiberCompleted is called by the fiber pool once a job's body has
// returned and its future settled.
func (s *Scheduler) fiberCompleted() {
	s.pendingCount.Add(-1)
	s.metrics.ReadyQueueDepth.Set(float64(s.pendingCount.Load()))
	s.wg.Done()
}

// Run blocks until every fiber dispatched on this Scheduler, including
// fibers started by running fibers, has returned. A ScheduleTimer timer
// that has not fired yet does not keep Run waiting; its fiber is only
// counted once the timer fires. Run returns ErrSchedulerAlreadyRunning if
// called concurrently, after a previous Run has returned, or after Abort.
func (s *Scheduler) Run() error {
	if !s.state.TryTransition(StateAwake, StateRunning) {
		if !s.state.TryTransition(StateDraining, StateRunning) {
			return ErrSchedulerAlreadyRunning
		}
	}
	s.wg.Wait()
	s.state.Store(StateStopped)
	return nil
}

// Abort is a test-only back door: it discards every pending timer without
// firing it, rejects every unsettled tracked future with
// ErrSchedulerStopped, and stops the timer-driving goroutine. Fiber bodies
// already executing are not interrupted, and a Run in progress keeps
// waiting for them to return.
func (s *Scheduler) Abort() {
	s.timerMu.Lock()
	for _, t := range s.timers {
		t.live = false
	}
	s.timers = nil
	s.timerMu.Unlock()

	s.reg.RejectAll(ErrSchedulerStopped)
	s.state.Store(StateStopped)
	s.Close()
}

// Close stops the timer-driving goroutine. Safe to call more than once.
func (s *Scheduler) Close() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Metrics returns the Scheduler's Prometheus collectors (see WithMetrics).
func (s *Scheduler) Metrics() *Metrics { return s.metrics }

// ScheduleTimer arranges for fn to run after delay elapses, as a fresh
// fiber invocation via Async, and returns the resulting Future.
func (s *Scheduler) ScheduleTimer(delay time.Duration, fn func() (any, error)) *Future {
	f := newFuture()
	s.reg.track(f)
	f.markScheduled()

	t := &scheduledTimer{when: time.Now().Add(delay), live: true}
	t.fn = func() {
		s.trackDispatch()
		s.pool.dispatch(fiberJob{
			fn:     func(*Fiber, any) (any, error) { return fn() },
			future: f,
		})
	}

	s.timerMu.Lock()
	heap.Push(&s.timers, t)
	s.metrics.TimersPending.Set(float64(len(s.timers)))
	s.timerMu.Unlock()

	select {
	case s.timerWake <- struct{}{}:
	default:
	}
	return f
}

// Sleep suspends the calling fiber for at least d, returning the actual
// elapsed duration. It is one of the specification's enumerated suspension
// points.
func (s *Scheduler) Sleep(fiber *Fiber, d time.Duration) time.Duration {
	start := time.Now()
	done := make(chan struct{})

	s.timerMu.Lock()
	t := &scheduledTimer{when: start.Add(d), live: true, fn: func() { close(done) }}
	heap.Push(&s.timers, t)
	s.metrics.TimersPending.Set(float64(len(s.timers)))
	s.timerMu.Unlock()

	select {
	case s.timerWake <- struct{}{}:
	default:
	}

	<-done
	return time.Since(start)
}

// Wait suspends the calling fiber until f settles or timeoutMS elapses (0
// means no timeout). Returns the future's value, its rejection error, and
// whether the wait timed out (in which case err and val are both zero and
// f continues running in the background).
//
// Passing a fiber's own future raises immediately (§4.1, §8): waiting on
// yourself can never settle, so it is treated the same as any other
// programmer error the scheduler can detect synchronously, not a deadlock
// left to hang forever.
func (s *Scheduler) Wait(fiber *Fiber, f *Future, timeoutMS int64) (val any, err error, timedOut bool) {
	if fiber != nil && fiber.future == f {
		diagnostic.Report(diagnostic.New("runtime_error: ${1}", "wait called on the calling fiber's own future"))
	}

	if fiber != nil && fiber.future != nil {
		fiber.future.addChild(f)
	}

	if timeoutMS <= 0 {
		<-f.done()
		return f.Value(), f.Err(), false
	}

	timer := time.NewTimer(time.Duration(timeoutMS) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-f.done():
		return f.Value(), f.Err(), false
	case <-timer.C:
		return nil, nil, true
	}
}

// WaitAll suspends the calling fiber until every future in fs has settled,
// returning each future's value in order and an aggregated diagnostic (via
// diagnostic.Aggregate, unwrapped to the single child when exactly one
// future rejected) if any rejected.
func (s *Scheduler) WaitAll(fiber *Fiber, fs []*Future) ([]any, error) {
	for _, f := range fs {
		if fiber != nil && fiber.future != nil {
			fiber.future.addChild(f)
		}
		<-f.done()
	}

	vals := make([]any, len(fs))
	var rejections []*diagnostic.Diagnostic
	for i, f := range fs {
		vals[i] = f.Value()
		if rerr := f.Err(); rerr != nil {
			if d, ok := rerr.(*diagnostic.Diagnostic); ok {
				rejections = append(rejections, d)
			} else {
				rejections = append(rejections, diagnostic.New("error: ${1}", rerr.Error()))
			}
		}
	}
	if len(rejections) == 0 {
		return vals, nil
	}
	return vals, diagnostic.Aggregate("error", "one or more awaited futures rejected: ${nested}", rejections)
}

func (s *Scheduler) timerLoop() {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		s.timerMu.Lock()
		next, ok := (&s.timers).nextFireTime()
		s.timerMu.Unlock()

		if ok {
			d := time.Until(next)
			if d < 0 {
				d = 0
			}
			timer.Reset(d)
		}

		select {
		case <-s.stopCh:
			return
		case <-s.timerWake:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			continue
		case <-timer.C:
			s.fireDueTimers()
		}
	}
}

func (s *Scheduler) fireDueTimers() {
	s.timerMu.Lock()
	due := popDue(&s.timers, time.Now())
	s.metrics.TimersPending.Set(float64(len(s.timers)))
	s.timerMu.Unlock()

	for _, t := range due {
		t.live = false
		t.fn()
	}
}
