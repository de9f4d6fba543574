package scheduler

import (
	"sync"

	"github.com/joeycumines/lift/diagnostic"
)

// AsyncFunc is a fiber body: given the single argument passed to Async (nil
// if none), it returns a result value or an error (ordinarily a
// *diagnostic.Diagnostic). AsyncFunc may call back into the Scheduler it
// was launched from (Wait, WaitAll, Sleep, Async) to suspend itself at one
// of the specification's enumerated suspension points.
type AsyncFunc func(fiber *Fiber, arg any) (any, error)

// Fiber is the execution context a running AsyncFunc observes: its owning
// Scheduler and its Future. The suspension methods (Scheduler.Wait,
// WaitAll and Sleep, which take the *Fiber) block the fiber's own
// goroutine, never another fiber's, until the awaited event occurs.
type Fiber struct {
	sched  *Scheduler
	future *Future
}

// Scheduler returns the Scheduler driving this fiber.
func (f *Fiber) Scheduler() *Scheduler { return f.sched }

// Future returns the future this fiber's body will settle on return.
func (f *Fiber) Future() *Future { return f.future }

type fiberJob struct {
	fn     AsyncFunc
	arg    any
	future *Future
}

// fiberPool is a LIFO pool of idle worker goroutines, each blocked on a
// per-worker job channel, generalizing the teacher's single-threaded
// reactor into the green-thread port the specification's design notes
// sanction: one goroutine per concurrently-running fiber, reused via this
// pool rather than spawned fresh for every Async call.
type fiberPool struct {
	sched   *Scheduler
	maxIdle int

	mu   sync.Mutex
	idle []chan fiberJob
}

func newFiberPool(sched *Scheduler, maxIdle int) *fiberPool {
	return &fiberPool{sched: sched, maxIdle: maxIdle}
}

// dispatch runs job on an idle worker goroutine, spawning one if the pool
// is empty.
func (p *fiberPool) dispatch(job fiberJob) {
	p.mu.Lock()
	n := len(p.idle)
	var ch chan fiberJob
	if n > 0 {
		ch = p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		ch <- job
		return
	}
	p.mu.Unlock()

	ch = make(chan fiberJob, 1)
	ch <- job
	go p.worker(ch)
}

func (p *fiberPool) worker(jobs chan fiberJob) {
	for job := range jobs {
		p.run(job)

		p.mu.Lock()
		if len(p.idle) >= p.maxIdle {
			p.mu.Unlock()
			return // goroutine exits, pool stays bounded.
		}
		p.idle = append(p.idle, jobs)
		p.mu.Unlock()
	}
}

func (p *fiberPool) run(job fiberJob) {
	job.future.markRunning()
	p.sched.metrics.observeFiberStarted()
	fib := &Fiber{sched: p.sched, future: job.future}

	val, err := diagnostic.PcallValue(func() (any, error) {
		return job.fn(fib, job.arg)
	})

	p.sched.metrics.observeFiberDone(err != nil)

	if err != nil {
		job.future.reject(err)
	} else {
		job.future.fulfill(val)
	}

	p.sched.fiberCompleted()
}
