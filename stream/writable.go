package stream

import (
	"sync"

	"github.com/joeycumines/lift/diagnostic"
)

// WriterFunc is the extension point a concrete Writable (file, process
// stdin, in-memory sink) implements to actually dispose of a chunk. It must
// eventually invoke callback exactly once, with a non-nil error on failure.
type WriterFunc func(w *Writable, data any, callback func(error))

// Writable is a backpressure-aware sink: writes past the high-water mark
// are buffered and Write reports false until a Drain event fires.
type Writable struct {
	highWaterMark int
	write         WriterFunc

	mu         sync.Mutex
	buf        []any
	corked     int
	draining   bool
	ended      bool
	finished   bool
	finishErr  error
	drainCbs   []func()
	finishCbs  []func(error)
	finishedCh chan struct{}
}

// NewWritable constructs a Writable that disposes of chunks via write (0
// uses DefaultHighWaterMark).
func NewWritable(highWaterMark int, write WriterFunc) *Writable {
	if highWaterMark <= 0 {
		highWaterMark = DefaultHighWaterMark
	}
	return &Writable{
		highWaterMark: highWaterMark,
		write:         write,
		finishedCh:    make(chan struct{}),
	}
}

// Write is the producer-side entry point. data == nil ends the stream (err,
// if non-nil, becomes the terminal finish error). Returns true iff the
// producer may keep writing without exceeding the high-water mark.
func (w *Writable) Write(data any, err error) bool {
	w.mu.Lock()
	if w.ended {
		w.mu.Unlock()
		diagnostic.Report(diagnostic.New("runtime_error: ${1}", ErrWriteAfterEnd.Error()))
		return false
	}

	if data == nil {
		w.ended = true
		w.finishErr = err
		below := len(w.buf) < w.highWaterMark
		w.mu.Unlock()
		w.pump()
		return below
	}

	w.buf = append(w.buf, data)
	below := len(w.buf) < w.highWaterMark
	w.mu.Unlock()
	w.pump()
	return below
}

// pump drains buffered chunks to the underlying WriterFunc one at a time,
// respecting cork and avoiding re-entrant dispatch.
func (w *Writable) pump() {
	w.mu.Lock()
	if w.draining || w.corked > 0 || w.write == nil {
		w.mu.Unlock()
		return
	}
	if len(w.buf) == 0 {
		if w.ended && !w.finished {
			w.finished = true
			err := w.finishErr
			cbs := append([]func(error)(nil), w.finishCbs...)
			close(w.finishedCh)
			w.mu.Unlock()
			for _, cb := range cbs {
				cb(err)
			}
		} else {
			w.mu.Unlock()
		}
		return
	}
	data := w.buf[0]
	w.buf = w.buf[1:]
	w.draining = true
	w.mu.Unlock()

	// Dispatched on its own goroutine: a WriterFunc is free to block before
	// invoking callback, and pump is routinely called from the producer's
	// own Write, which must never stall on I/O.
	go w.write(w, data, func(err error) {
		w.mu.Lock()
		w.draining = false

		if err != nil {
			// A write failure ends the stream immediately, discarding any
			// chunks still buffered, mirroring the "error" terminal state
			// of the specification's Writable contract (§4.3) rather than
			// raising a fatal runtime_error for what is routinely a
			// recoverable I/O condition (disk full, broken pipe, ...).
			w.ended = true
			w.buf = nil
			w.finishErr = err
		}

		belowAfter := len(w.buf) < w.highWaterMark
		var drainCbs []func()
		if belowAfter {
			drainCbs = w.drainCbs
			w.drainCbs = nil
		}
		w.mu.Unlock()

		for _, cb := range drainCbs {
			cb()
		}
		w.pump()
	})
}

// OnDrain subscribes cb to fire once, the next time buffered writes fall
// back below the high-water mark after having exceeded it. Callers that
// need to observe every subsequent crossing must re-subscribe from within
// cb; this one-shot contract is what lets Pipe register a fresh per-episode
// callback without accumulating stale closures across the stream's
// lifetime.
func (w *Writable) OnDrain(cb func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.drainCbs = append(w.drainCbs, cb)
}

// OnFinish subscribes cb to fire exactly once, after every buffered chunk
// has been handed to the WriterFunc and the stream has ended.
func (w *Writable) OnFinish(cb func(error)) {
	w.mu.Lock()
	if w.finished {
		err := w.finishErr
		w.mu.Unlock()
		cb(err)
		return
	}
	w.finishCbs = append(w.finishCbs, cb)
	w.mu.Unlock()
}

// WaitFinish suspends the calling goroutine until the stream finishes,
// returning the terminal error if any. One of the enumerated suspension
// points.
func (w *Writable) WaitFinish() error {
	<-w.finishedCh
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finishErr
}

// Cork defers flushing buffered chunks until a matching Uncork; nested
// Cork/Uncork pairs are reference counted.
func (w *Writable) Cork() {
	w.mu.Lock()
	w.corked++
	w.mu.Unlock()
}

// Uncork releases one Cork reference and resumes pumping once the count
// reaches zero.
func (w *Writable) Uncork() {
	w.mu.Lock()
	if w.corked > 0 {
		w.corked--
	}
	w.mu.Unlock()
	w.pump()
}

// Ended reports whether Write(nil, ...) has been called.
func (w *Writable) Ended() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ended
}

// Finished reports whether every chunk has been flushed and the stream has
// finished.
func (w *Writable) Finished() bool {
	select {
	case <-w.finishedCh:
		return true
	default:
		return false
	}
}
