package stream

import (
	"sync"
	"sync/atomic"

	"github.com/joeycumines/lift/diagnostic"
)

// DefaultHighWaterMark is the buffered-chunk threshold past which Push
// returns false, asking the producer to pause (§4.3 Readable contract).
const DefaultHighWaterMark = 16

// ReaderFunc is the reference implementation's `reader(stream)` hook
// (§6): called when more input is wanted, i.e. each time Read finds the
// buffer empty and once when Start switches the stream into flowing mode;
// implementations should Push until Push returns false.
type ReaderFunc func(r *Readable)

// Readable is a pull- or push-driven source of chunks with backpressure.
type Readable struct {
	highWaterMark int
	reader        ReaderFunc

	mu       sync.Mutex
	buf      []any
	ended    bool
	endErr   error
	flowing  bool
	notify   []chan struct{}
	dataCbs  []func(any)
	readCbs  []func()
	endCbs   []func(error)
	pipeDsts []*pipeLink
}

type pipeLink struct {
	w        *Writable
	keepOpen bool
	active   atomic.Bool
}

// NewReadable constructs a paused Readable with the given high-water mark
// (0 uses DefaultHighWaterMark) and optional reader hook invoked on demand
// when the stream starts flowing or when Read finds the buffer empty.
func NewReadable(highWaterMark int, reader ReaderFunc) *Readable {
	if highWaterMark <= 0 {
		highWaterMark = DefaultHighWaterMark
	}
	return &Readable{highWaterMark: highWaterMark, reader: reader}
}

// Push is the producer-side entry point. data == nil ends the stream (err,
// if non-nil, is the terminal error raised to readers). Returns true iff
// the producer should keep pushing (buffer below high-water mark and
// stream not yet ended).
func (r *Readable) Push(data any, err error) bool {
	r.mu.Lock()
	if r.ended {
		r.mu.Unlock()
		diagnostic.Report(diagnostic.New("runtime_error: ${1}", ErrPushAfterEnd.Error()))
		return false
	}

	if data == nil {
		r.ended = true
		r.endErr = err
		cbs := append([]func(error)(nil), r.endCbs...)
		notify := r.notify
		r.notify = nil
		r.mu.Unlock()
		for _, ch := range notify {
			close(ch)
		}
		for _, cb := range cbs {
			cb(err)
		}
		return false
	}

	if r.flowing {
		cbs := append([]func(any)(nil), r.dataCbs...)
		r.mu.Unlock()
		for _, cb := range cbs {
			cb(data)
		}
		r.mu.Lock()
		below := len(r.buf) < r.highWaterMark
		r.mu.Unlock()
		return below
	}

	r.buf = append(r.buf, data)
	readCbs := append([]func()(nil), r.readCbs...)
	notify := r.notify
	r.notify = nil
	below := len(r.buf) < r.highWaterMark
	r.mu.Unlock()

	for _, ch := range notify {
		close(ch)
	}
	for _, cb := range readCbs {
		cb()
	}
	return below
}

// TryRead is a non-blocking pop: returns (nil, false) if the buffer is
// currently empty and the stream hasn't ended.
func (r *Readable) TryRead() (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.buf) == 0 {
		return nil, false
	}
	v := r.buf[0]
	r.buf = r.buf[1:]
	return v, true
}

// Read suspends the calling goroutine (ordinarily a fiber body) until a
// chunk is available or the stream ends, in which case it returns (nil,
// endErr). Read is one of the specification's enumerated suspension points.
func (r *Readable) Read() (any, error) {
	for {
		r.mu.Lock()
		if len(r.buf) > 0 {
			v := r.buf[0]
			r.buf = r.buf[1:]
			r.mu.Unlock()
			return v, nil
		}
		if r.ended {
			err := r.endErr
			r.mu.Unlock()
			return nil, err
		}
		ch := make(chan struct{})
		r.notify = append(r.notify, ch)
		reader := r.reader
		r.mu.Unlock()

		if reader != nil {
			reader(r)
		}
		<-ch
	}
}

// OnData subscribes cb to every chunk pushed while the stream is flowing.
func (r *Readable) OnData(cb func(any)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dataCbs = append(r.dataCbs, cb)
}

// OnReadable subscribes cb to be invoked whenever new data becomes
// available in paused mode.
func (r *Readable) OnReadable(cb func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readCbs = append(r.readCbs, cb)
}

// OnEnd subscribes cb to be invoked exactly once, when the stream ends.
func (r *Readable) OnEnd(cb func(error)) {
	r.mu.Lock()
	if r.ended {
		err := r.endErr
		r.mu.Unlock()
		cb(err)
		return
	}
	r.endCbs = append(r.endCbs, cb)
	r.mu.Unlock()
}

// Start switches the stream into flowing mode: buffered chunks are
// delivered to data subscribers immediately, and future pushes bypass the
// buffer entirely.
func (r *Readable) Start() {
	r.mu.Lock()
	if r.flowing {
		r.mu.Unlock()
		return
	}
	r.flowing = true
	buffered := r.buf
	r.buf = nil
	cbs := append([]func(any)(nil), r.dataCbs...)
	reader := r.reader
	ended := r.ended
	r.mu.Unlock()

	for _, v := range buffered {
		for _, cb := range cbs {
			cb(v)
		}
	}
	if reader != nil && !ended {
		reader(r)
	}
}

// Stop switches the stream back into paused mode.
func (r *Readable) Stop() { r.mu.Lock(); r.flowing = false; r.mu.Unlock() }

// Ended reports whether the stream has received its end marker.
func (r *Readable) Ended() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ended
}

// Pipe wires r's data/end events into w, pausing r (via w's on_drain)
// whenever w reports backpressure. If keepOpen is true, r ending does not
// end w. Returns w, per the reference implementation's chaining idiom.
func (r *Readable) Pipe(w *Writable, keepOpen bool) *Writable {
	link := &pipeLink{w: w, keepOpen: keepOpen}
	link.active.Store(true)
	r.mu.Lock()
	r.pipeDsts = append(r.pipeDsts, link)
	r.mu.Unlock()

	paused := false
	var resumeCh chan struct{}

	r.OnData(func(v any) {
		if !link.active.Load() {
			return
		}
		if paused {
			<-resumeCh
			paused = false
		}
		if !w.Write(v, nil) {
			paused = true
			resumeCh = make(chan struct{})
			ch := resumeCh
			w.OnDrain(func() { close(ch) })
		}
	})
	r.OnEnd(func(err error) {
		if link.active.Load() && !link.keepOpen {
			w.Write(nil, err)
		}
	})
	r.Start()
	return w
}

// Unpipe detaches w (or every piped destination, if w is nil) from r. Once
// detached, further data from r is no longer written to w. A forwarding
// call already blocked waiting for w's drain is not released by Unpipe; it
// stays blocked until that drain fires.
func (r *Readable) Unpipe(w *Writable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	filtered := r.pipeDsts[:0:0]
	for _, l := range r.pipeDsts {
		if w == nil || l.w == w {
			l.active.Store(false)
			continue
		}
		filtered = append(filtered, l)
	}
	r.pipeDsts = filtered
}
