package stream

import "time"

// FromArray builds a Readable that yields each element of items in order,
// then ends. If delay is non-zero, each call of the reader hook pushes on a
// timer delay later instead of immediately; that timer pushes elements
// until Push reports backpressure or the array is exhausted, so elements
// are not spaced delay apart individually (used by tests to exercise
// asynchronous sources without a real scheduler).
func FromArray(items []any, delay time.Duration) *Readable {
	var r *Readable
	idx := 0

	emit := func() {
		for idx < len(items) {
			if !r.Push(items[idx], nil) {
				idx++
				return
			}
			idx++
		}
		if idx >= len(items) {
			r.Push(nil, nil)
		}
	}

	r = NewReadable(DefaultHighWaterMark, func(r *Readable) {
		if delay <= 0 {
			emit()
			return
		}
		time.AfterFunc(delay, emit)
	})
	return r
}

// ToArray builds a Writable that appends each written chunk to out, in
// arrival order, the counterpart to FromArray: `from_array(...).pipe(...
// .pipe(to_array(L)))` leaves L holding every chunk that reached the sink.
// If delay is non-zero, each chunk is appended delay after it's written
// rather than immediately, letting a pipe's two sinks advance at distinct,
// independently-testable paces (§8's backpressure scenarios).
func ToArray(out *[]any, delay time.Duration) *Writable {
	return NewWritable(DefaultHighWaterMark, func(w *Writable, data any, callback func(error)) {
		if delay <= 0 {
			*out = append(*out, data)
			callback(nil)
			return
		}
		time.AfterFunc(delay, func() {
			*out = append(*out, data)
			callback(nil)
		})
	})
}

// Drain reads r synchronously (blocking the calling goroutine, ordinarily a
// fiber body, via Read) into a freshly allocated slice, returning the
// stream's terminal error if non-nil. A convenience for tests and callers
// that want a Readable's full contents without wiring up a Writable sink.
func Drain(r *Readable) ([]any, error) {
	var out []any
	for {
		v, err := r.Read()
		if err != nil {
			return out, err
		}
		if v == nil && r.Ended() {
			return out, nil
		}
		out = append(out, v)
	}
}
