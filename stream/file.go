package stream

import (
	"errors"
	"io"
	"os"
	"sync"

	"github.com/joeycumines/lift/scheduler"
)

// DefaultChunkSize is the read buffer size ReadFile uses for every read.
const DefaultChunkSize = 32 * 1024

// ReadFile returns a Readable that streams fd's contents in
// DefaultChunkSize-ish chunks. On Linux it registers fd with poller (if
// non-nil) so a read is only attempted once the descriptor reports ready,
// which happens only as some caller drives poller.PollOnce; elsewhere (or
// when poller is nil, or registration fails) it falls back to a dedicated
// goroutine issuing blocking reads.
func ReadFile(f *os.File, poller *scheduler.Poller) *Readable {
	var r *Readable
	var mu sync.Mutex
	started := false
	buf := make([]byte, DefaultChunkSize)

	readOnce := func() bool {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.Push(chunk, nil)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Push(nil, nil)
			} else {
				r.Push(nil, err)
			}
			return true
		}
		return false
	}

	if poller != nil {
		fd := int(f.Fd())
		r = NewReadable(DefaultHighWaterMark, func(r *Readable) {
			mu.Lock()
			defer mu.Unlock()
			if started {
				return
			}
			started = true
			err := poller.RegisterFD(fd, scheduler.EventRead, func(scheduler.IOEvents) {
				if readOnce() {
					_ = poller.UnregisterFD(fd)
				}
			})
			if err != nil {
				go func() {
					for !readOnce() {
					}
				}()
			}
		})
		return r
	}

	r = NewReadable(DefaultHighWaterMark, func(r *Readable) {
		mu.Lock()
		defer mu.Unlock()
		if started {
			return
		}
		started = true
		go func() {
			for !readOnce() {
			}
		}()
	})
	return r
}

// WriteFile returns a Writable that writes each chunk ([]byte) to f. Writes
// happen on a dedicated goroutine per chunk so the caller's fiber is never
// blocked on I/O directly.
func WriteFile(f *os.File) *Writable {
	return NewWritable(DefaultHighWaterMark, func(w *Writable, data any, callback func(error)) {
		b, ok := data.([]byte)
		if !ok {
			callback(errors.New("stream: WriteFile chunk must be []byte"))
			return
		}
		go func() {
			_, err := f.Write(b)
			callback(err)
		}()
	})
}
