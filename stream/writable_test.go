package stream_test

import (
	"testing"
	"time"

	"github.com/joeycumines/lift/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritableWritesFlowToWriterFunc(t *testing.T) {
	var got []any
	w := stream.NewWritable(0, func(w *stream.Writable, data any, callback func(error)) {
		got = append(got, data)
		callback(nil)
	})

	w.Write("a", nil)
	w.Write("b", nil)

	assert.Eventually(t, func() bool { return len(got) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, []any{"a", "b"}, got)
}

func TestWritableOnFinishFiresAfterAllChunksFlushed(t *testing.T) {
	w := stream.NewWritable(0, func(w *stream.Writable, data any, callback func(error)) {
		callback(nil)
	})

	finished := make(chan error, 1)
	w.OnFinish(func(err error) { finished <- err })

	w.Write("a", nil)
	w.Write(nil, nil)

	select {
	case err := <-finished:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("finish never fired")
	}
	assert.True(t, w.Finished())
}

func TestWritableWaitFinishBlocksUntilDone(t *testing.T) {
	w := stream.NewWritable(0, func(w *stream.Writable, data any, callback func(error)) {
		callback(nil)
	})
	w.Write(nil, nil)

	err := w.WaitFinish()
	assert.NoError(t, err)
}

func TestWritableCorkDefersFlush(t *testing.T) {
	var got []any
	w := stream.NewWritable(0, func(w *stream.Writable, data any, callback func(error)) {
		got = append(got, data)
		callback(nil)
	})

	w.Cork()
	w.Write("a", nil)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, got)

	w.Uncork()
	assert.Eventually(t, func() bool { return len(got) == 1 }, time.Second, time.Millisecond)
}

func TestWritableOnDrainFiresBelowHighWaterMark(t *testing.T) {
	release := make(chan struct{})
	w := stream.NewWritable(2, func(w *stream.Writable, data any, callback func(error)) {
		<-release
		callback(nil)
	})

	// "a" is popped into flight immediately (buffer empties), so only the
	// subsequent two writes actually accumulate in the buffer.
	require.True(t, w.Write("a", nil))
	require.True(t, w.Write("b", nil))
	require.False(t, w.Write("c", nil))

	drained := make(chan struct{})
	w.OnDrain(func() { close(drained) })

	close(release)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain never fired")
	}
}
