package scheduler

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFutureRegistryTracksAndScavengesSettled(t *testing.T) {
	r := newFutureRegistry()
	f := newFuture()
	r.track(f)
	require.Equal(t, 1, r.Len())

	f.fulfill("done")
	r.Scavenge(10)
	assert.Equal(t, 0, r.Len())
}

func TestFutureRegistryScavengesGarbageCollected(t *testing.T) {
	r := newFutureRegistry()
	func() {
		f := newFuture()
		r.track(f)
	}()
	runtime.GC()
	runtime.GC()

	r.Scavenge(10)
	assert.Equal(t, 0, r.Len())
}

func TestFutureRegistryRejectAll(t *testing.T) {
	r := newFutureRegistry()
	f := newFuture()
	r.track(f)

	r.RejectAll(assertError{"shutdown"})
	assert.Equal(t, FutureRejected, f.State())
	assert.Equal(t, 0, r.Len())
}
