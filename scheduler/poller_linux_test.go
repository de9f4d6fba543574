//go:build linux

package scheduler

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPollerReportsPipeReadable(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	p, err := NewPoller()
	require.NoError(t, err)
	defer p.Close()

	fired := make(chan IOEvents, 1)
	require.NoError(t, p.RegisterFD(int(r.Fd()), EventRead, func(ev IOEvents) {
		fired <- ev
	}))

	_, err = w.Write([]byte("hi"))
	require.NoError(t, err)

	n, err := p.PollOnce(1000)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	select {
	case ev := <-fired:
		require.NotZero(t, ev&EventRead)
	default:
		t.Fatal("callback not invoked")
	}
}

func TestPollerUnregisterFD(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	p, err := NewPoller()
	require.NoError(t, err)
	defer p.Close()

	require.NoError(t, p.RegisterFD(int(r.Fd()), EventRead, func(IOEvents) {}))
	require.NoError(t, p.UnregisterFD(int(r.Fd())))
	require.ErrorIs(t, p.UnregisterFD(int(r.Fd())), ErrFDNotRegistered)
}
