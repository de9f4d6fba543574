//go:build linux

package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// IOEvents is a bitmask of readiness conditions a registered file
// descriptor can be polled for, reported to the stream package's OS
// bridge (§6 File/OS bridges).
type IOEvents uint32

const (
	EventRead IOEvents = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// IOCallback is invoked from PollOnce, on the goroutine that calls it, when
// a registered descriptor becomes ready.
type IOCallback func(IOEvents)

var (
	ErrFDAlreadyRegistered = errors.New("scheduler: fd already registered")
	ErrFDNotRegistered     = errors.New("scheduler: fd not registered")
	ErrPollerClosed        = errors.New("scheduler: poller closed")
)

type fdEntry struct {
	callback IOCallback
	events   IOEvents
}

// Poller bridges OS file descriptors into the scheduler via Linux epoll,
// so the stream package's file/process wrappers (§6) can suspend a fiber
// until data is actually available instead of busy-polling.
type Poller struct {
	epfd int

	mu     sync.RWMutex
	fds    map[int]fdEntry
	closed atomic.Bool
}

// NewPoller creates and initializes an epoll instance.
func NewPoller() (*Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &Poller{epfd: epfd, fds: make(map[int]fdEntry)}, nil
}

// Close releases the underlying epoll instance.
func (p *Poller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(p.epfd)
}

// RegisterFD starts monitoring fd for events, invoking cb from PollOnce
// when it becomes ready.
func (p *Poller) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	if p.closed.Load() {
		return ErrPollerClosed
	}
	p.mu.Lock()
	if _, ok := p.fds[fd]; ok {
		p.mu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{callback: cb, events: events}
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: eventsToEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		p.mu.Lock()
		delete(p.fds, fd)
		p.mu.Unlock()
		return err
	}
	return nil
}

// ModifyFD updates the event mask for an already-registered fd.
func (p *Poller) ModifyFD(fd int, events IOEvents) error {
	p.mu.Lock()
	entry, ok := p.fds[fd]
	if !ok {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	entry.events = events
	p.fds[fd] = entry
	p.mu.Unlock()

	ev := &unix.EpollEvent{Events: eventsToEpoll(events), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev)
}

// UnregisterFD stops monitoring fd. Callers must still close fd themselves.
func (p *Poller) UnregisterFD(fd int) error {
	p.mu.Lock()
	if _, ok := p.fds[fd]; !ok {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	delete(p.fds, fd)
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// PollOnce blocks up to timeoutMs waiting for at least one registered fd to
// become ready, dispatching callbacks inline, and returns the number of
// ready descriptors observed.
func (p *Poller) PollOnce(timeoutMs int) (int, error) {
	if p.closed.Load() {
		return 0, ErrPollerClosed
	}
	var buf [128]unix.EpollEvent
	n, err := unix.EpollWait(p.epfd, buf[:], timeoutMs)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		fd := int(buf[i].Fd)
		p.mu.RLock()
		entry, ok := p.fds[fd]
		p.mu.RUnlock()
		if ok && entry.callback != nil {
			entry.callback(epollToEvents(buf[i].Events))
		}
	}
	return n, nil
}

func eventsToEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}
