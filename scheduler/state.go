package scheduler

import "sync/atomic"

// LoopState is the run state of a [Scheduler].
//
//	StateAwake (0) -> StateRunning (1)       [Run]
//	StateDraining (2) -> StateRunning (1)    [Run, if the state was set to Draining]
//	any state -> StateStopped (3)            [Run returns, or Abort]
//
// The Scheduler itself never moves into StateDraining. Use TryTransition
// (CAS) for the Running/Draining states; use Store only for the terminal
// Stopped state.
type LoopState uint64

const (
	StateAwake    LoopState = 0
	StateRunning  LoopState = 1
	StateDraining LoopState = 2
	StateStopped  LoopState = 3
)

func (s LoopState) String() string {
	switch s {
	case StateAwake:
		return "awake"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FastState is a lock-free state machine backed by a single atomic word.
type FastState struct {
	v atomic.Uint64
}

// NewFastState returns a FastState initialized to StateAwake.
func NewFastState() *FastState {
	s := &FastState{}
	s.v.Store(uint64(StateAwake))
	return s
}

// Load returns the current state.
func (s *FastState) Load() LoopState { return LoopState(s.v.Load()) }

// Store unconditionally sets the state, for terminal transitions.
func (s *FastState) Store(state LoopState) { s.v.Store(uint64(state)) }

// TryTransition attempts an atomic from->to transition.
func (s *FastState) TryTransition(from, to LoopState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

// IsStopped reports whether the state is StateStopped.
func (s *FastState) IsStopped() bool { return s.Load() == StateStopped }

// FutureState is the lifecycle state of a [Future]: pending -> scheduled ->
// running -> (fulfilled | rejected).
type FutureState uint64

const (
	FuturePending FutureState = iota
	FutureScheduled
	FutureRunning
	FutureFulfilled
	FutureRejected
)

func (s FutureState) String() string {
	switch s {
	case FuturePending:
		return "pending"
	case FutureScheduled:
		return "scheduled"
	case FutureRunning:
		return "running"
	case FutureFulfilled:
		return "fulfilled"
	case FutureRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Settled reports whether s is a terminal future state.
func (s FutureState) Settled() bool { return s == FutureFulfilled || s == FutureRejected }
