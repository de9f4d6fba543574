// Package scheduler implements the cooperative-async runtime at the core
// of Lift: fibers, futures, timers, and the Scheduler that drives them to
// completion.
//
// The reference model is a single-threaded reactor where fiber bodies
// cooperatively yield at enumerated suspension points. This package
// follows the same contract -- program order within a fiber, no ordering
// guarantee across fibers except via completion -- using the "green
// threads" port strategy: each running fiber body owns a pooled goroutine,
// and Wait/WaitAll/Sleep suspend that goroutine directly via channel
// receive rather than threading an explicit continuation.
package scheduler
