// Package stream implements the backpressure-aware asynchronous data
// transport primitives used throughout Lift: Readable, Writable, Transform
// (a paired Readable+Writable), array adapters for testing, and OS
// file/process bridges (ReadFile can read through the scheduler package's
// epoll poller; process pipes are read on dedicated goroutines).
//
// Chunks are opaque any values; ownership transfers from producer to
// consumer on every Push/Read, matching the specification's resource
// policy (§5) that streams own their buffers exclusively.
package stream
