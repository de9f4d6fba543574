package scheduler

import "time"

// schedulerOptions holds configuration resolved at Scheduler construction.
type schedulerOptions struct {
	fiberPoolSize  int
	metricsEnabled bool
	pollTimeout    time.Duration
}

// Option configures a Scheduler.
type Option interface {
	applyScheduler(*schedulerOptions)
}

type optionFunc func(*schedulerOptions)

func (f optionFunc) applyScheduler(o *schedulerOptions) { f(o) }

// WithFiberPoolSize caps the number of idle fibers retained for reuse
// between Async calls. Extra fibers beyond this size are discarded (their
// goroutines exit) once their body completes. Default: 64.
func WithFiberPoolSize(n int) Option {
	return optionFunc(func(o *schedulerOptions) {
		if n > 0 {
			o.fiberPoolSize = n
		}
	})
}

// WithMetrics enables the Prometheus collectors returned by
// Scheduler.Metrics. Default: disabled.
func WithMetrics(enabled bool) Option {
	return optionFunc(func(o *schedulerOptions) { o.metricsEnabled = enabled })
}

// WithPollTimeout records an I/O poll timeout in the Scheduler's options
// (default: 100ms). Run has no I/O poll phase and never reads this value;
// a Poller is driven only by callers of Poller.PollOnce.
func WithPollTimeout(d time.Duration) Option {
	return optionFunc(func(o *schedulerOptions) {
		if d > 0 {
			o.pollTimeout = d
		}
	})
}

func resolveOptions(opts []Option) *schedulerOptions {
	cfg := &schedulerOptions{
		fiberPoolSize: 64,
		pollTimeout:   100 * time.Millisecond,
	}
	for _, o := range opts {
		if o == nil {
			continue
		}
		o.applyScheduler(cfg)
	}
	return cfg
}
