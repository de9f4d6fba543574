package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes a Scheduler's observability surface as standard
// Prometheus collectors: ready-queue depth, fiber invocation counters and
// pending timers. FiberPoolIdle is registered alongside them, but the
// scheduler never sets it, so it always reads zero. Unlike the teacher's package-level
// promauto globals (appropriate for a process-wide singleton queue
// service), a Scheduler is an instantiable value -- tests routinely build
// several -- so each Scheduler owns its own [prometheus.Registry] instead
// of registering into the default one.
type Metrics struct {
	enabled bool

	ReadyQueueDepth prometheus.Gauge
	FiberPoolIdle   prometheus.Gauge
	FibersStarted   prometheus.Counter
	FibersFailed    prometheus.Counter
	TimersPending   prometheus.Gauge
}

func newMetrics(enabled bool) *Metrics {
	m := &Metrics{
		enabled: enabled,
		ReadyQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lift_scheduler_ready_queue_depth",
			Help: "Number of fiber jobs currently in the ready set.",
		}),
		FiberPoolIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lift_scheduler_fiber_pool_idle",
			Help: "Number of idle, reusable fiber worker goroutines.",
		}),
		FibersStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lift_scheduler_fibers_started_total",
			Help: "Total number of fiber bodies dispatched via Async.",
		}),
		FibersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lift_scheduler_fibers_failed_total",
			Help: "Total number of fiber bodies that returned a rejecting error.",
		}),
		TimersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lift_scheduler_timers_pending",
			Help: "Number of one-shot timers currently scheduled.",
		}),
	}
	return m
}

// Registry returns a fresh prometheus.Registry with m's collectors
// registered, suitable for exposing via an HTTP /metrics handler. Returns
// nil if metrics were not enabled via WithMetrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if !m.enabled {
		return nil
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.ReadyQueueDepth, m.FiberPoolIdle, m.FibersStarted, m.FibersFailed, m.TimersPending)
	return reg
}

func (m *Metrics) observeFiberStarted() {
	if m.enabled {
		m.FibersStarted.Inc()
	}
}

func (m *Metrics) observeFiberDone(failed bool) {
	if m.enabled && failed {
		m.FibersFailed.Inc()
	}
}
