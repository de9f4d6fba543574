package diagnostic

import (
	"fmt"
	"sync/atomic"
	"time"
)

// tracingEnabled is the global on/off switch for [Trace] wrappers (§4.4).
var tracingEnabled atomic.Bool

// EnableTracing turns the global tracing switch on or off.
func EnableTracing(enabled bool) { tracingEnabled.Store(enabled) }

// TracingEnabled reports the current state of the global tracing switch.
func TracingEnabled() bool { return tracingEnabled.Load() }

// TracedFunc is a function whose named arguments are available for
// interpolation in a [Trace] wrapper's pre/post templates.
type TracedFunc func(args map[string]any) (any, error)

// Trace returns a wrapper around f that, when tracing is enabled, prints
// pre (interpolated against args) before calling f, and post (interpolated
// against args, with an elapsed-time suffix) after f returns. When tracing
// is disabled the wrapper calls f directly with no overhead beyond the
// switch check.
//
// pre/post use the same "${name}" placeholder syntax as [Diagnostic]
// templates, resolved against the named-argument map passed at call time.
func Trace(pre, post string, f TracedFunc) TracedFunc {
	return func(args map[string]any) (any, error) {
		if !tracingEnabled.Load() {
			return f(args)
		}
		fmt.Println(interpolate(pre, nil, args, 0))
		start := time.Now()
		val, err := f(args)
		elapsed := time.Since(start)
		fmt.Printf("%s (%s)\n", interpolate(post, nil, args, 0), elapsed)
		return val, err
	}
}
