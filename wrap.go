package lift

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joeycumines/lift/diagnostic"
)

// Main is the shape of an embedding program's entry point, passed to Wrap.
// It may call rt.Scheduler.Async repeatedly and return; Wrap drives the
// scheduler to completion afterward.
type Main func(rt *Runtime) error

// WrapOption configures Wrap.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	reporterOpts []diagnostic.ReporterOption
}

// WithReporterOptions forwards options to the Reporter Wrap installs as the
// process-wide diagnostics consumer.
func WithReporterOptions(opts ...diagnostic.ReporterOption) WrapOption {
	return func(c *wrapConfig) { c.reporterOpts = append(c.reporterOpts, opts...) }
}

// Wrap is the driver entry point (§6 External interfaces): it installs a
// fresh Reporter as the process-wide diagnostics consumer, runs main via
// diagnostic.Pcall, then drains rt.Scheduler to completion. An error that
// main returns or raises, or that Run returns, is printed through the
// Reporter as a diagnostic; a cli_error additionally prints its "usage"
// decorator, if set. Rejections of fibers started on rt.Scheduler are not
// examined: they are neither printed nor reflected in the result. When
// tracing is enabled, Wrap prints total wall time and the heap memory
// obtained from the OS (runtime.MemStats.HeapSys) after the diagnostic.
// Wrap returns false iff such an error occurred, whatever its level.
func Wrap(rt *Runtime, main Main, opts ...WrapOption) bool {
	cfg := wrapConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	reporter := diagnostic.NewReporter(cfg.reporterOpts...)
	prev := diagnostic.SetConsumer(reporter.AsConsumer())
	defer diagnostic.SetConsumer(prev)

	start := time.Now()
	err := diagnostic.Pcall(func() error {
		if err := main(rt); err != nil {
			return err
		}
		return rt.Scheduler.Run()
	})

	ok := err == nil
	if err != nil {
		d := asDiagnostic(err)
		reporter.Consume(d)
		if d.Kind() == "cli_error" {
			printUsage(d)
		}
	}

	if diagnostic.TracingEnabled() {
		printTraceSummary(start)
	}
	return ok
}

// asDiagnostic recovers the *diagnostic.Diagnostic that diagnostic.Pcall
// guarantees for any non-nil error it returns. The fallback only matters if
// that guarantee is ever relaxed.
func asDiagnostic(err error) *diagnostic.Diagnostic {
	if d, ok := err.(*diagnostic.Diagnostic); ok {
		return d
	}
	return diagnostic.New("runtime_error: ${1}", err.Error())
}

func printUsage(d *diagnostic.Diagnostic) {
	if usage, ok := d.Decorator("usage"); ok {
		if s, ok := usage.(string); ok && s != "" {
			fmt.Fprintln(os.Stderr, s)
		}
	}
}

func printTraceSummary(start time.Time) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	fmt.Printf("wall: %s, peak heap: %d bytes\n", time.Since(start), mem.HeapSys)
}
