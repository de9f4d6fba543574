package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	catrate "github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Reporter is the default production [Consumer]: it formats diagnostics to
// a configured writer, with ANSI color styling per level (§7), and
// structured-logs them through a [logiface.Logger] backed by
// [github.com/joeycumines/stumpy], the same facade/backend pairing the
// teacher's own logiface module ships.
//
// Repeated diagnostics of the same kind are rate-limited via
// [github.com/joeycumines/go-catrate] so a runaway scheduler loop can't
// flood the configured writer.
type Reporter struct {
	out    io.Writer
	log    *logiface.Logger[*stumpy.Event]
	limits *catrate.Limiter

	emergColor *color.Color
	errColor   *color.Color
	warnColor  *color.Color
	remColor   *color.Color
	locColor   *color.Color
	stackColor *color.Color
}

// ReporterOption configures a [Reporter].
type ReporterOption func(*reporterConfig)

type reporterConfig struct {
	out            io.Writer
	maxPerKindPer  time.Duration
	maxPerKindBurs int
}

// WithOutput sets the Reporter's destination stream. Defaults to os.Stderr.
func WithOutput(w io.Writer) ReporterOption {
	return func(c *reporterConfig) { c.out = w }
}

// WithRateLimit caps repeated diagnostics of the same kind to burst events
// per window, after which further occurrences in the window are dropped
// from the formatted stream (they still update [LastError] if error-level).
func WithRateLimit(window time.Duration, burst int) ReporterOption {
	return func(c *reporterConfig) {
		c.maxPerKindPer = window
		c.maxPerKindBurs = burst
	}
}

// NewReporter constructs a Reporter. With no options, diagnostics are
// printed to os.Stderr with no rate limiting.
func NewReporter(opts ...ReporterOption) *Reporter {
	cfg := reporterConfig{out: os.Stderr, maxPerKindPer: time.Second, maxPerKindBurs: 0}
	for _, o := range opts {
		o(&cfg)
	}

	logger := stumpy.L.New(
		stumpy.L.WithLevel(logiface.LevelTrace),
		stumpy.L.WithStumpy(stumpy.WithWriter(cfg.out)),
	)

	r := &Reporter{
		out:        cfg.out,
		log:        logger,
		emergColor: color.New(color.FgRed, color.Bold),
		errColor:   color.New(color.FgRed),
		warnColor:  color.New(color.FgYellow),
		remColor:   color.New(color.FgCyan),
		locColor:   color.New(color.Bold),
		stackColor: color.New(color.FgYellow),
	}
	if cfg.maxPerKindBurs > 0 {
		r.limits = catrate.NewLimiter(map[time.Duration]int{cfg.maxPerKindPer: cfg.maxPerKindBurs})
	}
	return r
}

// Consume implements [Consumer].
func (r *Reporter) Consume(d *Diagnostic) { r.consume(d) }

// AsConsumer adapts the Reporter to the [Consumer] function type, for use
// with [SetConsumer].
func (r *Reporter) AsConsumer() Consumer { return r.consume }

func (r *Reporter) consume(d *Diagnostic) {
	if r.limits != nil {
		if _, ok := r.limits.Allow(d.Kind()); !ok {
			return
		}
	}

	r.writeFormatted(d, 0)

	lvl := logiface.LevelInformational
	switch d.Level() {
	case LevelWarning:
		lvl = logiface.LevelWarning
	case LevelError, LevelFatal:
		lvl = logiface.LevelError
	}
	r.log.Build(lvl).Str("kind", d.Kind()).Str("trace_id", d.TraceID()).Log(d.Message())
}

func (r *Reporter) writeFormatted(d *Diagnostic, depth int) {
	indent := strings.Repeat("  ", depth)

	if loc, ok := d.Decorator("location"); ok {
		if l, ok := loc.(Location); ok {
			locStr := fmt.Sprintf("%s:%d", l.File, l.Line)
			if l.Column > 0 {
				locStr += fmt.Sprintf(":%d", l.Column)
			}
			fmt.Fprint(r.out, indent, r.locColor.Sprint(locStr), ": ")
		}
	}

	fmt.Fprintln(r.out, indent+r.kindColor(d.Level()).Sprintf("%s:", d.Kind()), d.Message())

	if stb, ok := d.Decorator("stb"); ok {
		if s, ok := stb.(string); ok && s != "" {
			fmt.Fprintln(r.out, r.stackColor.Sprint(indent+"traceback:"))
			fmt.Fprintln(r.out, indent+s)
		}
	}

	for i, n := range d.Nested() {
		fmt.Fprintf(r.out, "%s%d. ", indent+"  ", i+1)
		r.writeFormatted(n, depth+1)
	}
}

func (r *Reporter) kindColor(lvl Level) *color.Color {
	switch lvl {
	case LevelFatal:
		return r.emergColor
	case LevelError:
		return r.errColor
	case LevelWarning:
		return r.warnColor
	default:
		return r.remColor
	}
}
