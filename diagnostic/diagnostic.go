package diagnostic

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Record is the structured form a [Diagnostic] can be built from: a message
// template, positional arguments, and named decorators. It mirrors the
// reference implementation's record shape ("[0]=template, [1..]=args, named
// decorators").
type Record struct {
	Template   string
	Args       []any
	Decorators map[string]any
}

// Diagnostic is a structured error or warning: a kind, a level derived from
// that kind, a lazily-interpolated message, and a bag of decorators
// (location, stack trace, nested diagnostics, owning task/future, ...).
//
// Diagnostic implements error. Unwrap exposes a single nested diagnostic
// (when exactly one) or the "cause" decorator to errors.Is/As; UnwrapAll
// returns every nested diagnostic (when aggregating several) as a slice,
// which errors.Is/As do not traverse.
type Diagnostic struct {
	id       ulid.ULID
	kind     string
	level    Level
	template string
	args     []any

	decMu      sync.RWMutex
	decorators map[string]any

	msgOnce sync.Once
	message string
}

// New builds a Diagnostic from a "kind: template" string and positional
// arguments, e.g. New("warning: ${1}+${3}!=${2}", 1, "2", other).
func New(kindTemplate string, args ...any) *Diagnostic {
	kind, template := splitKindTemplate(kindTemplate)
	return NewRecord(kind, Record{Template: template, Args: args})
}

// NewRecord builds a Diagnostic from an explicit kind and [Record]. Every
// Diagnostic is stamped with a "trace_id" decorator (a random UUID,
// distinct from its ULID ID) unless rec.Decorators already supplies one --
// e.g. a diagnostic reconstructed downstream of a process boundary that
// wants to keep a correlation ID assigned upstream.
func NewRecord(kind string, rec Record) *Diagnostic {
	decorators := make(map[string]any, len(rec.Decorators)+1)
	for k, v := range rec.Decorators {
		decorators[k] = v
	}
	if _, ok := decorators["trace_id"]; !ok {
		decorators["trace_id"] = uuid.NewString()
	}
	return &Diagnostic{
		id:         ulid.Make(),
		kind:       kind,
		level:      LevelOf(kind),
		template:   rec.Template,
		args:       append([]any(nil), rec.Args...),
		decorators: decorators,
	}
}

func splitKindTemplate(s string) (kind, template string) {
	idx := strings.Index(s, ":")
	if idx < 0 {
		return "error", s
	}
	kind = strings.TrimSpace(s[:idx])
	template = strings.TrimSpace(s[idx+1:])
	return kind, template
}

// ID returns the diagnostic's unique, creation-ordered identifier.
func (d *Diagnostic) ID() ulid.ULID { return d.id }

// TraceID returns the diagnostic's "trace_id" decorator, the correlation ID
// surfaced by tracing and by the Reporter's structured log line. Empty if
// the decorator was explicitly cleared after construction.
func (d *Diagnostic) TraceID() string {
	v, _ := d.Decorator("trace_id")
	s, _ := v.(string)
	return s
}

// Kind returns the diagnostic's kind string.
func (d *Diagnostic) Kind() string { return d.kind }

// Level returns the diagnostic's level, fixed at construction time by kind.
func (d *Diagnostic) Level() Level { return d.level }

// WithDecorator attaches or replaces a named decorator and returns the same
// Diagnostic for chaining. Common decorator names: "location", "stb"
// (stack trace string), "nested" ([]*Diagnostic), "task", "future".
func (d *Diagnostic) WithDecorator(key string, value any) *Diagnostic {
	d.decMu.Lock()
	defer d.decMu.Unlock()
	if d.decorators == nil {
		d.decorators = make(map[string]any, 4)
	}
	d.decorators[key] = value
	return d
}

// Decorator returns the named decorator and whether it was set.
func (d *Diagnostic) Decorator(key string) (any, bool) {
	d.decMu.RLock()
	defer d.decMu.RUnlock()
	v, ok := d.decorators[key]
	return v, ok
}

// Nested returns the diagnostics aggregated under the "nested" decorator, if
// any. A Diagnostic with exactly one nested child is typically unwrapped by
// callers (see task.Set and Unwrap).
func (d *Diagnostic) Nested() []*Diagnostic {
	v, ok := d.Decorator("nested")
	if !ok {
		return nil
	}
	nested, _ := v.([]*Diagnostic)
	return nested
}

// Location describes a source position decorator.
type Location struct {
	File   string
	Line   int
	Column int
	Code   string
}

// Error implements error, returning the interpolated message.
func (d *Diagnostic) Error() string { return d.Message() }

// Message returns the human-readable message, computed lazily on first
// access by interpolating "${name}" and "${1}".."${9}" against the
// diagnostic's decorators and positional arguments.
func (d *Diagnostic) Message() string {
	d.msgOnce.Do(func() {
		d.message = interpolate(d.template, d.args, d.decoratorSnapshot(), 0)
	})
	return d.message
}

func (d *Diagnostic) decoratorSnapshot() map[string]any {
	d.decMu.RLock()
	defer d.decMu.RUnlock()
	out := make(map[string]any, len(d.decorators))
	for k, v := range d.decorators {
		out[k] = v
	}
	return out
}

// maxInterpolationDepth bounds recursive interpolation through nested
// diagnostics/function decorators, guarding against accidental cycles (§9
// Design Notes).
const maxInterpolationDepth = 8

func interpolate(template string, args []any, decorators map[string]any, depth int) string {
	if depth > maxInterpolationDepth {
		return template
	}
	var b strings.Builder
	i := 0
	for i < len(template) {
		if template[i] == '$' && i+1 < len(template) && template[i+1] == '{' {
			end := strings.IndexByte(template[i+2:], '}')
			if end >= 0 {
				key := template[i+2 : i+2+end]
				b.WriteString(resolvePlaceholder(key, args, decorators, depth))
				i = i + 2 + end + 1
				continue
			}
		}
		b.WriteByte(template[i])
		i++
	}
	return b.String()
}

func resolvePlaceholder(key string, args []any, decorators map[string]any, depth int) string {
	// Positional: ${1}..${9}, 1-indexed against args.
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 9 {
		if n-1 < len(args) {
			return stringifyDecorator(args[n-1], depth)
		}
		return "${MISSING:" + key + "}"
	}
	if v, ok := decorators[key]; ok {
		return stringifyDecorator(v, depth)
	}
	return "${MISSING:" + key + "}"
}

// stringifyDecorator renders a value for interpolation, recursing through
// nested diagnostics, slices of diagnostics, and function-valued decorators
// (called with no diagnostic context available at this layer -- callers
// that need self-reference pass a closure bound to the diagnostic).
func stringifyDecorator(v any, depth int) string {
	switch t := v.(type) {
	case nil:
		return ""
	case *Diagnostic:
		return interpolate(t.template, t.args, t.decoratorSnapshot(), depth+1)
	case []*Diagnostic:
		parts := make([]string, len(t))
		for i, n := range t {
			parts[i] = interpolate(n.template, n.args, n.decoratorSnapshot(), depth+1)
		}
		return strings.Join(parts, "; ")
	case func() any:
		return stringifyDecorator(t(), depth+1)
	case fmt.Stringer:
		return t.String()
	case string:
		return t
	case error:
		return t.Error()
	default:
		return fmt.Sprint(t)
	}
}

// Unwrap supports errors.Is/errors.As against a single nested diagnostic,
// or, absent any nested diagnostic, a "cause" decorator set by wrappers
// like Pcall's normalizeError. When more than one diagnostic is nested, use
// UnwrapAll.
func (d *Diagnostic) Unwrap() error {
	if nested := d.Nested(); len(nested) == 1 {
		return nested[0]
	}
	if cause, ok := d.Decorator("cause"); ok {
		if err, ok := cause.(error); ok {
			return err
		}
	}
	return nil
}

// UnwrapAll returns every nested diagnostic as a []error. It is not the Go
// 1.20+ Unwrap() []error method, so errors.Is/errors.As follow Unwrap only.
func (d *Diagnostic) UnwrapAll() []error {
	nested := d.Nested()
	out := make([]error, len(nested))
	for i, n := range nested {
		out[i] = n
	}
	return out
}

// Is reports whether target is a Diagnostic with the same kind, matching
// the teacher's AggregateError.Is pattern of matching on category rather
// than identity.
func (d *Diagnostic) Is(target error) bool {
	other, ok := target.(*Diagnostic)
	if !ok {
		return false
	}
	return other.kind == d.kind
}

// Aggregate builds a Diagnostic of the given kind nesting each non-nil
// diagnostic in diags. If exactly one is present, it is returned directly
// (unwrapped) instead of being wrapped in a new aggregate, per §4.2's
// task-set aggregation rule.
func Aggregate(kind, template string, diags []*Diagnostic) *Diagnostic {
	filtered := make([]*Diagnostic, 0, len(diags))
	for _, d := range diags {
		if d != nil {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return NewRecord(kind, Record{
		Template:   template,
		Decorators: map[string]any{"nested": filtered},
	})
}
