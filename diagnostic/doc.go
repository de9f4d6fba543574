// Package diagnostic provides Lift's structured error/warning objects:
// leveled, lazily-interpolated, decorator-carrying diagnostics, a pluggable
// consumer protocol, and call tracing.
//
// A [Diagnostic] is built from a "kind: template" string plus positional
// arguments, or from a [Record]. Its [Level] is derived solely from its
// kind via the process-wide kind registry ([RegisterKind]). The
// human-readable [Diagnostic.Message] is computed lazily on first access by
// interpolating "${name}" and "${1}".."${9}" placeholders against the
// diagnostic's decorators and positional arguments.
//
// Non-ignored, non-fatal diagnostics are delivered to a single process-wide
// [Consumer] (see [SetConsumer]); fatal diagnostics are raised as panics
// immediately, and error-level diagnostics are additionally remembered so a
// later [CheckError] call can re-raise them.
package diagnostic
