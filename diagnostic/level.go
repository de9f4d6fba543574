package diagnostic

// Level models the severity of a [Diagnostic]. A diagnostic's level is
// determined solely by its kind, via the process-wide kind registry.
//
// Modeled on the teacher's logiface.Level (syslog-style severities), but
// collapsed to the five meta-kinds the specification actually names:
// ignored, remark, warning, error and fatal.
type Level int8

const (
	// LevelIgnored diagnostics are never delivered to the consumer and never
	// raised; they exist purely for completeness of the kind registry.
	LevelIgnored Level = iota

	// LevelRemark is informational: delivered to the consumer, never raised.
	LevelRemark

	// LevelWarning is delivered to the consumer, never raised.
	LevelWarning

	// LevelError is delivered to the consumer and remembered as the
	// process-wide last error, re-raised by the next CheckError call.
	LevelError

	// LevelFatal halts the current fiber immediately, and the process at
	// top level (see Wrap). Fatal diagnostics are never delivered to the
	// consumer through the normal reporting pipeline -- they're raised.
	LevelFatal
)

// String returns the level's kind-style keyword, matching the meta-kind
// names used in the specification ("ignored", "remark", ...).
func (l Level) String() string {
	switch l {
	case LevelIgnored:
		return "ignored"
	case LevelRemark:
		return "remark"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Reportable returns true if diagnostics at this level should be delivered
// to the process-wide consumer (everything except ignored and fatal).
func (l Level) Reportable() bool {
	return l != LevelIgnored && l != LevelFatal
}
