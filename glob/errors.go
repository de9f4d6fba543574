package glob

import "github.com/joeycumines/lift/diagnostic"

// newGlobError builds a glob_error diagnostic (registered at LevelError, not
// fatal: a malformed pattern is routinely a caller mistake the caller wants
// to recover from, not a process-ending condition).
func newGlobError(template string, args ...any) *diagnostic.Diagnostic {
	return diagnostic.New("glob_error: "+template, args...)
}

const (
	unterminatedVariableTemplate = "unterminated variable reference in pattern ${1}"
	// bareDoubleStarTemplate mirrors the reference parser's message for a
	// "**" that doesn't occupy a whole path segment on its own, e.g. "a**b".
	bareDoubleStarTemplate = "expected a name or pattern after wildcard in segment ${1} of pattern ${2}"
)
