package diagnostic

import "runtime/debug"

// Pcall runs f and recovers any panic: a panicked *Diagnostic is returned
// unchanged, and any other panic value becomes a "runtime_error" Diagnostic
// carrying a captured stack trace (the "stb" decorator), matching the
// reference implementation's pcall/xpcall behavior. Used by the scheduler
// to contain fiber panics (§4.1 Error model) and by lift.Wrap at the top
// level.
//
// If f returns a non-nil error that is already a *Diagnostic, it is passed
// through unchanged. Any other error is wrapped as a "runtime_error".
func Pcall(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoverToDiagnostic(r)
		}
	}()
	if rerr := f(); rerr != nil {
		err = normalizeError(rerr)
	}
	return err
}

// PcallValue is the result-bearing variant of Pcall, for fiber bodies that
// produce a value alongside an error.
func PcallValue(f func() (any, error)) (val any, err error) {
	defer func() {
		if r := recover(); r != nil {
			val = nil
			err = recoverToDiagnostic(r)
		}
	}()
	val, rerr := f()
	if rerr != nil {
		err = normalizeError(rerr)
	}
	return val, err
}

func normalizeError(err error) error {
	if d, ok := err.(*Diagnostic); ok {
		return d
	}
	return NewRecord("runtime_error", Record{
		Template: "${1}",
		Args:     []any{err.Error()},
	}).WithDecorator("cause", err)
}

func recoverToDiagnostic(r any) *Diagnostic {
	if d, ok := r.(*Diagnostic); ok {
		return d
	}
	stack := string(debug.Stack())
	return NewRecord("runtime_error", Record{
		Template: "${1}",
		Args:     []any{formatPanicValue(r)},
	}).WithDecorator("stb", stack)
}

func formatPanicValue(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return stringifyDecorator(r, 0)
}
