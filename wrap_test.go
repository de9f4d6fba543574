package lift_test

import (
	"bytes"
	"errors"
	"testing"

	lift "github.com/joeycumines/lift"
	"github.com/joeycumines/lift/diagnostic"
	"github.com/joeycumines/lift/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapReturnsTrueWhenMainSucceeds(t *testing.T) {
	rt := lift.NewRuntime("LIFT_TEST")
	defer rt.Close()

	ok := lift.Wrap(rt, func(rt *lift.Runtime) error {
		rt.Scheduler.Async(func(*scheduler.Fiber, any) (any, error) { return nil, nil }, nil)
		return nil
	})
	assert.True(t, ok)
}

func TestWrapReturnsFalseOnPlainError(t *testing.T) {
	rt := lift.NewRuntime("LIFT_TEST")
	defer rt.Close()

	boom := errors.New("boom")
	ok := lift.Wrap(rt, func(rt *lift.Runtime) error { return boom })
	assert.False(t, ok)
}

func TestWrapReturnsFalseOnFatalDiagnostic(t *testing.T) {
	rt := lift.NewRuntime("LIFT_TEST")
	defer rt.Close()

	ok := lift.Wrap(rt, func(rt *lift.Runtime) error {
		panic(diagnostic.New("cli_error: bad flag"))
	})
	assert.False(t, ok)
}

func TestWrapFormatsFatalDiagnosticToReporterOutput(t *testing.T) {
	rt := lift.NewRuntime("LIFT_TEST")
	defer rt.Close()

	var out bytes.Buffer
	ok := lift.Wrap(rt, func(rt *lift.Runtime) error {
		return diagnostic.NewRecord("cli_error", diagnostic.Record{
			Template:   "unknown flag ${1}",
			Args:       []any{"--bogus"},
			Decorators: map[string]any{"usage": "usage: lift [task...]"},
		})
	}, lift.WithReporterOptions(diagnostic.WithOutput(&out)))

	require.False(t, ok)
	assert.Contains(t, out.String(), "unknown flag --bogus")
}
