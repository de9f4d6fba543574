package diagnostic_test

import (
	"testing"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/stretchr/testify/assert"
)

func TestTraceCallsThroughWhenDisabled(t *testing.T) {
	diagnostic.EnableTracing(false)
	calls := 0
	traced := diagnostic.Trace("entering ${name}", "leaving ${name}", func(args map[string]any) (any, error) {
		calls++
		return args["name"], nil
	})
	val, err := traced(map[string]any{"name": "fetch"})
	assert.NoError(t, err)
	assert.Equal(t, "fetch", val)
	assert.Equal(t, 1, calls)
}

func TestTraceCallsThroughWhenEnabled(t *testing.T) {
	diagnostic.EnableTracing(true)
	defer diagnostic.EnableTracing(false)

	traced := diagnostic.Trace("entering ${name}", "leaving ${name}", func(args map[string]any) (any, error) {
		return args["name"], nil
	})
	val, err := traced(map[string]any{"name": "fetch"})
	assert.NoError(t, err)
	assert.Equal(t, "fetch", val)
}

func TestTracingEnabledReflectsSwitch(t *testing.T) {
	diagnostic.EnableTracing(true)
	assert.True(t, diagnostic.TracingEnabled())
	diagnostic.EnableTracing(false)
	assert.False(t, diagnostic.TracingEnabled())
}
