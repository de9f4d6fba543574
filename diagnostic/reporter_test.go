package diagnostic_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/joeycumines/lift/diagnostic"
	"github.com/stretchr/testify/assert"
)

func TestReporterWritesFormattedMessage(t *testing.T) {
	var buf bytes.Buffer
	r := diagnostic.NewReporter(diagnostic.WithOutput(&buf))

	r.Consume(diagnostic.New("warning: disk nearly full"))

	out := buf.String()
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "disk nearly full")
}

func TestReporterFormatsNestedDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	r := diagnostic.NewReporter(diagnostic.WithOutput(&buf))

	child := diagnostic.New("warning: inner problem")
	parent := diagnostic.NewRecord("error", diagnostic.Record{
		Template:   "outer failure",
		Decorators: map[string]any{"nested": []*diagnostic.Diagnostic{child}},
	})
	r.Consume(parent)

	out := buf.String()
	assert.Contains(t, out, "outer failure")
	assert.Contains(t, out, "inner problem")
	assert.Contains(t, out, "1. ")
}

func TestReporterRateLimitsRepeatedKinds(t *testing.T) {
	var buf bytes.Buffer
	r := diagnostic.NewReporter(
		diagnostic.WithOutput(&buf),
		diagnostic.WithRateLimit(time.Minute, 1),
	)

	r.Consume(diagnostic.New("warning: first"))
	r.Consume(diagnostic.New("warning: second"))
	r.Consume(diagnostic.New("warning: third"))

	out := buf.String()
	assert.Contains(t, out, "first")
	assert.NotContains(t, out, "second")
	assert.NotContains(t, out, "third")
}

func TestReporterAsConsumerInstallable(t *testing.T) {
	diagnostic.ResetForTest()
	defer diagnostic.ResetForTest()

	var buf bytes.Buffer
	r := diagnostic.NewReporter(diagnostic.WithOutput(&buf))
	diagnostic.SetConsumer(r.AsConsumer())

	diagnostic.Report(diagnostic.New("remark: hello"))
	assert.Contains(t, buf.String(), "hello")
}
