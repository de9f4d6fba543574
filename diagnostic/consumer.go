package diagnostic

import "sync"

// Consumer receives every non-ignored, non-fatal diagnostic reported via
// [Report]. Consumers must not suspend (§5 Concurrency model): they run
// synchronously on the reporting goroutine.
type Consumer func(*Diagnostic)

var (
	consumerMu   sync.Mutex
	consumer     Consumer
	lastErrorMu  sync.Mutex
	lastErrorVal *Diagnostic
)

// SetConsumer installs c as the process-wide consumer and returns the
// previously installed one (nil if none). Passing nil disables delivery.
func SetConsumer(c Consumer) Consumer {
	consumerMu.Lock()
	defer consumerMu.Unlock()
	prev := consumer
	consumer = c
	return prev
}

// CurrentConsumer returns the currently installed consumer, or nil.
func CurrentConsumer() Consumer {
	consumerMu.Lock()
	defer consumerMu.Unlock()
	return consumer
}

// Report delivers d through the reporting pipeline (§4.4/§7):
//
//   - LevelIgnored: dropped.
//   - LevelFatal: panics with d immediately.
//   - LevelError: delivered to the consumer (if any) and remembered as the
//     process-wide last error.
//   - LevelRemark/LevelWarning: delivered to the consumer (if any).
func Report(d *Diagnostic) {
	if d == nil {
		return
	}
	switch d.Level() {
	case LevelIgnored:
		return
	case LevelFatal:
		panic(d)
	case LevelError:
		setLastError(d)
		deliver(d)
	default:
		deliver(d)
	}
}

func deliver(d *Diagnostic) {
	c := CurrentConsumer()
	if c != nil {
		c(d)
	}
}

func setLastError(d *Diagnostic) {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	lastErrorVal = d
}

// LastError returns the most recently reported LevelError diagnostic, or
// nil if none has been reported since the last [CheckError] call.
func LastError() *Diagnostic {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	return lastErrorVal
}

// CheckError raises (returns as error) the last reported error-level
// diagnostic and clears it, so repeated calls don't re-raise the same
// error. Returns nil if there is none.
func CheckError() error {
	lastErrorMu.Lock()
	defer lastErrorMu.Unlock()
	d := lastErrorVal
	lastErrorVal = nil
	if d == nil {
		return nil
	}
	return d
}

// ResetForTest clears the installed consumer and last error. Intended for
// test setup/teardown given the consumer and last-error are process-wide.
func ResetForTest() {
	consumerMu.Lock()
	consumer = nil
	consumerMu.Unlock()
	lastErrorMu.Lock()
	lastErrorVal = nil
	lastErrorMu.Unlock()
}
