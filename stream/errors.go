package stream

import "errors"

// ErrWriteAfterEnd and ErrPushAfterEnd are the errors reported (as fatal
// runtime_error diagnostics, via diagnostic.Report) when a producer
// continues interacting with a stream after signaling its end.
var (
	ErrWriteAfterEnd = errors.New("stream: write called after stream end")
	ErrPushAfterEnd  = errors.New("stream: push called after stream end")
)
