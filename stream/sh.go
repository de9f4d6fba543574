package stream

import (
	"strconv"
	"strings"

	"github.com/joeycumines/lift/diagnostic"
)

// Sh runs command to completion via "sh -c", capturing stdout and stderr as
// strings with CRLF normalized to LF, per the specification's §6 sh(command)
// collaborator. A spawn failure or non-zero exit is returned as a
// subprocess_error diagnostic rather than raw process fields, matching
// Spawn's own error-construction convention (wrapSubprocessError).
func Sh(command string) (stdout, stderr string, err error) {
	p, spawnErr := Spawn("sh", []string{"-c", command}, ProcessOptions{
		Stdout: StdioPipe,
		Stderr: StdioPipe,
	})
	if spawnErr != nil {
		return "", "", spawnErr
	}

	// stdout and stderr are drained concurrently: a command that fills one
	// pipe's kernel buffer while nobody reads the other would otherwise
	// deadlock the subprocess against its own writes.
	type drained struct {
		chunks []any
		err    error
	}
	outCh := make(chan drained, 1)
	errCh := make(chan drained, 1)
	go func() {
		chunks, derr := Drain(p.Stdout)
		outCh <- drained{chunks, derr}
	}()
	go func() {
		chunks, derr := Drain(p.Stderr)
		errCh <- drained{chunks, derr}
	}()
	out := <-outCh
	errOut := <-errCh

	exited := make(chan struct{})
	var code int
	var waitErr error
	p.OnExit(func(c int, e error) {
		code, waitErr = c, e
		close(exited)
	})
	<-exited

	stdout = normalizeNewlines(joinChunks(out.chunks))
	stderr = normalizeNewlines(joinChunks(errOut.chunks))

	switch {
	case out.err != nil:
		return stdout, stderr, out.err
	case errOut.err != nil:
		return stdout, stderr, errOut.err
	case code != 0:
		d := diagnostic.New("subprocess_error: ${1}", command+": exit status "+strconv.Itoa(code))
		d.WithDecorator("exit_code", code)
		d.WithDecorator("stderr", stderr)
		return stdout, stderr, d
	case waitErr != nil:
		return stdout, stderr, waitErr
	default:
		return stdout, stderr, nil
	}
}

func joinChunks(chunks []any) string {
	var b strings.Builder
	for _, c := range chunks {
		b.Write(c.([]byte))
	}
	return b.String()
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}
