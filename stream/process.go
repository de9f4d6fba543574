package stream

import (
	"os"
	"os/exec"
	"sync"

	"github.com/joeycumines/lift/diagnostic"
)

// StdioMode selects how a subprocess's stdin/stdout/stderr is wired.
type StdioMode int

const (
	// StdioPipe exposes the stream as a Readable/Writable on Process.
	StdioPipe StdioMode = iota
	// StdioIgnore discards the stream (connected to /dev/null).
	StdioIgnore
	// StdioInherit connects the stream directly to this process's own.
	StdioInherit
)

// ProcessOptions configures Spawn.
type ProcessOptions struct {
	Dir    string
	Env    []string
	Stdin  StdioMode
	Stdout StdioMode
	Stderr StdioMode
}

// Process wraps a running subprocess, exposing its stdio as streams and its
// exit as a callback, per the specification's process bridge (§6).
type Process struct {
	cmd *exec.Cmd

	Stdin  *Writable
	Stdout *Readable
	Stderr *Readable

	mu      sync.Mutex
	exited  bool
	exitErr error
	exitCbs []func(int, error)
}

// Spawn starts name with args under opts, wiring up any StdioPipe streams.
func Spawn(name string, args []string, opts ProcessOptions) (*Process, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = opts.Dir
	cmd.Env = opts.Env

	p := &Process{cmd: cmd}

	// opened tracks every fd created below, in creation order, so an
	// os.Pipe failure partway through (e.g. stdin's pipe succeeds but
	// stdout's doesn't) can unwind cleanly instead of leaking the earlier
	// pipe's descriptors.
	var opened []*os.File
	closeOpened := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	// childEnds are the child-side halves of any pipes created below; they
	// must be closed in this process once Start hands them off, or the
	// parent's lingering copy of the descriptor stops the sibling half
	// from ever observing EOF/hangup.
	var childEnds []*os.File

	var stdinR *os.File
	if opts.Stdin == StdioPipe {
		r, w, err := os.Pipe()
		if err != nil {
			closeOpened()
			return nil, wrapSubprocessError(err)
		}
		opened = append(opened, r, w)
		stdinR, cmd.Stdin = r, r
		p.Stdin = WriteFile(w)
		p.Stdin.OnFinish(func(error) { w.Close() })
	} else if opts.Stdin == StdioInherit {
		cmd.Stdin = os.Stdin
	}

	var stdoutW, stderrW *os.File
	var stdoutR, stderrR *os.File
	if opts.Stdout == StdioPipe {
		r, w, err := os.Pipe()
		if err != nil {
			closeOpened()
			return nil, wrapSubprocessError(err)
		}
		opened = append(opened, r, w)
		cmd.Stdout, stdoutW, stdoutR = w, w, r
	} else if opts.Stdout == StdioInherit {
		cmd.Stdout = os.Stdout
	}

	if opts.Stderr == StdioPipe {
		r, w, err := os.Pipe()
		if err != nil {
			closeOpened()
			return nil, wrapSubprocessError(err)
		}
		opened = append(opened, r, w)
		cmd.Stderr, stderrW, stderrR = w, w, r
	} else if opts.Stderr == StdioInherit {
		cmd.Stderr = os.Stderr
	}

	if stdinR != nil {
		childEnds = append(childEnds, stdinR)
	}
	if stdoutW != nil {
		childEnds = append(childEnds, stdoutW)
	}
	if stderrW != nil {
		childEnds = append(childEnds, stderrW)
	}

	if err := cmd.Start(); err != nil {
		closeOpened()
		return nil, wrapSubprocessError(err)
	}

	for _, f := range childEnds {
		f.Close()
	}
	if stdoutR != nil {
		p.Stdout = ReadFile(stdoutR, nil)
	}
	if stderrR != nil {
		p.Stderr = ReadFile(stderrR, nil)
	}

	go p.waitForExit()

	return p, nil
}

func (p *Process) waitForExit() {
	err := p.cmd.Wait()

	p.mu.Lock()
	p.exited = true
	p.exitErr = err
	cbs := append([](func(int, error))(nil), p.exitCbs...)
	p.mu.Unlock()

	code := p.cmd.ProcessState.ExitCode()
	for _, cb := range cbs {
		cb(code, err)
	}
}

// OnExit subscribes cb to fire once, with the process's exit code and any
// wait error, when the process exits.
func (p *Process) OnExit(cb func(code int, err error)) {
	p.mu.Lock()
	if p.exited {
		code := p.cmd.ProcessState.ExitCode()
		err := p.exitErr
		p.mu.Unlock()
		cb(code, err)
		return
	}
	p.exitCbs = append(p.exitCbs, cb)
	p.mu.Unlock()
}

// PID returns the subprocess's process ID.
func (p *Process) PID() int { return p.cmd.Process.Pid }

// Kill sends SIGKILL to the subprocess.
func (p *Process) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

// wrapSubprocessError builds a subprocess_error Diagnostic carrying err as
// its cause, for callers to return or pass to diagnostic.Report themselves.
// subprocess_error is registered at LevelFatal (§7), so Report would panic;
// Spawn returns it as a plain error instead, leaving the panic-on-report
// decision to the caller.
func wrapSubprocessError(err error) error {
	d := diagnostic.New("subprocess_error: ${1}", err.Error())
	d.WithDecorator("cause", err)
	return d
}
