package diagnostic

import (
	"fmt"
	"strings"
	"sync"
)

// Verifier is a [Consumer] intended for tests: instead of formatting
// diagnostics to a stream, it accumulates them so a test can assert on
// exactly what was reported, mirroring the reference implementation's
// test-time consumer swap.
type Verifier struct {
	mu   sync.Mutex
	seen []*Diagnostic
}

// NewVerifier constructs an empty Verifier.
func NewVerifier() *Verifier { return &Verifier{} }

// Install swaps in v as the process-wide consumer via [SetConsumer] and
// returns a restore func that puts back whatever consumer was installed
// before, for use with t.Cleanup.
func (v *Verifier) Install() (restore func()) {
	prev := SetConsumer(v.Consume)
	return func() { SetConsumer(prev) }
}

// Consume implements [Consumer].
func (v *Verifier) Consume(d *Diagnostic) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = append(v.seen, d)
}

// All returns a snapshot of every diagnostic observed so far, in report
// order.
func (v *Verifier) All() []*Diagnostic {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]*Diagnostic(nil), v.seen...)
}

// Reset discards every recorded diagnostic.
func (v *Verifier) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = nil
}

// CountKind returns how many recorded diagnostics have the given kind.
func (v *Verifier) CountKind(kind string) int {
	n := 0
	for _, d := range v.All() {
		if d.Kind() == kind {
			n++
		}
	}
	return n
}

// HasMessageContaining reports whether any recorded diagnostic's message
// contains substr.
func (v *Verifier) HasMessageContaining(substr string) bool {
	for _, d := range v.All() {
		if strings.Contains(d.Message(), substr) {
			return true
		}
	}
	return false
}

// Verify asserts that every substring in want appears in at least one
// recorded diagnostic's message, returning an error naming the first
// substring that doesn't match.
func (v *Verifier) Verify(want ...string) error {
	for _, w := range want {
		if !v.HasMessageContaining(w) {
			return fmt.Errorf("verifier: no diagnostic message contains %q (saw %d diagnostics)", w, len(v.All()))
		}
	}
	return nil
}
