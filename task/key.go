package task

import (
	"bytes"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeebo/blake3"
)

// absentKey is the sentinel memoization key used when a task is invoked
// with a nil argument (§4.2: "if arg is null/absent, a sentinel key (1) is
// used").
type absentKey struct{}

// hashedKey is the memoization key used for arguments that aren't directly
// Go-comparable (maps, slices, non-comparable structs): their msgpack
// encoding is blake3-hashed into a fixed-size, comparable array.
type hashedKey [32]byte

// memoKey normalizes arg into a value usable as a map key: nil maps to
// absentKey{}, comparable values are used directly (the common, zero-cost
// path), and anything else is msgpack-encoded and blake3-hashed.
func memoKey(arg any) (any, error) {
	if arg == nil {
		return absentKey{}, nil
	}
	if isComparable(arg) {
		return arg, nil
	}
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(arg); err != nil {
		return nil, err
	}
	sum := blake3.Sum256(buf.Bytes())
	return hashedKey(sum), nil
}

// isComparable reports whether v's dynamic type supports == without
// panicking at runtime.
func isComparable(v any) bool {
	return reflect.ValueOf(v).Comparable()
}
