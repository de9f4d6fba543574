package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

var scopeIDSeq atomic.Uint64

func nextScopeID() uint64 { return scopeIDSeq.Add(1) }

// Scope is a node in the hierarchical configuration chain. Reads walk up
// through parents until a key is found (or the chain is exhausted); writes
// are always local to the scope they're called on.
type Scope struct {
	id       uint64
	constant bool // root: writes rejected.
	env      bool // virtual env-fallback scope: reads synthesize from os.Getenv.
	appID    string

	mu     sync.RWMutex
	parent *Scope
	data   map[string]any

	listMu    sync.Mutex
	listCache map[string][]any

	envMu    sync.Mutex
	envCache map[string]envResult
}

type envResult struct {
	val string
	ok  bool
}

// ErrConstantScope is returned by any write attempted on the immutable root
// scope or the virtual environment scope.
var ErrConstantScope = fmt.Errorf("config: scope is constant")

// NewRoot builds the standard two-scope bootstrap chain described by the
// specification and returns a fresh, mutable child of it: an immutable
// constant scope (topmost reads terminate here) whose parent is a virtual
// environment scope. appID is used as the prefix for the
// "${APP_ID}_KEY"-before-"KEY" environment lookup order; pass "" to disable
// prefixed lookups.
func NewRoot(appID string) *Scope {
	envScope := &Scope{id: nextScopeID(), env: true, appID: appID, envCache: make(map[string]envResult)}
	constScope := &Scope{id: nextScopeID(), constant: true, parent: envScope, data: map[string]any{}}
	return constScope.NewChild()
}

// ID returns the scope's process-unique, creation-ordered identifier, used
// by ListVars to report which scope in the chain owns a value.
func (s *Scope) ID() uint64 { return s.id }

// NewChild returns a new scope whose parent is s.
func (s *Scope) NewChild() *Scope {
	return &Scope{id: nextScopeID(), parent: s, data: make(map[string]any)}
}

// NewParent returns a new scope inserted between s and s's current parent:
// s.parent becomes the returned scope, and the returned scope's parent is
// s's previous parent. Mirrors new_parent from the specification.
func (s *Scope) NewParent() *Scope {
	s.mu.Lock()
	defer s.mu.Unlock()
	np := &Scope{id: nextScopeID(), parent: s.parent, data: make(map[string]any)}
	s.parent = np
	return np
}

// Parent returns s's current parent scope, or nil if s is topmost.
func (s *Scope) Parent() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parent
}

// SetParent rewires s's parent pointer directly.
func (s *Scope) SetParent(p *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parent = p
}

// Get walks the scope chain starting at s, returning the first value found
// and true, or (nil, false) if no scope in the chain has k set.
func (s *Scope) Get(k string) (any, bool) {
	for cur := s; cur != nil; cur = cur.parentLocked() {
		if cur.env {
			if v, ok := cur.getEnv(k); ok {
				return v, true
			}
			continue
		}
		cur.mu.RLock()
		v, ok := cur.data[k]
		cur.mu.RUnlock()
		if ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Scope) parentLocked() *Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.parent
}

func (s *Scope) getEnv(k string) (string, bool) {
	s.envMu.Lock()
	defer s.envMu.Unlock()
	if cached, ok := s.envCache[k]; ok {
		return cached.val, cached.ok
	}
	var val string
	var ok bool
	if s.appID != "" {
		val, ok = os.LookupEnv(s.appID + "_" + k)
	}
	if !ok {
		val, ok = os.LookupEnv(k)
	}
	s.envCache[k] = envResult{val: val, ok: ok}
	return val, ok
}

// Set writes k=v locally to s. Returns ErrConstantScope if s is the
// immutable root or the virtual environment scope.
func (s *Scope) Set(k string, v any) error {
	if s.constant || s.env {
		return ErrConstantScope
	}
	s.mu.Lock()
	s.data[k] = v
	s.mu.Unlock()
	s.invalidateList(k)
	return nil
}

// GetBool coerces the value at k to a bool using the specification's
// case-insensitive token mapping: 1/on/true/y/yes -> true,
// 0/off/false/n/no -> false. Returns (false, false) if k is unset or the
// value doesn't match either set.
func (s *Scope) GetBool(k string) (bool, bool) {
	v, ok := s.Get(k)
	if !ok {
		return false, false
	}
	if b, ok := v.(bool); ok {
		return b, true
	}
	str := strings.ToLower(strings.TrimSpace(fmt.Sprint(v)))
	switch str {
	case "1", "on", "true", "y", "yes":
		return true, true
	case "0", "off", "false", "n", "no":
		return false, true
	}
	return false, false
}

// pathListSeparators are the delimiters get_list splits scalar strings on,
// per the specification's "platform path-list separators" rule.
const pathListSeparators = ";:,"

// GetList coerces the value at k to a []any: strings are split on
// pathListSeparators, scalars are wrapped in a single-element slice, and
// existing slices pass through unchanged (copied). The coerced list is
// cached against s and k: repeated calls return the same slice identity
// until the underlying value changes via Set/Insert/InsertUnique on s,
// matching the specification's "second call returns the same list
// identity" property.
func (s *Scope) GetList(k string) []any {
	s.listMu.Lock()
	if s.listCache != nil {
		if cached, ok := s.listCache[k]; ok {
			s.listMu.Unlock()
			return cached
		}
	}
	s.listMu.Unlock()

	v, ok := s.Get(k)
	if !ok {
		return nil
	}
	list := coerceList(v)

	s.listMu.Lock()
	if s.listCache == nil {
		s.listCache = make(map[string][]any)
	}
	s.listCache[k] = list
	s.listMu.Unlock()
	return list
}

// invalidateList drops any cached GetList result for k on s, so the next
// GetList call recomputes it from the newly written value.
func (s *Scope) invalidateList(k string) {
	s.listMu.Lock()
	delete(s.listCache, k)
	s.listMu.Unlock()
}

func coerceList(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return append([]any(nil), t...)
	case string:
		parts := strings.FieldsFunc(t, func(r rune) bool { return strings.ContainsRune(pathListSeparators, r) })
		out := make([]any, len(parts))
		for i, p := range parts {
			out[i] = p
		}
		return out
	default:
		return []any{v}
	}
}

// GetUniqueList is GetList with duplicates removed, preserving first
// occurrence, per fmt.Sprint equality.
func (s *Scope) GetUniqueList(k string) []any {
	return dedupeList(s.GetList(k))
}

func dedupeList(in []any) []any {
	seen := make(map[string]struct{}, len(in))
	out := make([]any, 0, len(in))
	for _, v := range in {
		key := fmt.Sprint(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Insert inserts v into the local list at k at pos (clamped to the list's
// bounds; a negative pos means append). The list is read/written locally to
// s only; parent values are never consulted or mutated.
func (s *Scope) Insert(k string, v any, pos int) error {
	if s.constant || s.env {
		return ErrConstantScope
	}
	s.mu.Lock()
	list := coerceList(s.data[k])
	list = insertAt(list, v, pos)
	s.data[k] = list
	s.mu.Unlock()
	s.invalidateList(k)
	return nil
}

// InsertUnique behaves like Insert, except if v is already present (by
// fmt.Sprint equality) it is moved to pos rather than duplicated.
func (s *Scope) InsertUnique(k string, v any, pos int) error {
	if s.constant || s.env {
		return ErrConstantScope
	}
	s.mu.Lock()
	list := coerceList(s.data[k])
	key := fmt.Sprint(v)
	filtered := list[:0:0]
	for _, item := range list {
		if fmt.Sprint(item) == key {
			continue
		}
		filtered = append(filtered, item)
	}
	filtered = insertAt(filtered, v, pos)
	s.data[k] = filtered
	s.mu.Unlock()
	s.invalidateList(k)
	return nil
}

func insertAt(list []any, v any, pos int) []any {
	if pos < 0 || pos >= len(list) {
		return append(list, v)
	}
	out := make([]any, 0, len(list)+1)
	out = append(out, list[:pos]...)
	out = append(out, v)
	out = append(out, list[pos:]...)
	return out
}

// VarEntry is one observation reported by ListVars.
type VarEntry struct {
	Key        string
	Value      any
	ScopeID    uint64
	Overridden bool
}

// ListVars walks the scope chain starting at s and invokes cb for every
// key it finds. When includeOverridden is false, a key already reported by
// a nearer (more-child) scope is skipped; when true, every occurrence is
// reported with Overridden set accordingly.
func (s *Scope) ListVars(includeOverridden bool, cb func(VarEntry)) {
	seen := make(map[string]struct{})
	for cur := s; cur != nil; cur = cur.parentLocked() {
		if cur.env {
			continue // the virtual scope has no enumerable key set.
		}
		cur.mu.RLock()
		keys := make([]string, 0, len(cur.data))
		for k := range cur.data {
			keys = append(keys, k)
		}
		for _, k := range keys {
			v := cur.data[k]
			_, overridden := seen[k]
			if overridden && !includeOverridden {
				continue
			}
			seen[k] = struct{}{}
			cb(VarEntry{Key: k, Value: v, ScopeID: cur.id, Overridden: overridden})
		}
		cur.mu.RUnlock()
	}
}
