package glob

import (
	"io/fs"
	"iter"
	"os"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/joeycumines/lift/config"
)

// Match pairs a matched path with the error (if any) encountered producing
// it; a non-nil Err terminates iteration.
type Match struct {
	Path string
	Err  error
}

// Matches returns true iff name matches pattern, using the same segment
// semantics as Walk (*, ?, [..], ** as a whole segment, dot-files skipped
// unless the pattern segment itself starts with a dot).
func Matches(pattern, name string) (bool, error) {
	ok, err := doublestar.Match(pattern, name)
	if !ok || err != nil {
		return ok, err
	}
	if strings.HasPrefix(path.Base(name), ".") && !strings.HasPrefix(lastSegment(pattern), ".") {
		return false, nil
	}
	return true, nil
}

// Walk expands pattern against scope and lazily yields every path under
// root matching any of the resulting concrete patterns, in pattern order,
// without duplicate paths across patterns in the same call.
func Walk(root, pattern string, scope *config.Scope) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		patterns, err := Expand(pattern, scope)
		if err != nil {
			yield(Match{Err: err})
			return
		}

		fsys := dotDirFS{os.DirFS(root).(fs.ReadDirFS)}
		seen := make(map[string]struct{})

		for _, p := range patterns {
			lastPatternSeg := lastSegment(p)
			stop := false
			walkErr := doublestar.GlobWalk(fsys, p, func(matchPath string, d fs.DirEntry) error {
				// Dot-files are excluded from the result set unless the
				// pattern's final segment itself begins with a dot.
				if strings.HasPrefix(path.Base(matchPath), ".") && !strings.HasPrefix(lastPatternSeg, ".") {
					return nil
				}
				if _, dup := seen[matchPath]; dup {
					return nil
				}
				seen[matchPath] = struct{}{}
				if !yield(Match{Path: matchPath}) {
					stop = true
					return fs.SkipAll
				}
				return nil
			})
			if stop {
				return
			}
			if walkErr != nil {
				yield(Match{Err: walkErr})
				return
			}
		}
	}
}

// dotDirFS wraps an fs.ReadDirFS, hiding dot-prefixed directories from
// ReadDir so "**" recursion never descends into them, regardless of which
// depth doublestar's own walk happens to surface them at.
type dotDirFS struct {
	fs.ReadDirFS
}

func (d dotDirFS) ReadDir(name string) ([]fs.DirEntry, error) {
	entries, err := d.ReadDirFS.ReadDir(name)
	if err != nil {
		return nil, err
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func lastSegment(pattern string) string {
	idx := strings.LastIndexByte(pattern, '/')
	if idx < 0 {
		return pattern
	}
	return pattern[idx+1:]
}

// Glob is a convenience wrapper collecting Walk's results into a slice,
// stopping at the first error.
func Glob(root, pattern string, scope *config.Scope) ([]string, error) {
	var out []string
	for m := range Walk(root, pattern, scope) {
		if m.Err != nil {
			return out, m.Err
		}
		out = append(out, m.Path)
	}
	return out, nil
}
