// Package glob implements shell-style path matching with ${var} expansion:
// parsing a pattern into a template of literal segments and scope-resolved
// variable references, expanding that template into the Cartesian product
// of concrete patterns, and lazily walking the filesystem for matches.
//
// Segment-level matching (*, ?, [..], **) is delegated to
// github.com/bmatcuk/doublestar/v4; this package owns everything above
// that: variable substitution, the pattern-template/Cartesian-product
// layer, and the lazy match iterator.
package glob
