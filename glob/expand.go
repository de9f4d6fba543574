package glob

import (
	"fmt"
	"strings"

	"github.com/joeycumines/lift/config"
)

// token is one element of a parsed pattern template: either a literal run
// of characters or a reference to a scope variable that may resolve to a
// list (driving Cartesian-product expansion).
type token struct {
	literal string
	varName string // empty for literal tokens
}

// parseTemplate splits pattern into literal and ${var} tokens.
func parseTemplate(pattern string) ([]token, error) {
	var tokens []token
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			tokens = append(tokens, token{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '$' && i+1 < len(pattern) && pattern[i+1] == '{' {
			end := strings.IndexByte(pattern[i+2:], '}')
			if end < 0 {
				return nil, newGlobError(unterminatedVariableTemplate, pattern)
			}
			flush()
			name := pattern[i+2 : i+2+end]
			tokens = append(tokens, token{varName: name})
			i += 2 + end
			continue
		}
		lit.WriteByte(pattern[i])
	}
	flush()
	return tokens, nil
}

// Expand resolves every ${var} reference in pattern against scope, yielding
// the Cartesian product of concrete patterns (one per combination of
// list-valued variables). A scalar variable contributes exactly one value
// to the product; an unset variable resolves to its literal "${name}" text
// unchanged, consistent with shells that leave unknown expansions alone.
func Expand(pattern string, scope *config.Scope) ([]string, error) {
	tokens, err := parseTemplate(pattern)
	if err != nil {
		return nil, err
	}

	results := []string{""}
	for _, tok := range tokens {
		if tok.varName == "" {
			for i := range results {
				results[i] += tok.literal
			}
			continue
		}

		values := resolveVar(tok.varName, scope)
		next := make([]string, 0, len(results)*len(values))
		for _, prefix := range results {
			for _, v := range values {
				next = append(next, prefix+v)
			}
		}
		results = next
	}

	if err := validateDoubleStar(results, pattern); err != nil {
		return nil, err
	}
	return results, nil
}

func resolveVar(name string, scope *config.Scope) []string {
	if scope == nil {
		return []string{"${" + name + "}"}
	}
	list := scope.GetList(name)
	if len(list) == 0 {
		return []string{"${" + name + "}"}
	}
	out := make([]string, len(list))
	for i, v := range list {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// validateDoubleStar rejects any expanded pattern where "**" appears inside
// a larger path segment instead of occupying one on its own.
func validateDoubleStar(patterns []string, original string) error {
	for _, p := range patterns {
		for _, seg := range strings.Split(p, "/") {
			if strings.Contains(seg, "**") && seg != "**" {
				return newGlobError(bareDoubleStarTemplate, seg, original)
			}
		}
	}
	return nil
}
