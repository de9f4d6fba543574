package glob_test

import (
	"sort"
	"testing"

	"github.com/joeycumines/lift/config"
	"github.com/joeycumines/lift/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScope(t *testing.T) *config.Scope {
	t.Helper()
	return config.NewRoot("lift-test")
}

func TestExpandLiteralPatternPassesThrough(t *testing.T) {
	out, err := glob.Expand("src/*.go", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/*.go"}, out)
}

func TestExpandScalarVariable(t *testing.T) {
	scope := newTestScope(t)
	require.NoError(t, scope.Set("name", "widget"))

	out, err := glob.Expand("*/${name}.txt", scope)
	require.NoError(t, err)
	assert.Equal(t, []string{"*/widget.txt"}, out)
}

func TestExpandListVariableProducesCartesianProduct(t *testing.T) {
	scope := newTestScope(t)
	require.NoError(t, scope.Set("exts", []any{"png", "jpg"}))

	out, err := glob.Expand("*/fname.${exts}", scope)
	require.NoError(t, err)
	sort.Strings(out)
	assert.Equal(t, []string{"*/fname.jpg", "*/fname.png"}, out)
}

func TestExpandMultipleVariablesMultiplyCombinations(t *testing.T) {
	scope := newTestScope(t)
	require.NoError(t, scope.Set("name", []any{"a", "b"}))
	require.NoError(t, scope.Set("ext", []any{"go", "md"}))

	out, err := glob.Expand("${name}.${ext}", scope)
	require.NoError(t, err)
	sort.Strings(out)
	assert.Equal(t, []string{"a.go", "a.md", "b.go", "b.md"}, out)
}

func TestExpandUnsetVariableLeavesLiteralPlaceholder(t *testing.T) {
	scope := newTestScope(t)
	out, err := glob.Expand("${missing}/x", scope)
	require.NoError(t, err)
	assert.Equal(t, []string{"${missing}/x"}, out)
}

func TestExpandUnterminatedVariableErrors(t *testing.T) {
	_, err := glob.Expand("${oops", nil)
	require.Error(t, err)
}

func TestExpandRejectsBareDoubleStar(t *testing.T) {
	_, err := glob.Expand("a**b", nil)
	require.Error(t, err)
}

func TestExpandAllowsIsolatedDoubleStarSegment(t *testing.T) {
	out, err := glob.Expand("**/x.go", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"**/x.go"}, out)
}
