package glob_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/joeycumines/lift/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		full := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}
	return root
}

func TestGlobMatchesFlatPattern(t *testing.T) {
	root := writeTree(t, "a.txt", "b.txt", "c.md")

	out, err := glob.Glob(root, "*.txt", nil)
	require.NoError(t, err)
	sort.Strings(out)
	assert.Equal(t, []string{"a.txt", "b.txt"}, out)
}

func TestGlobDoubleStarRecursesSubdirectories(t *testing.T) {
	root := writeTree(t, "x/y/z.go", "x/top.go", "top.go")

	out, err := glob.Glob(root, "**/*.go", nil)
	require.NoError(t, err)
	sort.Strings(out)
	assert.Equal(t, []string{"top.go", "x/top.go", "x/y/z.go"}, out)
}

func TestGlobSkipsDotFilesByDefault(t *testing.T) {
	root := writeTree(t, ".hidden.txt", "visible.txt")

	out, err := glob.Glob(root, "*.txt", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"visible.txt"}, out)
}

func TestGlobSkipsDotDirectoriesUnderDoubleStar(t *testing.T) {
	root := writeTree(t, ".git/config.go", "src/main.go")

	out, err := glob.Glob(root, "**/*.go", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/main.go"}, out)
}

func TestGlobExplicitDotPatternMatchesDotFiles(t *testing.T) {
	root := writeTree(t, ".env", "other.txt")

	out, err := glob.Glob(root, ".*", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, out)
}

func TestMatchesHonorsShellSemantics(t *testing.T) {
	ok, err := glob.Matches("*.go", "main.go")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = glob.Matches("*.go", "pkg/main.go")
	require.NoError(t, err)
	assert.False(t, ok)
}
