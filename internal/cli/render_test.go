package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pyscope/internal/outline"
)

// Test Plan for CLI helpers:
// - renderTree lists every declaration with its kind and line span
// - renderTree reports an empty outline explicitly
// - collectFiles matches on base name and skips hidden directories

func TestRenderTree(t *testing.T) {
	t.Parallel()

	source := "class Greeter:\n    def hello(self):\n        return \"hi\"\n\ndef standalone():\n    return 1\n"
	tree, err := outline.Extract(source)
	require.NoError(t, err)

	rendered := renderTree("example.py", tree)

	assert.Contains(t, rendered, "example.py")
	assert.Contains(t, rendered, "Greeter")
	assert.Contains(t, rendered, "hello")
	assert.Contains(t, rendered, "standalone")
	assert.Contains(t, rendered, "lines 1-3")
	assert.Contains(t, rendered, "lines 5-6")
}

func TestRenderTree_Empty(t *testing.T) {
	t.Parallel()

	tree, err := outline.Extract("x = 1\n")
	require.NoError(t, err)

	rendered := renderTree("empty.py", tree)
	assert.Contains(t, rendered, "no classes or functions")
}

func TestCollectFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	for _, f := range []string{"main.py", "pkg/util.py", "pkg/readme.md", ".git/hook.py"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, filepath.FromSlash(f)), []byte("x = 1\n"), 0o644))
	}

	files, err := collectFiles(root, glob.MustCompile("*.py"))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.py", "pkg/util.py"}, files)
}
