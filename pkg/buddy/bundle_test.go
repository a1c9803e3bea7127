package buddy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactName(t *testing.T) {
	got := artifactName("helper", "docs", "asst_abc123", "md")
	assert.Equal(t, "helper-docs-bundle-asst_abc123.md", got)
}

func TestSourceFilesMatchesGlobsRecursively(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	for _, name := range []string{"a.md", "b.txt", "sub/c.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := sourceFiles(dir, []string{"*.md"})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.md"), files[0])
	assert.Equal(t, filepath.Join(dir, "sub", "c.md"), files[1])
}

func TestBundleContentHeaders(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	require.NoError(t, os.WriteFile(a, []byte("alpha"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("beta"), 0o644))

	content, err := bundleContent([]string{a, b})
	require.NoError(t, err)
	assert.Contains(t, content, "// ==== file path: "+a)
	assert.Contains(t, content, "// ==== file path: "+b)
	assert.Contains(t, content, "alpha")
	assert.Contains(t, content, "beta")
}

func TestCountTokensNonZero(t *testing.T) {
	// Works with the real encoding when available and the fallback when
	// not; either way a non-trivial text costs tokens.
	n := countTokens("the quick brown fox jumps over the lazy dog")
	assert.Greater(t, n, 0)
}
