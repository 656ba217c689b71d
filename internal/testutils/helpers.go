package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SeedRepo writes one document per entry (file name -> raw content) into a
// temporary directory and returns its absolute path.
// Documents are written straight to disk so frontmatter is parsed on read,
// exactly as it would be for a hand-authored catalog directory.
func SeedRepo(t *testing.T, docs map[string]string) string {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range docs {
		path := filepath.Join(absPath, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755), "Failed to create dir for %s", name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write %s", name)
	}
	return absPath
}
